package logmeal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }
func iptr(v int) *int         { return &v }

func TestToGrams(t *testing.T) {
	tests := []struct {
		name     string
		quantity *float64
		unit     *string
		want     *float64
	}{
		{"grams pass through", fptr(12.5), sptr("g"), fptr(12.5)},
		{"milligrams to grams", fptr(250), sptr("mg"), fptr(0.25)},
		{"micrograms to grams", fptr(500), sptr("µg"), fptr(0.0005)},
		{"mcg alias", fptr(500), sptr("mcg"), fptr(0.0005)},
		{"unknown unit passes through", fptr(3), sptr("oz"), fptr(3)},
		{"missing quantity stays missing", nil, sptr("g"), nil},
		{"missing unit stays missing", fptr(3), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toGrams(tt.quantity, tt.unit)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.InDelta(t, *tt.want, *got, 1e-9)
			}
		})
	}
}

func TestUnitConversionRoundTrip(t *testing.T) {
	for _, v := range []float64{0.001, 1, 250, 99999} {
		g := toGrams(fptr(v), sptr("mg"))
		require.NotNil(t, g)
		back := toMilligrams(g, sptr("g"))
		require.NotNil(t, back)
		assert.InDelta(t, v, *back, 1e-9)
	}
}

func TestToMilligrams(t *testing.T) {
	tests := []struct {
		name     string
		quantity *float64
		unit     *string
		want     *float64
	}{
		{"milligrams pass through", fptr(80), sptr("mg"), fptr(80)},
		{"grams to milligrams", fptr(1.2), sptr("g"), fptr(1200)},
		{"micrograms to milligrams", fptr(900), sptr("µg"), fptr(0.9)},
		{"mcg alias", fptr(900), sptr("mcg"), fptr(0.9)},
		{"unknown unit passes through", fptr(7), sptr("IU"), fptr(7)},
		{"missing quantity stays missing", nil, sptr("mg"), nil},
		{"missing unit stays missing", fptr(7), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toMilligrams(tt.quantity, tt.unit)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.InDelta(t, *tt.want, *got, 1e-9)
			}
		})
	}
}
