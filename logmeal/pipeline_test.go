package logmeal

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platelog/imageprep"
)

const testBaseURL = "https://recognition.test"

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	client := &Client{
		baseURL: testBaseURL,
		token:   "test-token",
		client:  &http.Client{},
	}
	httpmock.ActivateNonDefault(client.client)
	t.Cleanup(httpmock.DeactivateAndReset)

	p := NewPipeline(client, imageprep.New(t.TempDir()))
	p.settleDelay = 0
	return p
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meal.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0o644))
	return path
}

// writeOversizeImage writes a noise PNG big enough to force the preprocessor
// to produce a compressed copy.
func writeOversizeImage(t *testing.T) string {
	t.Helper()
	rng := rand.New(rand.NewSource(3))
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 800; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	path := filepath.Join(t.TempDir(), "big.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(1<<20))
	return path
}

const segmentationBody = `{
	"imageId": 42,
	"foodType": {"id": 1, "name": "food"},
	"foodFamily": [{"id": 8, "name": "rice", "prob": 0.93}],
	"processed_image_size": {"width": 1280, "height": 960},
	"segmentation_results": [
		{
			"food_item_position": 1,
			"contained_bbox": {"x": 5, "y": 5, "w": 200, "h": 150},
			"recognition_results": [
				{"id": 101, "name": "paella", "prob": 0.91},
				{"id": 102, "name": "risotto", "prob": 0.42}
			]
		}
	]
}`

const nutritionBody = `{
	"nutritional_info": {
		"calories": 640,
		"totalNutrients": {
			"PROCNT": {"quantity": 28, "unit": "g"},
			"CHOCDF": {"quantity": 75, "unit": "g"},
			"FAT": {"quantity": 22, "unit": "g"},
			"FE": {"quantity": 3.5, "unit": "mg"}
		}
	}
}`

const ingredientsBody = `{
	"ingredients": [
		{"id": 1, "name": "rice"},
		{"id": 2, "name": "shrimp"}
	]
}`

func TestSegmentReturnsCandidates(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+segmentPath,
		httpmock.NewStringResponder(http.StatusOK, segmentationBody))

	a := p.NewAnalysis()
	result, err := a.Segment(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingSelection, a.State)
	assert.Equal(t, 42, result.ImageID)
	require.NotNil(t, result.FoodType)
	assert.Equal(t, "food", *result.FoodType)
	require.Len(t, result.FoodFamily, 1)
	assert.Equal(t, "rice", result.FoodFamily[0].Name)
	require.Len(t, result.Segments, 1)
	require.Len(t, result.Segments[0].Candidates, 2)
	assert.Equal(t, "paella", result.Segments[0].Candidates[0].Name)
}

func TestAnalysisEndToEnd(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+segmentPath,
		httpmock.NewStringResponder(http.StatusOK, segmentationBody))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+confirmPath,
		httpmock.NewStringResponder(http.StatusOK, `{"code": 200, "success": true}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+ingredientsPath,
		httpmock.NewStringResponder(http.StatusOK, ingredientsBody))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+nutritionPath,
		httpmock.NewStringResponder(http.StatusOK, nutritionBody))

	a := p.NewAnalysis()
	result, err := a.Segment(context.Background(), writeTestImage(t))
	require.NoError(t, err)
	require.NotEmpty(t, result.Segments)
	require.NotEmpty(t, result.Segments[0].Candidates)

	// Select the top-ranked candidate exactly as a client would.
	candidate := result.Segments[0].Candidates[0]
	assert.Equal(t, "paella", candidate.Name)

	nutrition, err := a.ConfirmAndFetchNutrition(context.Background(), candidate.DishID, candidate.FoodItemPosition)
	require.NoError(t, err)

	assert.Equal(t, StateComplete, a.State)
	assert.Equal(t, 640.0, nutrition.Calories)
	assert.Equal(t, []string{"rice", "shrimp"}, []string(nutrition.Ingredients))
	assert.Equal(t, 4, httpmock.GetTotalCallCount())
}

func TestSegmentRemovesCompressedCopy(t *testing.T) {
	client := &Client{
		baseURL: testBaseURL,
		token:   "test-token",
		client:  &http.Client{},
	}
	httpmock.ActivateNonDefault(client.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+segmentPath,
		httpmock.NewStringResponder(http.StatusOK, segmentationBody))

	cacheDir := t.TempDir()
	p := NewPipeline(client, imageprep.New(cacheDir))
	p.settleDelay = 0

	src := writeOversizeImage(t)
	_, err := p.NewAnalysis().Segment(context.Background(), src)
	require.NoError(t, err)

	// The source stays; the compressed upload copy does not.
	_, err = os.Stat(src)
	assert.NoError(t, err)
	leftovers, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSegmentNoDishDetected(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+segmentPath,
		httpmock.NewStringResponder(http.StatusOK, `{"imageId": 42, "segmentation_results": []}`))

	a := p.NewAnalysis()
	_, err := a.Segment(context.Background(), writeTestImage(t))
	assert.ErrorIs(t, err, ErrNoDishDetected)
	assert.Equal(t, StateFailed, a.State)
}

func TestSegmentServiceFailure(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+segmentPath,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"message": "boom"}`))

	a := p.NewAnalysis()
	_, err := a.Segment(context.Background(), writeTestImage(t))

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.Equal(t, StateFailed, a.State)
}

func TestSegmentRejectedOutsideIdleState(t *testing.T) {
	p := newTestPipeline(t)
	a, err := p.ResumeSelection(42)
	require.NoError(t, err)

	_, err = a.Segment(context.Background(), writeTestImage(t))
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateAwaitingSelection, stateErr.State)
}

func TestResumeSelectionRejectsBadImageID(t *testing.T) {
	p := newTestPipeline(t)
	for _, id := range []int{0, -5} {
		_, err := p.ResumeSelection(id)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "imageId", valErr.Field)
	}
}

func TestConfirmRejectsBadIdentifiersBeforeNetwork(t *testing.T) {
	p := newTestPipeline(t)

	tests := []struct {
		name     string
		dishID   int
		position int
		field    string
	}{
		{"zero dish id", 0, 1, "dishId"},
		{"negative dish id", -1, 1, "dishId"},
		{"zero position", 101, 0, "foodItemPosition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := p.ResumeSelection(42)
			require.NoError(t, err)

			_, err = a.ConfirmAndFetchNutrition(context.Background(), tt.dishID, tt.position)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestConfirmAndFetchNutrition(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+confirmPath,
		httpmock.NewStringResponder(http.StatusOK, `{"code": 200, "success": true}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+ingredientsPath,
		httpmock.NewStringResponder(http.StatusOK, ingredientsBody))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+nutritionPath,
		httpmock.NewStringResponder(http.StatusOK, nutritionBody))

	a, err := p.ResumeSelection(42)
	require.NoError(t, err)

	nutrition, err := a.ConfirmAndFetchNutrition(context.Background(), 101, 1)
	require.NoError(t, err)

	assert.Equal(t, StateComplete, a.State)
	assert.Equal(t, 640.0, nutrition.Calories)
	assert.Equal(t, 28.0, nutrition.Protein)
	require.NotNil(t, nutrition.Iron)
	assert.InDelta(t, 3.5, *nutrition.Iron, 1e-9)
	assert.Equal(t, []string{"rice", "shrimp"}, []string(nutrition.Ingredients))
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestConfirmFailureStopsWorkflow(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+confirmPath,
		httpmock.NewStringResponder(http.StatusForbidden, `{"message": "bad token"}`))

	a, err := p.ResumeSelection(42)
	require.NoError(t, err)

	_, err = a.ConfirmAndFetchNutrition(context.Background(), 101, 1)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, StateFailed, a.State)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestIngredientFailureIsNonFatal(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+confirmPath,
		httpmock.NewStringResponder(http.StatusOK, `{"success": true}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+ingredientsPath,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"message": "boom"}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+nutritionPath,
		httpmock.NewStringResponder(http.StatusOK, nutritionBody))

	a, err := p.ResumeSelection(42)
	require.NoError(t, err)

	nutrition, err := a.ConfirmAndFetchNutrition(context.Background(), 101, 1)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, a.State)
	assert.Empty(t, nutrition.Ingredients)
	assert.Equal(t, 640.0, nutrition.Calories)
}

func TestNutritionFailureIsFatal(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+confirmPath,
		httpmock.NewStringResponder(http.StatusOK, `{"success": true}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+ingredientsPath,
		httpmock.NewStringResponder(http.StatusOK, ingredientsBody))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+nutritionPath,
		httpmock.NewStringResponder(http.StatusBadGateway, `{"message": "down"}`))

	a, err := p.ResumeSelection(42)
	require.NoError(t, err)

	_, err = a.ConfirmAndFetchNutrition(context.Background(), 101, 1)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, StateFailed, a.State)
}

func TestNutritionWithoutUsableTableIsFatal(t *testing.T) {
	p := newTestPipeline(t)
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+confirmPath,
		httpmock.NewStringResponder(http.StatusOK, `{"success": true}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+ingredientsPath,
		httpmock.NewStringResponder(http.StatusOK, ingredientsBody))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+nutritionPath,
		httpmock.NewStringResponder(http.StatusOK, `{"nutritional_info": {"calories": 100}}`))

	a, err := p.ResumeSelection(42)
	require.NoError(t, err)

	_, err = a.ConfirmAndFetchNutrition(context.Background(), 101, 1)
	assert.ErrorIs(t, err, ErrNoNutritionData)
	assert.Equal(t, StateFailed, a.State)
}

func TestConfirmRejectedOutsideSelectionState(t *testing.T) {
	p := newTestPipeline(t)
	a := p.NewAnalysis()

	_, err := a.ConfirmAndFetchNutrition(context.Background(), 101, 1)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateIdle, stateErr.State)
}
