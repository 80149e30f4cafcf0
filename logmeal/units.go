package logmeal

// Unit conversions for nutrient quantities. The service reports each nutrient
// with a unit tag; macro-like nutrients are normalized to grams and
// micronutrients to milligrams. An unrecognized tag passes the quantity
// through unchanged, and a missing quantity or unit stays missing — absence
// is never replaced with zero here.

func toGrams(quantity *float64, unit *string) *float64 {
	if quantity == nil || unit == nil {
		return nil
	}
	v := *quantity
	switch *unit {
	case "g":
		// already grams
	case "mg":
		v /= 1000.0
	case "µg", "mcg":
		v /= 1000000.0
	}
	return &v
}

func toMilligrams(quantity *float64, unit *string) *float64 {
	if quantity == nil || unit == nil {
		return nil
	}
	v := *quantity
	switch *unit {
	case "mg":
		// already milligrams
	case "g":
		v *= 1000.0
	case "µg", "mcg":
		v /= 1000.0
	}
	return &v
}
