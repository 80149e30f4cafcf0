package logmeal

import (
	"sort"

	"platelog/models"
)

// maxCandidatesPerSegment caps how many ranked dish candidates a region may
// surface for selection.
const maxCandidatesPerSegment = 5

// normalizeNutrition maps a nutrition payload into the internal model.
// Partial payloads never fail: calories fall back from the explicit field to
// the ENERC_KCAL nutrient and then to 0, macros default to 0, and every
// optional nutrient stays absent unless the service reported it.
func normalizeNutrition(resp *nutritionResponse) models.NutritionData {
	var data models.NutritionData
	if resp == nil || resp.NutritionalInfo == nil {
		return data
	}
	info := resp.NutritionalInfo

	nutrients := info.TotalNutrients

	grams := func(code string) *float64 {
		n, ok := nutrients[code]
		if !ok {
			return nil
		}
		return toGrams(n.Quantity, n.Unit)
	}
	milligrams := func(code string) *float64 {
		n, ok := nutrients[code]
		if !ok {
			return nil
		}
		return toMilligrams(n.Quantity, n.Unit)
	}
	orZero := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}

	switch {
	case info.Calories != nil:
		data.Calories = *info.Calories
	default:
		if n, ok := nutrients["ENERC_KCAL"]; ok && n.Quantity != nil {
			data.Calories = *n.Quantity
		}
	}

	data.Protein = orZero(grams("PROCNT"))
	data.Carbohydrates = orZero(grams("CHOCDF"))
	data.Fat = orZero(grams("FAT"))
	data.Fiber = grams("FIBTG")
	data.Sugar = grams("SUGAR")
	data.Sodium = milligrams("NA")
	data.Calcium = milligrams("CA")
	data.Iron = milligrams("FE")
	data.Phosphorus = milligrams("P")
	data.Potassium = milligrams("K")
	data.VitaminA = milligrams("VITA_RAE")
	data.VitaminC = milligrams("VITC")

	return data
}

// hasNutritionData reports whether the payload carries a usable nutrient
// table at all. A payload that fails this check normalizes to all zeros,
// which the pipeline must surface as "could not process nutrition" rather
// than a real measurement.
func hasNutritionData(resp *nutritionResponse) bool {
	return resp != nil && resp.NutritionalInfo != nil &&
		resp.NutritionalInfo.TotalNutrients != nil
}

// normalizeSegmentation maps a segmentation payload into a SegmentationResult.
// A payload without an image id yields nil (nothing to analyze). Segments
// missing a region index or a recognition list are dropped; within a segment,
// candidates missing id, name or probability are dropped, the rest sorted by
// probability descending and capped. A segment left with no candidates is
// dropped entirely, so a non-nil result may still carry zero segments.
func normalizeSegmentation(resp *segmentationResponse) *SegmentationResult {
	if resp == nil || resp.ImageID == nil {
		return nil
	}

	result := &SegmentationResult{ImageID: *resp.ImageID}

	if ft := resp.FoodType; ft != nil && ft.Name != nil {
		name := *ft.Name
		result.FoodType = &name
	}
	for _, fam := range resp.FoodFamily {
		if fam.Name == nil {
			continue
		}
		score := FoodFamilyScore{Name: *fam.Name}
		if fam.ID != nil {
			score.ID = *fam.ID
		}
		if fam.Prob != nil {
			score.Prob = *fam.Prob
		}
		result.FoodFamily = append(result.FoodFamily, score)
	}

	if s := resp.ProcessedImageSize; s != nil && s.Width != nil && s.Height != nil {
		result.ProcessedImageSize = &ImageSize{Width: *s.Width, Height: *s.Height}
	}

	for _, seg := range resp.SegmentationResults {
		if seg.FoodItemPosition == nil || len(seg.RecognitionResults) == 0 {
			continue
		}
		position := *seg.FoodItemPosition
		bbox := boundingBoxOf(seg.ContainedBbox)

		var candidates []DishCandidate
		for _, rec := range seg.RecognitionResults {
			if rec.ID == nil || rec.Name == nil || rec.Prob == nil {
				continue
			}
			candidates = append(candidates, DishCandidate{
				DishID:           *rec.ID,
				Name:             *rec.Name,
				Prob:             *rec.Prob,
				FoodItemPosition: position,
				NutriScore:       nutriScoreOf(rec.NutriScore),
				BoundingBox:      bbox,
			})
		}
		if len(candidates) == 0 {
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Prob > candidates[j].Prob
		})
		if len(candidates) > maxCandidatesPerSegment {
			candidates = candidates[:maxCandidatesPerSegment]
		}

		segment := Segment{
			FoodItemPosition: position,
			BoundingBox:      bbox,
			Candidates:       candidates,
		}
		if c := seg.Center; c != nil && c.X != nil && c.Y != nil {
			segment.Center = &Point{X: *c.X, Y: *c.Y}
		}
		result.Segments = append(result.Segments, segment)
	}

	return result
}

// ingredientNames extracts the name of each ingredient entry, skipping
// entries without one.
func ingredientNames(resp *ingredientsResponse) []string {
	if resp == nil {
		return nil
	}
	var names []string
	for _, ing := range resp.Ingredients {
		if ing.Name == nil {
			continue
		}
		names = append(names, *ing.Name)
	}
	return names
}

func boundingBoxOf(b *rawBoundingBox) *BoundingBox {
	if b == nil {
		return nil
	}
	box := BoundingBox{}
	if b.X != nil {
		box.X = *b.X
	}
	if b.Y != nil {
		box.Y = *b.Y
	}
	if b.W != nil {
		box.W = *b.W
	}
	if b.H != nil {
		box.H = *b.H
	}
	return &box
}

func nutriScoreOf(s *rawNutriScore) *NutriScore {
	if s == nil {
		return nil
	}
	score := NutriScore{}
	if s.Category != nil {
		score.Category = *s.Category
	}
	if s.Standardized != nil {
		score.Standardized = *s.Standardized
	}
	return &score
}
