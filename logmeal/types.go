package logmeal

// SegmentationResult is one analyzed image: the service-assigned image id,
// the image-level food-type and food-family classifications, the processed
// image dimensions when reported, and the per-region candidate sets that
// survived filtering. Valid only for the pipeline invocation that produced
// it; the image id ties all later calls to the same server-side session.
// The type and family labels feed a saved entry's food_type and food_groups
// fields.
type SegmentationResult struct {
	ImageID            int               `json:"image_id"`
	FoodType           *string           `json:"food_type,omitempty"`
	FoodFamily         []FoodFamilyScore `json:"food_family,omitempty"`
	ProcessedImageSize *ImageSize        `json:"processed_image_size,omitempty"`
	Segments           []Segment         `json:"segments"`
}

// FoodFamilyScore is one image-level food-family classification with its
// probability.
type FoodFamilyScore struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Prob float64 `json:"prob"`
}

// Segment is one detected food region with its ranked dish candidates.
type Segment struct {
	FoodItemPosition int             `json:"food_item_position"`
	BoundingBox      *BoundingBox    `json:"bounding_box,omitempty"`
	Center           *Point          `json:"center,omitempty"`
	Candidates       []DishCandidate `json:"candidates"`
}

// DishCandidate is one possible dish identity for a region, ranked by the
// recognition probability. Ephemeral: candidates exist only during the
// selection step and are never persisted.
type DishCandidate struct {
	DishID           int          `json:"dish_id"`
	Name             string       `json:"name"`
	Prob             float64      `json:"prob"`
	FoodItemPosition int          `json:"food_item_position"`
	NutriScore       *NutriScore  `json:"nutri_score,omitempty"`
	BoundingBox      *BoundingBox `json:"bounding_box,omitempty"`
}

// NutriScore is the optional nutrition-quality score attached to a candidate.
type NutriScore struct {
	Category     string `json:"category"`
	Standardized int    `json:"standardized"`
}

// BoundingBox is a pixel-space rectangle in the processed image.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Point is a pixel-space coordinate in the processed image.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ImageSize holds the dimensions of the service-side processed image.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
