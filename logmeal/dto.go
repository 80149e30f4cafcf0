package logmeal

// Raw wire schemas of the recognition service. Every field the service may
// omit is a pointer so that absence survives decoding and each consumer has
// to handle it explicitly.

type segmentationResponse struct {
	FoodFamily          []foodFamilyItem    `json:"foodFamily"`
	FoodType            *foodTypeInfo       `json:"foodType"`
	ImageID             *int                `json:"imageId"`
	Occasion            *string             `json:"occasion"`
	ProcessedImageSize  *processedImageSize `json:"processed_image_size"`
	SegmentationResults []rawSegment        `json:"segmentation_results"`
}

type foodFamilyItem struct {
	ID   *int     `json:"id"`
	Name *string  `json:"name"`
	Prob *float64 `json:"prob"`
}

type foodTypeInfo struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
}

type processedImageSize struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

type rawSegment struct {
	Center             *rawCenter       `json:"center"`
	ContainedBbox      *rawBoundingBox  `json:"contained_bbox"`
	FoodItemPosition   *int             `json:"food_item_position"`
	Polygon            []int            `json:"polygon"`
	RecognitionResults []rawRecognition `json:"recognition_results"`
}

type rawCenter struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type rawBoundingBox struct {
	X *int `json:"x"`
	Y *int `json:"y"`
	W *int `json:"w"`
	H *int `json:"h"`
}

type rawRecognition struct {
	ID         *int           `json:"id"`
	Name       *string        `json:"name"`
	Prob       *float64       `json:"prob"`
	FoodType   *foodTypeInfo  `json:"foodType"`
	NutriScore *rawNutriScore `json:"nutri_score"`
}

type rawNutriScore struct {
	Category     *string `json:"nutri_score_category"`
	Standardized *int    `json:"nutri_score_standardized"`
}

type confirmRequest struct {
	ImageID          int      `json:"imageId"`
	ConfirmedClass   []int    `json:"confirmedClass"`
	Source           []string `json:"source"`
	FoodItemPosition []int    `json:"food_item_position"`
}

type confirmResponse struct {
	Code    *int    `json:"code"`
	Success *bool   `json:"success"`
	Message *string `json:"message"`
}

type imageIDRequest struct {
	ImageID int `json:"imageId"`
}

type nutritionResponse struct {
	FoodName        []string         `json:"foodName"`
	HasNutrition    *bool            `json:"hasNutritionalInfo"`
	ImageID         *int             `json:"imageId"`
	NutritionalInfo *nutritionalInfo `json:"nutritional_info"`
	ServingSize     *float64         `json:"serving_size"`
}

type nutritionalInfo struct {
	Calories       *float64            `json:"calories"`
	TotalNutrients map[string]nutrient `json:"totalNutrients"`
}

type nutrient struct {
	Label    *string  `json:"label"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

type ingredientsResponse struct {
	ImageID     *int            `json:"imageId"`
	Ingredients []rawIngredient `json:"ingredients"`
}

type rawIngredient struct {
	ID       *int         `json:"id"`
	Name     *string      `json:"name"`
	Quantity *rawQuantity `json:"quantity"`
}

type rawQuantity struct {
	Value *float64 `json:"value"`
	Unit  *string  `json:"unit"`
}
