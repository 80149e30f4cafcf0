package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string stored as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// NutritionData is the unit-normalized nutrient content of one meal.
// Calories are kcal; protein, carbohydrates, fat, fiber and sugar are grams;
// the remaining micronutrients are milligrams. The four macros are always
// present (zero when the source lacked them); pointer fields distinguish a
// measured 0.0 from "not reported".
type NutritionData struct {
	Calories      float64  `gorm:"not null;default:0" json:"calories"`
	Protein       float64  `gorm:"not null;default:0" json:"protein"`
	Carbohydrates float64  `gorm:"not null;default:0" json:"carbohydrates"`
	Fat           float64  `gorm:"not null;default:0" json:"fat"`
	Fiber         *float64 `json:"fiber,omitempty"`
	Sugar         *float64 `json:"sugar,omitempty"`
	Sodium        *float64 `json:"sodium,omitempty"`
	Calcium       *float64 `json:"calcium,omitempty"`
	Iron          *float64 `json:"iron,omitempty"`
	Phosphorus    *float64 `json:"phosphorus,omitempty"`
	Potassium     *float64 `json:"potassium,omitempty"`
	VitaminA      *float64 `json:"vitamin_a,omitempty"`
	VitaminC      *float64 `json:"vitamin_c,omitempty"`

	Ingredients StringList `gorm:"type:text" json:"ingredients"`
}

// FoodEntry is one saved meal in the nutrition log. Timestamp is epoch
// milliseconds, assigned at insert when zero. Entries are immutable after
// insert except for deletion.
type FoodEntry struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Timestamp int64  `gorm:"index;not null" json:"timestamp"`
	ImageURI  string `gorm:"size:512;not null" json:"image_uri"`

	Nutrition NutritionData `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`

	DishName       *string `gorm:"size:255" json:"dish_name,omitempty"`
	FoodType       *string `gorm:"size:255" json:"food_type,omitempty"`
	FoodGroups     *string `gorm:"type:text" json:"food_groups,omitempty"`     // JSON list of group names
	Recipes        *string `gorm:"type:text" json:"recipes,omitempty"`         // JSON list of recipe names
	MealEstimation *string `gorm:"type:text" json:"meal_estimation,omitempty"`
}

// NutritionSummary is the per-period sum over a set of entries. Derived only,
// never persisted; absent optional fields contribute zero.
type NutritionSummary struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
	Sodium        float64 `json:"sodium"`
	Calcium       float64 `json:"calcium"`
	Iron          float64 `json:"iron"`
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	VitaminA      float64 `json:"vitamin_a"`
	VitaminC      float64 `json:"vitamin_c"`
	EntryCount    int     `json:"entry_count"`
}
