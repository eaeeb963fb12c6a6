package curator

import (
	"errors"
	"fmt"
	"strings"

	"matjip/apps/backend/internal/recommend"
)

var (
	ErrNoFoodSelected   = errors.New("at least one food category is required")
	ErrNoTimeSelected   = errors.New("at least one visit time is required")
	ErrUnknownCategory  = errors.New("unknown food category")
	ErrUnknownTimeLabel = errors.New("unknown visit time")
)

// FoodCategories is the closed list offered by the input form.
var FoodCategories = []string{"한식", "양식", "중식", "일식", "분식", "카페/디저트", "고기", "술"}

// Form is one submission of the input screen.
type Form struct {
	Gender   string   `json:"gender" form:"gender"`
	AgeGroup string   `json:"age_group" form:"age_group"`
	Foods    []string `json:"foods" form:"foods"`
	Times    []string `json:"times" form:"times"`
	Prompt   string   `json:"prompt" form:"prompt"`
}

// Normalize trims fields and drops empty selections.
func (f Form) Normalize() Form {
	return Form{
		Gender:   strings.TrimSpace(f.Gender),
		AgeGroup: strings.TrimSpace(f.AgeGroup),
		Foods:    compact(f.Foods),
		Times:    compact(f.Times),
		Prompt:   strings.TrimSpace(f.Prompt),
	}
}

// Validate requires at least one food category and one visit time, both from
// the fixed option lists.
func (f Form) Validate() error {
	if len(f.Foods) == 0 {
		return ErrNoFoodSelected
	}
	if len(f.Times) == 0 {
		return ErrNoTimeSelected
	}
	for _, food := range f.Foods {
		if !isFoodCategory(food) {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, food)
		}
	}
	for _, label := range f.Times {
		if !recommend.IsTimeWindowLabel(label) {
			return fmt.Errorf("%w: %q", ErrUnknownTimeLabel, label)
		}
	}
	return nil
}

// Query converts the form into the scorer's input.
func (f Form) Query() recommend.DemographicQuery {
	return recommend.DemographicQuery{
		Gender:      recommend.ParseGender(f.Gender),
		AgeGroup:    recommend.AgeGroup(f.AgeGroup),
		TimeWindows: f.Times,
	}
}

func isFoodCategory(value string) bool {
	for _, known := range FoodCategories {
		if known == value {
			return true
		}
	}
	return false
}

func compact(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
