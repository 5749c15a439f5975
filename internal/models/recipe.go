package models

import (
	"math"
	"strings"
)

// Recipe is a recipe record as returned by the recipe source.
type Recipe struct {
	ID             int          `json:"id"`
	Title          string       `json:"title"`
	Image          string       `json:"image,omitempty"`
	Rating         float64      `json:"rating"`
	ReadyInMinutes int          `json:"ready_in_minutes,omitempty"`
	Servings       int          `json:"servings,omitempty"`
	Summary        string       `json:"summary,omitempty"`
	Instructions   string       `json:"instructions,omitempty"`
	Ingredients    []Ingredient `json:"ingredients,omitempty"`
	Nutrition      *Nutrition   `json:"nutrition,omitempty"`
	SourceURL      string       `json:"source_url,omitempty"`
}

// Ingredient is a single ingredient line of a recipe.
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Original string  `json:"original,omitempty"`
}

// Nutrition holds per-serving nutrient amounts.
type Nutrition struct {
	Nutrients []Nutrient `json:"nutrients"`
}

// Nutrient is a single named nutrient amount.
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// NutritionSummary is the condensed nutrition view shown next to a recipe.
type NutritionSummary struct {
	Calories          int `json:"calories"`
	Protein           int `json:"protein"`
	Fat               int `json:"fat"`
	Carbs             int `json:"carbs"`
	EstimatedPriceIDR int `json:"estimated_price_idr"`
}

// MinimumPriceIDR is the floor of the estimated serving price.
const MinimumPriceIDR = 15000

// NutritionSummary extracts calories and macros and derives a rough price
// estimate of 100 IDR per kcal with a floor of MinimumPriceIDR.
func (r Recipe) NutritionSummary() NutritionSummary {
	var s NutritionSummary
	if r.Nutrition != nil {
		for _, n := range r.Nutrition.Nutrients {
			name := strings.ToLower(n.Name)
			amount := int(math.Round(n.Amount))
			switch {
			case strings.Contains(name, "calor"):
				s.Calories = amount
			case strings.Contains(name, "protein"):
				s.Protein = amount
			case strings.Contains(name, "fat") && !strings.Contains(name, "saturated"):
				s.Fat = amount
			case strings.Contains(name, "carbohydrate"):
				s.Carbs = amount
			}
		}
	}
	s.EstimatedPriceIDR = s.Calories * 100
	if s.EstimatedPriceIDR < MinimumPriceIDR {
		s.EstimatedPriceIDR = MinimumPriceIDR
	}
	return s
}

// IngredientLines returns the display text of every ingredient.
func (r Recipe) IngredientLines() []string {
	lines := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.Original != "" {
			lines = append(lines, ing.Original)
		} else if ing.Name != "" {
			lines = append(lines, ing.Name)
		}
	}
	return lines
}
