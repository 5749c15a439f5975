package models

import "testing"

func TestNutritionSummary(t *testing.T) {
	r := Recipe{
		Nutrition: &Nutrition{Nutrients: []Nutrient{
			{Name: "Calories", Amount: 412.6, Unit: "kcal"},
			{Name: "Fat", Amount: 18.2, Unit: "g"},
			{Name: "Saturated Fat", Amount: 6.1, Unit: "g"},
			{Name: "Carbohydrates", Amount: 40.4, Unit: "g"},
			{Name: "Protein", Amount: 22.5, Unit: "g"},
		}},
	}

	got := r.NutritionSummary()
	want := NutritionSummary{Calories: 413, Protein: 23, Fat: 18, Carbs: 40, EstimatedPriceIDR: 41300}
	if got != want {
		t.Errorf("NutritionSummary() = %+v, want %+v", got, want)
	}
}

func TestNutritionSummary_PriceFloor(t *testing.T) {
	r := Recipe{Nutrition: &Nutrition{Nutrients: []Nutrient{{Name: "Calories", Amount: 90}}}}
	if got := r.NutritionSummary().EstimatedPriceIDR; got != MinimumPriceIDR {
		t.Errorf("EstimatedPriceIDR = %d, want %d", got, MinimumPriceIDR)
	}
}

func TestNutritionSummary_NoNutrition(t *testing.T) {
	got := Recipe{}.NutritionSummary()
	if got.Calories != 0 || got.EstimatedPriceIDR != MinimumPriceIDR {
		t.Errorf("NutritionSummary() = %+v, want zero macros and floor price", got)
	}
}

func TestIngredientLines(t *testing.T) {
	r := Recipe{Ingredients: []Ingredient{
		{Name: "telur", Original: "2 butir telur"},
		{Name: "garam"},
		{},
	}}
	got := r.IngredientLines()
	if len(got) != 2 || got[0] != "2 butir telur" || got[1] != "garam" {
		t.Errorf("IngredientLines() = %v, want [2 butir telur garam]", got)
	}
}
