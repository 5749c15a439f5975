package spoonacular

import (
	"strings"

	"github.com/windoze95/dapur-api/internal/models"
)

type recipeDTO struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	Image               string          `json:"image"`
	Rating              *float64        `json:"rating"`
	SpoonacularScore    float64         `json:"spoonacularScore"`
	ReadyInMinutes      int             `json:"readyInMinutes"`
	Servings            int             `json:"servings"`
	Summary             string          `json:"summary"`
	Instructions        string          `json:"instructions"`
	SourceURL           string          `json:"sourceUrl"`
	ExtendedIngredients []ingredientDTO `json:"extendedIngredients"`
	Nutrition           *nutritionDTO   `json:"nutrition"`
}

type ingredientDTO struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Original string  `json:"original"`
}

type nutritionDTO struct {
	Nutrients   []models.Nutrient `json:"nutrients"`
	Ingredients []ingredientDTO   `json:"ingredients"`
}

// toRecipe converts the wire form. Spoonacular does not return a rating, so
// spoonacularScore (0-100) is scaled onto a 0-5 rating when rating is absent.
func (d recipeDTO) toRecipe() models.Recipe {
	r := models.Recipe{
		ID:             d.ID,
		Title:          d.Title,
		Image:          d.Image,
		ReadyInMinutes: d.ReadyInMinutes,
		Servings:       d.Servings,
		Summary:        d.Summary,
		Instructions:   strings.TrimSpace(d.Instructions),
		SourceURL:      d.SourceURL,
	}
	if d.Rating != nil {
		r.Rating = *d.Rating
	} else if d.SpoonacularScore > 0 {
		r.Rating = d.SpoonacularScore / 20
	}

	ingredients := d.ExtendedIngredients
	if len(ingredients) == 0 && d.Nutrition != nil {
		ingredients = d.Nutrition.Ingredients
	}
	for _, ing := range ingredients {
		r.Ingredients = append(r.Ingredients, models.Ingredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Original: ing.Original,
		})
	}

	if d.Nutrition != nil && len(d.Nutrition.Nutrients) > 0 {
		r.Nutrition = &models.Nutrition{Nutrients: d.Nutrition.Nutrients}
	}
	return r
}

func toRecipes(dtos []recipeDTO) []models.Recipe {
	recipes := make([]models.Recipe, 0, len(dtos))
	for _, d := range dtos {
		recipes = append(recipes, d.toRecipe())
	}
	return recipes
}
