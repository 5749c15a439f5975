package testutil

import (
	"github.com/windoze95/dapur-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of TestUser.
const TestPassword = "Rahasia1!"

// TestUser creates a test user with its auth record populated.
func TestUser() *models.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &models.User{
		Model:    gorm.Model{ID: 1},
		Username: "testuser",
		Auth: &models.UserAuth{
			Model:          gorm.Model{ID: 1},
			UserID:         1,
			HashedPassword: string(hashed),
			AuthType:       models.Standard,
		},
	}
}

// TestRecipe creates a recipe with nutrition, ingredients and instructions.
func TestRecipe() *models.Recipe {
	return &models.Recipe{
		ID:             716429,
		Title:          "Nasi Goreng Kampung",
		Image:          "https://img.spoonacular.com/recipes/716429-556x370.jpg",
		Rating:         4.5,
		ReadyInMinutes: 25,
		Servings:       2,
		Summary:        "Nasi goreng <b>sederhana</b> ala kampung.",
		Instructions:   "<ol><li>Tumis bumbu.</li><li>Masukkan nasi.</li></ol>",
		Ingredients: []models.Ingredient{
			{Name: "rice", Amount: 2, Unit: "cups", Original: "2 piring nasi putih"},
			{Name: "shallot", Amount: 4, Original: "4 siung bawang merah"},
			{Name: "soy sauce", Amount: 2, Unit: "tbsp", Original: "2 sdm kecap manis"},
		},
		Nutrition: &models.Nutrition{Nutrients: []models.Nutrient{
			{Name: "Calories", Amount: 512.3, Unit: "kcal"},
			{Name: "Fat", Amount: 14.2, Unit: "g"},
			{Name: "Saturated Fat", Amount: 3.1, Unit: "g"},
			{Name: "Carbohydrates", Amount: 80.6, Unit: "g"},
			{Name: "Protein", Amount: 12.4, Unit: "g"},
		}},
	}
}

// RecipesWithRatings builds minimal recipes with sequential IDs starting at
// firstID and the given ratings.
func RecipesWithRatings(firstID int, ratings ...float64) []models.Recipe {
	recipes := make([]models.Recipe, len(ratings))
	for i, rating := range ratings {
		recipes[i] = models.Recipe{ID: firstID + i, Title: "Resep", Rating: rating}
	}
	return recipes
}
