package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/service"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"go.uber.org/zap"
)

// Limits for the recipe listing endpoints.
const (
	defaultRecipeNumber = 5
	maxRecipeNumber     = 20
)

// RecipeHandler is the handler for recipe-related requests.
type RecipeHandler struct {
	Service *service.RecipeService
}

// NewRecipeHandler is the constructor function for initializing a new RecipeHandler.
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{Service: recipeService}
}

// SearchRecipes searches recipes by ingredients and optional filters.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	params, err := searchParamsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipes, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		logger.FromContext(c).Error("failed to search recipes", zap.Strings("ingredients", params.Ingredients), zap.Error(err))
		recipeSourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": h.Service.ToRecipeResponses(username, recipes)})
}

// searchParamsFromQuery reads ingredients, diet, type, max_calories and
// number from the query string.
func searchParamsFromQuery(c *gin.Context) (spoonacular.SearchParams, error) {
	params := spoonacular.SearchParams{Number: defaultRecipeNumber}

	params.Ingredients = service.SplitIngredients(c.Query("ingredients"))
	if len(params.Ingredients) == 0 {
		return params, errors.New("ingredients is required")
	}
	if diet := strings.TrimSpace(c.Query("diet")); diet != "" {
		params.Diet = &diet
	}
	if mealType := strings.TrimSpace(c.Query("type")); mealType != "" {
		params.Type = &mealType
	}
	if v := c.Query("max_calories"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params, errors.New("max_calories must be a positive number")
		}
		params.MaxCalories = n
	}
	number, err := numberFromQuery(c)
	if err != nil {
		return params, err
	}
	params.Number = number
	return params, nil
}

func numberFromQuery(c *gin.Context) (int, error) {
	v := c.Query("number")
	if v == "" {
		return defaultRecipeNumber, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxRecipeNumber {
		return 0, fmt.Errorf("number must be between 1 and %d", maxRecipeNumber)
	}
	return n, nil
}

// RandomRecipes returns a selection of random recipes.
func (h *RecipeHandler) RandomRecipes(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	number, err := numberFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipes, err := h.Service.Random(c.Request.Context(), number)
	if err != nil {
		logger.FromContext(c).Error("failed to fetch random recipes", zap.Error(err))
		recipeSourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": h.Service.ToRecipeResponses(username, recipes)})
}

// GetRecipe returns a recipe by ID and records the view.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	recipe, err := h.Service.Detail(c.Request.Context(), username, recipeID)
	if err != nil {
		logger.FromContext(c).Error("failed to get recipe", zap.Int("recipe_id", recipeID), zap.Error(err))
		recipeSourceError(c, err)
		return
	}

	responses := h.Service.ToRecipeResponses(username, []models.Recipe{*recipe})
	c.JSON(http.StatusOK, gin.H{"recipe": responses[0]})
}

// ExportPDF renders a recipe as a downloadable PDF.
func (h *RecipeHandler) ExportPDF(c *gin.Context) {
	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	data, recipe, err := h.Service.ExportPDF(c.Request.Context(), recipeID)
	if err != nil {
		var notFound *spoonacular.NotFoundError
		if errors.As(err, &notFound) || errors.Is(err, spoonacular.ErrQuotaExhausted) || errors.Is(err, spoonacular.ErrMissingAPIKey) {
			recipeSourceError(c, err)
			return
		}
		logger.FromContext(c).Error("failed to export recipe pdf", zap.Int("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render recipe PDF"})
		return
	}

	filename := fmt.Sprintf("Resep_%s.pdf", pdfFileTitle(recipe.Title))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// SharePDF renders a recipe PDF, uploads it and returns its URL.
func (h *RecipeHandler) SharePDF(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	url, err := h.Service.SharePDF(c.Request.Context(), username, recipeID)
	if err != nil {
		if errors.Is(err, service.ErrSharingDisabled) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "PDF sharing is not enabled"})
			return
		}
		var notFound *spoonacular.NotFoundError
		if errors.As(err, &notFound) {
			recipeSourceError(c, err)
			return
		}
		logger.FromContext(c).Error("failed to share recipe pdf", zap.Int("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to share recipe PDF"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// pdfFileTitle turns a recipe title into a file name fragment.
func pdfFileTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "Tanpa_Judul"
	}
	return b.String()
}
