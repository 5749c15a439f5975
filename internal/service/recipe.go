package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/repository"
	"github.com/windoze95/dapur-api/internal/s3"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"go.uber.org/zap"
)

// ErrSharingDisabled is returned by SharePDF when no uploader is configured.
var ErrSharingDisabled = errors.New("pdf sharing is not configured")

// RecipeSource fetches recipes from the recipe API.
type RecipeSource interface {
	SearchRecipes(ctx context.Context, params spoonacular.SearchParams) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id int) (*models.Recipe, error)
	RandomRecipes(ctx context.Context, n int) ([]models.Recipe, error)
}

// PDFRenderer renders a recipe sheet.
type PDFRenderer interface {
	Render(ctx context.Context, r *models.Recipe) ([]byte, error)
}

// PDFUploader publishes a rendered PDF and returns its URL.
type PDFUploader interface {
	UploadPDF(ctx context.Context, pdfBytes []byte, key string) (string, error)
}

// RecipeService is the business logic layer for browsing, bookmarking and
// exporting recipes.
type RecipeService struct {
	Source    RecipeSource
	Bookmarks repository.BookmarkRepo
	History   repository.ViewHistoryRepo
	Renderer  PDFRenderer
	Uploader  PDFUploader
}

// RecipeResponse is a recipe with its nutrition summary and the caller's
// bookmark state.
type RecipeResponse struct {
	models.Recipe
	NutritionSummary models.NutritionSummary `json:"nutrition_summary"`
	Bookmarked       bool                    `json:"bookmarked"`
}

// NewRecipeService is the constructor function for initializing a new
// RecipeService. uploader may be nil when sharing is disabled.
func NewRecipeService(source RecipeSource, bookmarks repository.BookmarkRepo, history repository.ViewHistoryRepo, renderer PDFRenderer, uploader PDFUploader) *RecipeService {
	return &RecipeService{
		Source:    source,
		Bookmarks: bookmarks,
		History:   history,
		Renderer:  renderer,
		Uploader:  uploader,
	}
}

// ToRecipeResponses decorates recipes for username.
func (s *RecipeService) ToRecipeResponses(username string, recipes []models.Recipe) []RecipeResponse {
	marked := make(map[int]bool)
	if ids, err := s.Bookmarks.List(username); err == nil {
		for _, id := range ids {
			marked[id] = true
		}
	}
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, RecipeResponse{
			Recipe:           r,
			NutritionSummary: r.NutritionSummary(),
			Bookmarked:       marked[r.ID],
		})
	}
	return out
}

// Search runs a filtered recipe search.
func (s *RecipeService) Search(ctx context.Context, params spoonacular.SearchParams) ([]models.Recipe, error) {
	return s.Source.SearchRecipes(ctx, params)
}

// Random returns n random recipes.
func (s *RecipeService) Random(ctx context.Context, n int) ([]models.Recipe, error) {
	return s.Source.RandomRecipes(ctx, n)
}

// Detail fetches a recipe and records it in the user's view history.
// A failure to record history does not fail the request.
func (s *RecipeService) Detail(ctx context.Context, username string, recipeID int) (*models.Recipe, error) {
	recipe, err := s.Source.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.History.Record(username, recipeID); err != nil {
		logger.ForUser(username).Warn("failed to record recipe view", zap.Int("recipe_id", recipeID), zap.Error(err))
	}
	return recipe, nil
}

// AddBookmark bookmarks a recipe. It reports false if it was already bookmarked.
func (s *RecipeService) AddBookmark(username string, recipeID int) (bool, error) {
	return s.Bookmarks.Add(username, recipeID)
}

// RemoveBookmark removes a bookmark. It reports false if there was none.
func (s *RecipeService) RemoveBookmark(username string, recipeID int) (bool, error) {
	return s.Bookmarks.Remove(username, recipeID)
}

// BookmarkIDs returns the bookmarked recipe IDs of username.
func (s *RecipeService) BookmarkIDs(username string) ([]int, error) {
	return s.Bookmarks.List(username)
}

// BookmarkedRecipes fetches every bookmarked recipe. Recipes that can no
// longer be fetched are left out.
func (s *RecipeService) BookmarkedRecipes(ctx context.Context, username string) ([]models.Recipe, error) {
	ids, err := s.Bookmarks.List(username)
	if err != nil {
		return nil, err
	}
	return s.fetchAll(ctx, username, ids), nil
}

// ViewHistory returns the recently viewed recipes of username, newest first.
func (s *RecipeService) ViewHistory(username string) ([]models.ViewedRecipe, error) {
	return s.History.Entries(username)
}

// ViewedRecipes fetches the recently viewed recipes, newest first.
func (s *RecipeService) ViewedRecipes(ctx context.Context, username string) ([]models.Recipe, error) {
	ids, err := s.History.List(username)
	if err != nil {
		return nil, err
	}
	return s.fetchAll(ctx, username, ids), nil
}

// ClearViewHistory empties the view history. It reports false if it was
// already empty.
func (s *RecipeService) ClearViewHistory(username string) (bool, error) {
	return s.History.Clear(username)
}

func (s *RecipeService) fetchAll(ctx context.Context, username string, ids []int) []models.Recipe {
	recipes := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := s.Source.GetRecipe(ctx, id)
		if err != nil {
			logger.ForUser(username).Warn("skipping unavailable recipe", zap.Int("recipe_id", id), zap.Error(err))
			continue
		}
		recipes = append(recipes, *r)
	}
	return recipes
}

// ExportPDF renders the recipe sheet of recipeID.
func (s *RecipeService) ExportPDF(ctx context.Context, recipeID int) ([]byte, *models.Recipe, error) {
	recipe, err := s.Source.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.Renderer.Render(ctx, recipe)
	if err != nil {
		return nil, nil, err
	}
	return data, recipe, nil
}

// SharePDF renders and uploads the recipe sheet and returns its URL.
func (s *RecipeService) SharePDF(ctx context.Context, username string, recipeID int) (string, error) {
	if s.Uploader == nil {
		return "", ErrSharingDisabled
	}
	data, _, err := s.ExportPDF(ctx, recipeID)
	if err != nil {
		return "", err
	}
	url, err := s.Uploader.UploadPDF(ctx, data, s3.GeneratePDFKey(username, recipeID))
	if err != nil {
		return "", fmt.Errorf("failed to share recipe pdf: %w", err)
	}
	return url, nil
}
