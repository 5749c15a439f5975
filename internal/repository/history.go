package repository

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/windoze95/dapur-api/internal/models"
)

// MaxViewedRecipes is the number of most recently viewed recipes kept per user.
const MaxViewedRecipes = 20

// HistoryFile is the view history document name inside the data directory.
const HistoryFile = "history.json"

// ViewHistoryRepository keeps each user's recently viewed recipes, most
// recent first.
type ViewHistoryRepository struct {
	store *jsonStore[[]models.ViewedRecipe]
	now   func() time.Time
}

// NewViewHistoryRepository creates a ViewHistoryRepository backed by
// history.json in dataDir.
func NewViewHistoryRepository(dataDir string) *ViewHistoryRepository {
	return &ViewHistoryRepository{
		store: newJSONStore[[]models.ViewedRecipe](filepath.Join(dataDir, HistoryFile)),
		now:   time.Now,
	}
}

// Record moves the recipe to the front of the user's history.
func (r *ViewHistoryRepository) Record(username string, recipeID int) error {
	entry := models.ViewedRecipe{RecipeID: recipeID, ViewedAt: r.now()}
	err := r.store.update(func(doc map[string][]models.ViewedRecipe) bool {
		entries := make([]models.ViewedRecipe, 0, len(doc[username])+1)
		entries = append(entries, entry)
		for _, e := range doc[username] {
			if e.RecipeID != recipeID {
				entries = append(entries, e)
			}
		}
		if len(entries) > MaxViewedRecipes {
			entries = entries[:MaxViewedRecipes]
		}
		doc[username] = entries
		return true
	})
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// Entries returns the user's history, most recent first.
func (r *ViewHistoryRepository) Entries(username string) ([]models.ViewedRecipe, error) {
	entries := []models.ViewedRecipe{}
	err := r.store.view(func(doc map[string][]models.ViewedRecipe) {
		entries = append(entries, doc[username]...)
	})
	if err != nil {
		return nil, fmt.Errorf("load view history: %w", err)
	}
	return entries, nil
}

// List returns only the recipe IDs of the user's history, most recent first.
func (r *ViewHistoryRepository) List(username string) ([]int, error) {
	entries, err := r.Entries(username)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.RecipeID
	}
	return ids, nil
}

// Clear empties the user's history. It returns false when there was nothing
// to clear.
func (r *ViewHistoryRepository) Clear(username string) (bool, error) {
	cleared := false
	err := r.store.update(func(doc map[string][]models.ViewedRecipe) bool {
		if len(doc[username]) == 0 {
			return false
		}
		doc[username] = []models.ViewedRecipe{}
		cleared = true
		return true
	})
	if err != nil {
		return false, fmt.Errorf("clear view history: %w", err)
	}
	return cleared, nil
}
