package repository

import (
	"fmt"
	"path/filepath"
)

// BookmarkFile is the bookmark document name inside the data directory.
const BookmarkFile = "bookmarks.json"

// BookmarkRepository keeps each user's bookmarked recipe IDs.
type BookmarkRepository struct {
	store *jsonStore[[]int]
}

// NewBookmarkRepository creates a BookmarkRepository backed by bookmarks.json
// in dataDir.
func NewBookmarkRepository(dataDir string) *BookmarkRepository {
	return &BookmarkRepository{
		store: newJSONStore[[]int](filepath.Join(dataDir, BookmarkFile)),
	}
}

// Add bookmarks a recipe. It returns false when the recipe was already
// bookmarked.
func (r *BookmarkRepository) Add(username string, recipeID int) (bool, error) {
	added := false
	err := r.store.update(func(doc map[string][]int) bool {
		for _, id := range doc[username] {
			if id == recipeID {
				return false
			}
		}
		doc[username] = append(doc[username], recipeID)
		added = true
		return true
	})
	if err != nil {
		return false, fmt.Errorf("add bookmark: %w", err)
	}
	return added, nil
}

// Remove deletes a bookmark. It returns false when the recipe was not
// bookmarked.
func (r *BookmarkRepository) Remove(username string, recipeID int) (bool, error) {
	removed := false
	err := r.store.update(func(doc map[string][]int) bool {
		ids := doc[username]
		for i, id := range ids {
			if id == recipeID {
				doc[username] = append(ids[:i:i], ids[i+1:]...)
				removed = true
				return true
			}
		}
		return false
	})
	if err != nil {
		return false, fmt.Errorf("remove bookmark: %w", err)
	}
	return removed, nil
}

// List returns the user's bookmarked recipe IDs in the order they were added.
func (r *BookmarkRepository) List(username string) ([]int, error) {
	ids := []int{}
	err := r.store.view(func(doc map[string][]int) {
		ids = append(ids, doc[username]...)
	})
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return ids, nil
}

// Contains reports whether the recipe is bookmarked by the user.
func (r *BookmarkRepository) Contains(username string, recipeID int) (bool, error) {
	ids, err := r.List(username)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == recipeID {
			return true, nil
		}
	}
	return false, nil
}
