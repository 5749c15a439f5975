package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/logger"
	"go.uber.org/zap"
)

// ListBookmarks returns the caller's bookmarked recipes.
func (h *RecipeHandler) ListBookmarks(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	recipes, err := h.Service.BookmarkedRecipes(c.Request.Context(), username)
	if err != nil {
		logger.FromContext(c).Error("failed to list bookmarks", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookmarks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": h.Service.ToRecipeResponses(username, recipes)})
}

// AddBookmark bookmarks a recipe for the caller.
func (h *RecipeHandler) AddBookmark(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	added, err := h.Service.AddBookmark(username, recipeID)
	if err != nil {
		logger.FromContext(c).Error("failed to add bookmark", zap.Int("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add bookmark"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

// RemoveBookmark removes a bookmark of the caller.
func (h *RecipeHandler) RemoveBookmark(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	recipeID, ok := parseRecipeID(c)
	if !ok {
		return
	}

	removed, err := h.Service.RemoveBookmark(username, recipeID)
	if err != nil {
		logger.FromContext(c).Error("failed to remove bookmark", zap.Int("recipe_id", recipeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove bookmark"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}
