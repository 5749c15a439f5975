package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/logger"
	"go.uber.org/zap"
)

// ListHistory returns the caller's recently viewed recipes, newest first.
func (h *RecipeHandler) ListHistory(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	entries, err := h.Service.ViewHistory(username)
	if err != nil {
		logger.FromContext(c).Error("failed to read view history", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history"})
		return
	}
	if c.Query("expand") != "true" {
		c.JSON(http.StatusOK, gin.H{"history": entries})
		return
	}

	recipes, err := h.Service.ViewedRecipes(c.Request.Context(), username)
	if err != nil {
		logger.FromContext(c).Error("failed to expand view history", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "recipes": h.Service.ToRecipeResponses(username, recipes)})
}

// ClearHistory empties the caller's view history.
func (h *RecipeHandler) ClearHistory(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	cleared, err := h.Service.ClearViewHistory(username)
	if err != nil {
		logger.FromContext(c).Error("failed to clear view history", zap.String("username", username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
