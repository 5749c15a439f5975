package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"github.com/windoze95/dapur-api/internal/util"
)

// parseUintParam parses a string into a uint.
func parseUintParam(param string) (uint, error) {
	parsed, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed > uint64(^uint(0)) {
		return 0, fmt.Errorf("value out of range for uint: %d", parsed)
	}
	return uint(parsed), nil
}

// parseRecipeID reads the recipe_id path parameter. Recipe IDs are positive.
func parseRecipeID(c *gin.Context) (int, bool) {
	id, err := parseUintParam(c.Param("recipe_id"))
	if err != nil || id == 0 || id > uint(^uint32(0)>>1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return 0, false
	}
	return int(id), true
}

// requireUsername returns the authenticated username or writes a 401.
func requireUsername(c *gin.Context) (string, bool) {
	username, err := util.GetUsernameFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return username, true
}

// recipeSourceError writes the response for a failed recipe source call.
func recipeSourceError(c *gin.Context, err error) {
	var notFound *spoonacular.NotFoundError
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, spoonacular.ErrQuotaExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe source quota exhausted, try again later"})
	case errors.Is(err, spoonacular.ErrMissingAPIKey):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe source is not configured"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach recipe source"})
	}
}
