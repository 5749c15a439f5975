package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/service"
)

// ChefHandler is the handler for Chef AI requests.
type ChefHandler struct {
	Service *service.CachedChefService
	Recipes *service.RecipeService
}

// NewChefHandler is the constructor function for initializing a new ChefHandler.
func NewChefHandler(chefService *service.CachedChefService, recipeService *service.RecipeService) *ChefHandler {
	return &ChefHandler{Service: chefService, Recipes: recipeService}
}

// Ask answers a cooking question. It always responds with an answer, even
// when no model could be reached.
func (h *ChefHandler) Ask(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer := h.Service.Ask(c.Request.Context(), req.Question, username)
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// GetHistory returns the caller's Chef AI conversation.
func (h *ChefHandler) GetHistory(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": h.Service.History(username)})
}

// ClearHistory deletes the caller's Chef AI conversation.
func (h *ChefHandler) ClearHistory(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}
	cleared := h.Service.ClearHistory(username)
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

// Search finds recipes for a free-text request using model-planned queries.
func (h *ChefHandler) Search(c *gin.Context) {
	username, ok := requireUsername(c)
	if !ok {
		return
	}

	var req struct {
		Query      string `json:"query" binding:"required"`
		MaxResults int    `json:"max_results"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if req.MaxResults < 0 || req.MaxResults > service.MaxSearchResults {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("max_results must be between 1 and %d", service.MaxSearchResults)})
		return
	}

	recipes := h.Service.SearchRecipes(c.Request.Context(), req.Query, username, req.MaxResults)
	c.JSON(http.StatusOK, gin.H{"recipes": h.Recipes.ToRecipeResponses(username, recipes)})
}
