// Package spoonacular is a client for the Spoonacular recipe API.
package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/windoze95/dapur-api/internal/metrics"
	"github.com/windoze95/dapur-api/internal/models"
)

// DefaultBaseURL is the public Spoonacular endpoint.
const DefaultBaseURL = "https://api.spoonacular.com"

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 15 * time.Second

var (
	// ErrMissingAPIKey is returned when the client has no API key.
	ErrMissingAPIKey = errors.New("spoonacular API key is not configured")
	// ErrQuotaExhausted is returned when the daily point quota is used up.
	ErrQuotaExhausted = errors.New("spoonacular quota exhausted")
)

// SearchParams filters a recipe search. Nil Diet and Type mean no filter;
// a non-positive MaxCalories means no ceiling.
type SearchParams struct {
	Ingredients []string
	Diet        *string
	Type        *string
	MaxCalories int
	Number      int
}

// Client calls the Spoonacular recipe endpoints.
type Client struct {
	apiKey     string
	cuisine    string
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a client. cuisine, when set, is applied to every search.
func NewClient(apiKey, cuisine string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:     apiKey,
		cuisine:    cuisine,
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type searchResponse struct {
	Results      []recipeDTO `json:"results"`
	TotalResults int         `json:"totalResults"`
}

type randomResponse struct {
	Recipes []recipeDTO `json:"recipes"`
}

// SearchRecipes runs a complexSearch with nutrition and recipe information.
func (c *Client) SearchRecipes(ctx context.Context, p SearchParams) ([]models.Recipe, error) {
	params := url.Values{}
	if len(p.Ingredients) > 0 {
		params.Set("includeIngredients", strings.Join(p.Ingredients, ","))
	}
	if c.cuisine != "" {
		params.Set("cuisine", c.cuisine)
	}
	if p.Diet != nil && *p.Diet != "" {
		params.Set("diet", *p.Diet)
	}
	if p.Type != nil && *p.Type != "" {
		params.Set("type", *p.Type)
	}
	if p.MaxCalories > 0 {
		params.Set("maxCalories", strconv.Itoa(p.MaxCalories))
	}
	number := p.Number
	if number <= 0 {
		number = 5
	}
	params.Set("number", strconv.Itoa(number))
	params.Set("addRecipeNutrition", "true")
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")

	var resp searchResponse
	if err := c.get(ctx, "search", "/recipes/complexSearch", params, &resp); err != nil {
		return nil, err
	}
	return toRecipes(resp.Results), nil
}

// GetRecipe fetches a single recipe with nutrition.
func (c *Client) GetRecipe(ctx context.Context, id int) (*models.Recipe, error) {
	params := url.Values{}
	params.Set("includeNutrition", "true")

	var dto recipeDTO
	path := fmt.Sprintf("/recipes/%d/information", id)
	if err := c.get(ctx, "information", path, params, &dto); err != nil {
		return nil, err
	}
	r := dto.toRecipe()
	return &r, nil
}

// RandomRecipes fetches n random recipes, limited to the configured cuisine.
func (c *Client) RandomRecipes(ctx context.Context, n int) ([]models.Recipe, error) {
	if n <= 0 {
		n = 5
	}
	params := url.Values{}
	params.Set("number", strconv.Itoa(n))
	params.Set("includeNutrition", "true")
	if c.cuisine != "" {
		params.Set("include-tags", strings.ToLower(c.cuisine))
	}

	var resp randomResponse
	if err := c.get(ctx, "random", "/recipes/random", params, &resp); err != nil {
		return nil, err
	}
	return toRecipes(resp.Recipes), nil
}

// NotFoundError is returned when a recipe id does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recipe not found: %s", e.Path)
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	if !c.Configured() {
		return ErrMissingAPIKey
	}
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimRight(c.BaseURL, "/"), path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create spoonacular request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecipeSourceRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("spoonacular request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecipeSourceRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read spoonacular response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusPaymentRequired, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ErrQuotaExhausted, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Path: path}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("spoonacular returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse spoonacular response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
