package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/cache"
	"github.com/windoze95/dapur-api/internal/models"
)

// Cache operation names.
const (
	CacheOpAsk    = "ask"
	CacheOpSearch = "search"
)

const askFailedMessage = "Maaf, terjadi kesalahan saat memproses pertanyaan Anda (%v)."

// errFallbackResult marks a result produced after every model failed. Such
// results are returned but not cached, so the next identical request
// retries the models.
var errFallbackResult = errors.New("result produced without a model")

// CachedChefService memoizes chef answers and AI searches per input and
// user. Entries are keyed with the generator fingerprint, so results from a
// different provider setup are never served.
type CachedChefService struct {
	Chef   *ChefService
	Search *RecipeSearchService
	Cache  *cache.ResultCache
}

// NewCachedChefService is the constructor function for initializing a new CachedChefService.
func NewCachedChefService(chef *ChefService, search *RecipeSearchService, c *cache.ResultCache) *CachedChefService {
	return &CachedChefService{Chef: chef, Search: search, Cache: c}
}

// Ask is ChefService.Ask behind the result cache.
func (s *CachedChefService) Ask(ctx context.Context, question, username string) string {
	key := cache.Key{
		Op:       CacheOpAsk,
		Input:    question,
		Username: username,
		Epoch:    fingerprint(s.Chef.Gen),
	}

	var fallback string
	return cache.Remember(ctx, s.Cache, key,
		func(ctx context.Context) (string, error) {
			ans := s.Chef.Answer(ctx, question, username)
			if ans.Outcome == ai.OutcomeExhausted {
				fallback = ans.Text
				return "", errFallbackResult
			}
			return ans.Text, nil
		},
		func(err error) string {
			if fallback != "" {
				return fallback
			}
			return fmt.Sprintf(askFailedMessage, err)
		},
	)
}

// SearchRecipes is RecipeSearchService.Search behind the result cache.
func (s *CachedChefService) SearchRecipes(ctx context.Context, userInput, username string, maxResults int) []models.Recipe {
	maxResults = ClampMaxResults(maxResults)
	key := cache.Key{
		Op:       CacheOpSearch,
		Input:    strconv.Itoa(maxResults) + "|" + userInput,
		Username: username,
		Epoch:    fingerprint(s.Search.Gen),
	}

	var fallback []models.Recipe
	return cache.Remember(ctx, s.Cache, key,
		func(ctx context.Context) ([]models.Recipe, error) {
			res := s.Search.Run(ctx, userInput, username, maxResults)
			if res.Plan.Outcome == ai.OutcomeExhausted {
				fallback = res.Recipes
				return nil, errFallbackResult
			}
			return res.Recipes, nil
		},
		func(error) []models.Recipe {
			if fallback != nil {
				return fallback
			}
			return []models.Recipe{}
		},
	)
}

// History returns the conversation log of username.
func (s *CachedChefService) History(username string) []models.ChatMessage {
	return s.Chef.History(username)
}

// ClearHistory empties the conversation log of username.
func (s *CachedChefService) ClearHistory(username string) bool {
	return s.Chef.ClearHistory(username)
}
