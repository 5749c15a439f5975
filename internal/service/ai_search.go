package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/repository"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"go.uber.org/zap"
)

// AI search limits.
const (
	MaxQueryPhrases    = 5
	DefaultMaxResults  = 5
	MaxSearchResults   = 20
	QueryPlanMaxTokens = 200
	overFetchFactor    = 3
	// searchCalorieCeiling is high enough to never filter anything out.
	searchCalorieCeiling = 10000
	defaultPhraseTimeout = 15 * time.Second
)

// PlanSource records which step produced a query plan.
type PlanSource string

// Query plan sources, in order of preference.
const (
	PlanFromJSON  PlanSource = "json"
	PlanFromLines PlanSource = "lines"
	PlanFromInput PlanSource = "input"
)

// QueryPlan is the list of search phrases derived from a free-text request.
// Outcome is the gateway result of the planning call.
type QueryPlan struct {
	Phrases []string   `json:"phrases"`
	Source  PlanSource `json:"source"`
	Outcome ai.Outcome `json:"-"`
}

// SearchResult is a finished search with the plan that produced it.
type SearchResult struct {
	Recipes []models.Recipe
	Plan    QueryPlan
}

// RecipeSearchService turns free-text requests into recipe searches.
type RecipeSearchService struct {
	Prompts       *config.Prompts
	Gen           Generator
	Source        RecipeSource
	Chats         repository.ConversationRepo
	PhraseTimeout time.Duration
}

// NewRecipeSearchService is the constructor function for initializing a new RecipeSearchService.
func NewRecipeSearchService(prompts *config.Prompts, gen Generator, source RecipeSource, chats repository.ConversationRepo, phraseTimeout time.Duration) *RecipeSearchService {
	if prompts == nil {
		prompts = config.DefaultPrompts()
	}
	if phraseTimeout <= 0 {
		phraseTimeout = defaultPhraseTimeout
	}
	return &RecipeSearchService{
		Prompts:       prompts,
		Gen:           gen,
		Source:        source,
		Chats:         chats,
		PhraseTimeout: phraseTimeout,
	}
}

// Search returns at most maxResults recipes for userInput, best rated
// first. It never returns nil; failures yield an empty slice.
func (s *RecipeSearchService) Search(ctx context.Context, userInput, username string, maxResults int) []models.Recipe {
	return s.Run(ctx, userInput, username, maxResults).Recipes
}

// ClampMaxResults maps non-positive values to DefaultMaxResults and caps
// the rest at MaxSearchResults.
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > MaxSearchResults:
		return MaxSearchResults
	default:
		return n
	}
}

// Run is Search with the query plan attached.
func (s *RecipeSearchService) Run(ctx context.Context, userInput, username string, maxResults int) SearchResult {
	maxResults = ClampMaxResults(maxResults)
	s.Chats.Append(username, models.RoleUser, fmt.Sprintf("Mencari resep: %s", userInput))

	plan := s.Plan(ctx, userInput)
	recipes := s.execute(ctx, plan, maxResults, username)
	RankByRating(recipes)
	if len(recipes) > maxResults {
		recipes = recipes[:maxResults]
	}

	logger.ForUser(username).Info("ai recipe search finished",
		zap.String("plan_source", string(plan.Source)),
		zap.Int("phrases", len(plan.Phrases)),
		zap.Int("results", len(recipes)),
	)
	s.Chats.Append(username, models.RoleAssistant, fmt.Sprintf("Menemukan %d resep terkait untuk: %s", len(recipes), userInput))
	return SearchResult{Recipes: recipes, Plan: plan}
}

// Plan asks the model for search phrases. Without a usable reply the plan
// is the raw input as a single phrase.
func (s *RecipeSearchService) Plan(ctx context.Context, userInput string) QueryPlan {
	raw := QueryPlan{Phrases: []string{userInput}, Source: PlanFromInput, Outcome: ai.OutcomeUnavailable}
	if s.Gen != nil && s.Gen.Available() {
		prompt, err := config.RenderPrompt(s.Prompts.Chef.QueryPlan, map[string]interface{}{
			"Input":      userInput,
			"MaxQueries": MaxQueryPhrases,
		})
		if err != nil {
			logger.Get().Error("failed to render query plan prompt", zap.Error(err))
		} else {
			res := generate(ctx, s.Gen, ai.GenerationRequest{
				Prompt:          prompt,
				MaxOutputTokens: QueryPlanMaxTokens,
				Temperature:     ChefTemperature,
			})
			if res.Outcome == ai.OutcomeSuccess {
				if plan, ok := ParseQueryPlan(res.Text); ok {
					plan.Outcome = res.Outcome
					return plan
				}
			}
			raw.Outcome = res.Outcome
		}
	}
	return raw
}

// ParseQueryPlan reads a model reply as {"queries": [...]}, tolerating a
// surrounding code fence. A reply that is not JSON is read one phrase per
// line. It reports false when no phrase could be extracted.
func ParseQueryPlan(text string) (QueryPlan, bool) {
	body := stripCodeFence(text)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(body), &obj); err == nil {
		queries, _ := obj["queries"].([]interface{})
		var phrases []string
		for _, q := range queries {
			if str, ok := q.(string); ok {
				phrases = appendPhrase(phrases, str)
			}
		}
		if len(phrases) == 0 {
			return QueryPlan{}, false
		}
		return QueryPlan{Phrases: phrases, Source: PlanFromJSON}, true
	}

	var phrases []string
	for _, line := range strings.Split(body, "\n") {
		phrases = appendPhrase(phrases, strings.Trim(line, "- \t\r"))
	}
	if len(phrases) == 0 {
		return QueryPlan{}, false
	}
	return QueryPlan{Phrases: phrases, Source: PlanFromLines}, true
}

func appendPhrase(phrases []string, p string) []string {
	p = strings.TrimSpace(p)
	if p == "" || len(phrases) >= MaxQueryPhrases {
		return phrases
	}
	return append(phrases, p)
}

func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if i := strings.Index(t, "\n"); i >= 0 {
		t = t[i+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// SplitIngredients splits a phrase on commas when it has any, otherwise on
// whitespace.
func SplitIngredients(phrase string) []string {
	var parts []string
	if strings.Contains(phrase, ",") {
		parts = strings.Split(phrase, ",")
	} else {
		parts = strings.Fields(phrase)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// execute runs the plan phrase by phrase until 3×maxResults unique recipes
// have been collected.
func (s *RecipeSearchService) execute(ctx context.Context, plan QueryPlan, maxResults int, username string) []models.Recipe {
	limit := maxResults * overFetchFactor
	results := []models.Recipe{}
	if s.Source == nil {
		logger.Get().Warn("ai recipe search has no recipe source")
		return results
	}

	seen := make(map[int]bool)
	for _, phrase := range plan.Phrases {
		if len(results) >= limit || ctx.Err() != nil {
			break
		}
		ingredients := SplitIngredients(phrase)
		if len(ingredients) == 0 {
			continue
		}

		found, err := s.searchPhrase(ctx, ingredients, maxResults)
		if err != nil {
			logger.ForUser(username).Warn("recipe search failed for phrase, skipping",
				zap.String("phrase", phrase), zap.Error(err))
			continue
		}
		for _, r := range found {
			if len(results) >= limit {
				break
			}
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			results = append(results, r)
		}
	}
	return results
}

func (s *RecipeSearchService) searchPhrase(ctx context.Context, ingredients []string, number int) (found []models.Recipe, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.PhraseTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recipe source panic: %v", r)
		}
	}()

	return s.Source.SearchRecipes(ctx, spoonacular.SearchParams{
		Ingredients: ingredients,
		MaxCalories: searchCalorieCeiling,
		Number:      number,
	})
}

// RankByRating sorts recipes by rating, highest first. Equal ratings keep
// their order.
func RankByRating(recipes []models.Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].Rating > recipes[j].Rating
	})
}
