package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/cache"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"github.com/windoze95/dapur-api/internal/testutil"
)

func newCachedService(inv *testutil.MockInvoker, source RecipeSource, ttl time.Duration) (*CachedChefService, *testutil.MockConversationRepo) {
	chats := testutil.NewMockConversationRepo()
	gen := testutil.NewTestGateway(inv)
	chef := NewChefService(nil, gen, chats)
	search := NewRecipeSearchService(nil, gen, source, chats, time.Second)
	return NewCachedChefService(chef, search, cache.New(cache.NewMemoryStore(), ttl)), chats
}

func TestCachedAsk_RepeatServedFromCache(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "Pakai santan kental.", nil
		},
	}
	svc, chats := newCachedService(inv, nil, time.Hour)

	first := svc.Ask(context.Background(), "Santan apa?", "budi")
	second := svc.Ask(context.Background(), "Santan apa?", "budi")

	if first != "Pakai santan kental." || second != first {
		t.Errorf("answers = %q, %q", first, second)
	}
	if inv.Calls() != 1 {
		t.Errorf("model calls = %d, want 1", inv.Calls())
	}
	if n := len(chats.History("budi")); n != 2 {
		t.Errorf("history entries = %d, want 2 (cache hits are not logged)", n)
	}
}

func TestCachedAsk_SeparatesUsers(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "Jawaban.", nil
		},
	}
	svc, _ := newCachedService(inv, nil, time.Hour)

	svc.Ask(context.Background(), "Apa itu tempe?", "budi")
	svc.Ask(context.Background(), "Apa itu tempe?", "sari")

	if inv.Calls() != 2 {
		t.Errorf("model calls = %d, want 2", inv.Calls())
	}
}

func TestCachedAsk_ExhaustedIsNotCached(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	svc, _ := newCachedService(inv, nil, time.Hour)

	first := svc.Ask(context.Background(), "Berapa kalori nasi?", "budi")
	svc.Ask(context.Background(), "Berapa kalori nasi?", "budi")

	if !strings.HasPrefix(first, "Maaf, Chef AI sedang tidak dapat dihubungi") {
		t.Errorf("answer = %q, want exhausted notice", first)
	}
	if !strings.HasSuffix(first, fallbackCalories) {
		t.Errorf("answer = %q, want calorie fallback", first)
	}
	if inv.Calls() != 2 {
		t.Errorf("model calls = %d, want 2", inv.Calls())
	}
}

func TestCachedAsk_FingerprintChangeRecomputes(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "Jawaban.", nil
		},
	}
	svc, _ := newCachedService(inv, nil, time.Hour)
	svc.Ask(context.Background(), "Apa itu tempe?", "budi")

	svc.Chef.Gen = ai.NewGateway(ai.GatewayConfig{
		Candidates: []ai.ModelCandidate{{ID: "models/other-pro"}},
		Invokers:   []ai.Invoker{inv},
	})
	svc.Ask(context.Background(), "Apa itu tempe?", "budi")

	if inv.Calls() != 2 {
		t.Errorf("model calls = %d, want 2", inv.Calls())
	}
}

func TestCachedSearch_ExhaustedPlanIsNotCached(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	source := &testutil.MockRecipeSource{
		SearchRecipesFunc: func(context.Context, spoonacular.SearchParams) ([]models.Recipe, error) {
			return testutil.RecipesWithRatings(1, 4, 5), nil
		},
	}
	svc, _ := newCachedService(inv, source, time.Hour)

	first := svc.SearchRecipes(context.Background(), "ayam", "budi", 5)
	second := svc.SearchRecipes(context.Background(), "ayam", "budi", 5)

	if len(first) != 2 || len(second) != 2 {
		t.Errorf("results = %d, %d, want raw-input results both times", len(first), len(second))
	}
	if inv.Calls() != 2 {
		t.Errorf("model calls = %d, want 2", inv.Calls())
	}
	if source.SearchCount() != 2 {
		t.Errorf("searches = %d, want 2", source.SearchCount())
	}
}

func TestCachedSearch_OversizedMaxSharesCappedEntry(t *testing.T) {
	source := &testutil.MockRecipeSource{
		SearchRecipesFunc: func(context.Context, spoonacular.SearchParams) ([]models.Recipe, error) {
			return testutil.RecipesWithRatings(1, 1, 2, 3), nil
		},
	}
	svc, _ := newCachedService(&testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return `{"queries":["ayam"]}`, nil
		},
	}, source, time.Hour)

	svc.SearchRecipes(context.Background(), "ayam", "budi", MaxSearchResults)
	got := svc.SearchRecipes(context.Background(), "ayam", "budi", math.MaxInt)
	if len(got) != 3 {
		t.Errorf("results = %d, want 3", len(got))
	}
	if source.SearchCount() != 1 {
		t.Errorf("searches = %d, want 1", source.SearchCount())
	}
}

func TestCachedSearch_ExpiresAfterTTL(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return `{"queries":["ayam"]}`, nil
		},
	}
	source := &testutil.MockRecipeSource{
		SearchRecipesFunc: func(context.Context, spoonacular.SearchParams) ([]models.Recipe, error) {
			return testutil.RecipesWithRatings(1, 4, 5), nil
		},
	}
	svc, _ := newCachedService(inv, source, 50*time.Millisecond)

	first := svc.SearchRecipes(context.Background(), "ayam", "budi", 5)
	svc.SearchRecipes(context.Background(), "ayam", "budi", 5)
	if source.SearchCount() != 1 {
		t.Fatalf("searches = %d, want 1 before expiry", source.SearchCount())
	}
	if len(first) != 2 || first[0].ID != 2 {
		t.Errorf("first = %+v, want recipes sorted by rating", first)
	}

	time.Sleep(80 * time.Millisecond)
	svc.SearchRecipes(context.Background(), "ayam", "budi", 5)
	if source.SearchCount() != 2 {
		t.Errorf("searches = %d, want 2 after expiry", source.SearchCount())
	}
}

func TestCachedSearch_MaxResultsIsPartOfKey(t *testing.T) {
	source := &testutil.MockRecipeSource{
		SearchRecipesFunc: func(context.Context, spoonacular.SearchParams) ([]models.Recipe, error) {
			return testutil.RecipesWithRatings(1, 1, 2, 3), nil
		},
	}
	svc, _ := newCachedService(&testutil.MockInvoker{}, source, time.Hour)

	if got := svc.SearchRecipes(context.Background(), "ayam", "budi", 1); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if got := svc.SearchRecipes(context.Background(), "ayam", "budi", 3); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestCachedSearch_PanicDegradesToEmpty(t *testing.T) {
	svc, _ := newCachedService(&testutil.MockInvoker{}, &testutil.MockRecipeSource{}, time.Hour)
	svc.Search.Chats = nil

	got := svc.SearchRecipes(context.Background(), "ayam", "budi", 5)
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}
