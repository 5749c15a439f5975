package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/cache"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/service"
	"github.com/windoze95/dapur-api/internal/spoonacular"
	"github.com/windoze95/dapur-api/internal/testutil"
)

func newTestChefRouter(inv *testutil.MockInvoker, source *testutil.MockRecipeSource) (*gin.Engine, *testutil.MockConversationRepo) {
	chats := testutil.NewMockConversationRepo()
	gen := testutil.NewTestGateway(inv)
	chef := service.NewChefService(nil, gen, chats)
	search := service.NewRecipeSearchService(nil, gen, source, chats, time.Second)
	cached := service.NewCachedChefService(chef, search, cache.New(cache.NewMemoryStore(), time.Hour))
	recipes := service.NewRecipeService(source, testutil.NewMockBookmarkRepo(), testutil.NewMockViewHistoryRepo(), &testutil.MockPDFRenderer{}, nil)
	handler := NewChefHandler(cached, recipes)

	r := gin.New()
	authed := r.Group("/", setUser(testutil.TestUser()))
	authed.POST("/chef/ask", handler.Ask)
	authed.GET("/chef/history", handler.GetHistory)
	authed.DELETE("/chef/history", handler.ClearHistory)
	authed.POST("/chef/search", handler.Search)
	r.POST("/anon/chef/ask", handler.Ask)
	return r, chats
}

func postJSON(r *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChefAsk_Handler(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "Tumis bumbu sampai harum.", nil
		},
	}
	r, chats := newTestChefRouter(inv, &testutil.MockRecipeSource{})

	w := postJSON(r, "/chef/ask", `{"question": "Bagaimana cara membuat rendang?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d. body: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["answer"] != "Tumis bumbu sampai harum." {
		t.Errorf("answer = %q", body["answer"])
	}
	if n := len(chats.History("testuser")); n != 2 {
		t.Errorf("history entries = %d, want 2", n)
	}
}

func TestChefAsk_Handler_FallbackWhenModelsFail(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	r, _ := newTestChefRouter(inv, &testutil.MockRecipeSource{})

	w := postJSON(r, "/chef/ask", `{"question": "Apa pengganti santan?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when models fail", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if !strings.HasPrefix(body["answer"], "Maaf, Chef AI sedang tidak dapat dihubungi") {
		t.Errorf("answer = %q", body["answer"])
	}
}

func TestChefAsk_Handler_Validation(t *testing.T) {
	r, _ := newTestChefRouter(&testutil.MockInvoker{}, &testutil.MockRecipeSource{})

	if w := postJSON(r, "/chef/ask", `{"question": "   "}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank question status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := postJSON(r, "/chef/ask", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing question status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := postJSON(r, "/anon/chef/ask", `{"question": "Halo"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestChefHistory_Handler(t *testing.T) {
	r, chats := newTestChefRouter(&testutil.MockInvoker{}, &testutil.MockRecipeSource{})
	chats.Append("testuser", models.RoleUser, "Halo Chef")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/chef/history", nil))
	var body struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Messages) != 1 || body.Messages[0].Text != "Halo Chef" {
		t.Errorf("messages = %+v", body.Messages)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/chef/history", nil))
	var cleared map[string]bool
	json.Unmarshal(w.Body.Bytes(), &cleared)
	if !cleared["cleared"] {
		t.Errorf("cleared = %v, want true", cleared)
	}
	if n := len(chats.History("testuser")); n != 0 {
		t.Errorf("history entries = %d, want 0", n)
	}
}

func TestChefSearch_Handler(t *testing.T) {
	inv := &testutil.MockInvoker{
		InvokeFunc: func(context.Context, ai.ModelCandidate, ai.GenerationRequest) (string, error) {
			return `{"queries": ["tempe", "tahu"]}`, nil
		},
	}
	source := &testutil.MockRecipeSource{
		SearchRecipesFunc: func(_ context.Context, p spoonacular.SearchParams) ([]models.Recipe, error) {
			if p.Ingredients[0] == "tempe" {
				return testutil.RecipesWithRatings(1, 3.5), nil
			}
			return testutil.RecipesWithRatings(2, 4.5), nil
		},
	}
	r, _ := newTestChefRouter(inv, source)

	w := postJSON(r, "/chef/search", `{"query": "lauk vegetarian", "max_results": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d. body: %s", w.Code, w.Body.String())
	}
	var body struct {
		Recipes []service.RecipeResponse `json:"recipes"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Recipes) != 2 || body.Recipes[0].ID != 2 {
		t.Errorf("recipes = %+v, want highest rated first", body.Recipes)
	}

	if w := postJSON(r, "/chef/search", `{"query": "lauk", "max_results": 99}`); w.Code != http.StatusBadRequest {
		t.Errorf("oversized max_results status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
