package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/windoze95/dapur-api/internal/ai"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/repository"
	"github.com/windoze95/dapur-api/internal/spoonacular"
)

// --- MockInvoker ---

// MockInvoker is a mock implementation of ai.Invoker. It supports every
// candidate unless SupportsFunc says otherwise.
type MockInvoker struct {
	ShapeValue   ai.Shape
	SupportsFunc func(c ai.ModelCandidate) bool
	InvokeFunc   func(ctx context.Context, c ai.ModelCandidate, req ai.GenerationRequest) (string, error)

	mu      sync.Mutex
	Prompts []string
}

func (m *MockInvoker) Shape() ai.Shape {
	if m.ShapeValue == "" {
		return ai.ShapeCompletion
	}
	return m.ShapeValue
}

func (m *MockInvoker) Supports(c ai.ModelCandidate) bool {
	if m.SupportsFunc != nil {
		return m.SupportsFunc(c)
	}
	return true
}

func (m *MockInvoker) Invoke(ctx context.Context, c ai.ModelCandidate, req ai.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, req.Prompt)
	m.mu.Unlock()
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, c, req)
	}
	return "", fmt.Errorf("Invoke not configured")
}

// Calls returns how many times Invoke was called.
func (m *MockInvoker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// NewTestGateway builds a gateway with one candidate served by inv.
func NewTestGateway(inv ai.Invoker) *ai.Gateway {
	return ai.NewGateway(ai.GatewayConfig{
		Candidates:     []ai.ModelCandidate{{ID: "models/test-flash"}},
		Invokers:       []ai.Invoker{inv},
		AttemptTimeout: time.Second,
	})
}

// --- MockRecipeSource ---

// MockRecipeSource is a mock implementation of service.RecipeSource.
type MockRecipeSource struct {
	SearchRecipesFunc func(ctx context.Context, params spoonacular.SearchParams) ([]models.Recipe, error)
	GetRecipeFunc     func(ctx context.Context, id int) (*models.Recipe, error)
	RandomRecipesFunc func(ctx context.Context, n int) ([]models.Recipe, error)

	mu       sync.Mutex
	Searches [][]string
}

func (m *MockRecipeSource) SearchRecipes(ctx context.Context, params spoonacular.SearchParams) ([]models.Recipe, error) {
	m.mu.Lock()
	m.Searches = append(m.Searches, params.Ingredients)
	m.mu.Unlock()
	if m.SearchRecipesFunc != nil {
		return m.SearchRecipesFunc(ctx, params)
	}
	return nil, fmt.Errorf("SearchRecipes not configured")
}

func (m *MockRecipeSource) GetRecipe(ctx context.Context, id int) (*models.Recipe, error) {
	if m.GetRecipeFunc != nil {
		return m.GetRecipeFunc(ctx, id)
	}
	return nil, &spoonacular.NotFoundError{Path: fmt.Sprintf("/recipes/%d/information", id)}
}

func (m *MockRecipeSource) RandomRecipes(ctx context.Context, n int) ([]models.Recipe, error) {
	if m.RandomRecipesFunc != nil {
		return m.RandomRecipesFunc(ctx, n)
	}
	return nil, fmt.Errorf("RandomRecipes not configured")
}

// SearchCount returns how many searches were issued.
func (m *MockRecipeSource) SearchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Searches)
}

// --- MockPDFRenderer / MockPDFUploader ---

// MockPDFRenderer is a mock implementation of service.PDFRenderer.
type MockPDFRenderer struct {
	RenderFunc func(ctx context.Context, r *models.Recipe) ([]byte, error)
}

func (m *MockPDFRenderer) Render(ctx context.Context, r *models.Recipe) ([]byte, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, r)
	}
	return []byte("%PDF-1.3 " + r.Title), nil
}

// MockPDFUploader is a mock implementation of service.PDFUploader.
type MockPDFUploader struct {
	UploadPDFFunc func(ctx context.Context, pdfBytes []byte, key string) (string, error)
}

func (m *MockPDFUploader) UploadPDF(ctx context.Context, pdfBytes []byte, key string) (string, error) {
	if m.UploadPDFFunc != nil {
		return m.UploadPDFFunc(ctx, pdfBytes, key)
	}
	return "https://bucket.example.com/" + key, nil
}

// --- MockConversationRepo ---

// MockConversationRepo is an in-memory mock implementation of repository.ConversationRepo.
type MockConversationRepo struct {
	mu   sync.Mutex
	Logs map[string][]models.ChatMessage
}

// NewMockConversationRepo creates an empty MockConversationRepo.
func NewMockConversationRepo() *MockConversationRepo {
	return &MockConversationRepo{Logs: make(map[string][]models.ChatMessage)}
}

func (m *MockConversationRepo) Append(username string, role models.ChatRole, text string) bool {
	if username == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := append(m.Logs[username], models.ChatMessage{Role: role, Text: text, Timestamp: time.Now()})
	if len(entries) > repository.MaxConversationMessages {
		entries = entries[len(entries)-repository.MaxConversationMessages:]
	}
	m.Logs[username] = entries
	return true
}

func (m *MockConversationRepo) History(username string) []models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChatMessage{}, m.Logs[username]...)
}

func (m *MockConversationRepo) Clear(username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Logs[username]) == 0 {
		return false
	}
	m.Logs[username] = []models.ChatMessage{}
	return true
}

// --- MockBookmarkRepo ---

// MockBookmarkRepo is an in-memory mock implementation of repository.BookmarkRepo.
type MockBookmarkRepo struct {
	mu        sync.Mutex
	Bookmarks map[string][]int
	Err       error
}

// NewMockBookmarkRepo creates an empty MockBookmarkRepo.
func NewMockBookmarkRepo() *MockBookmarkRepo {
	return &MockBookmarkRepo{Bookmarks: make(map[string][]int)}
}

func (m *MockBookmarkRepo) Add(username string, recipeID int) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.Bookmarks[username] {
		if id == recipeID {
			return false, nil
		}
	}
	m.Bookmarks[username] = append(m.Bookmarks[username], recipeID)
	return true, nil
}

func (m *MockBookmarkRepo) Remove(username string, recipeID int) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.Bookmarks[username]
	for i, id := range ids {
		if id == recipeID {
			m.Bookmarks[username] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBookmarkRepo) List(username string) ([]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int{}, m.Bookmarks[username]...), nil
}

func (m *MockBookmarkRepo) Contains(username string, recipeID int) (bool, error) {
	ids, err := m.List(username)
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

// --- MockViewHistoryRepo ---

// MockViewHistoryRepo is an in-memory mock implementation of repository.ViewHistoryRepo.
type MockViewHistoryRepo struct {
	mu     sync.Mutex
	Viewed map[string][]models.ViewedRecipe
	Err    error
}

// NewMockViewHistoryRepo creates an empty MockViewHistoryRepo.
func NewMockViewHistoryRepo() *MockViewHistoryRepo {
	return &MockViewHistoryRepo{Viewed: make(map[string][]models.ViewedRecipe)}
}

func (m *MockViewHistoryRepo) Record(username string, recipeID int) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := []models.ViewedRecipe{{RecipeID: recipeID, ViewedAt: time.Now()}}
	for _, e := range m.Viewed[username] {
		if e.RecipeID != recipeID {
			entries = append(entries, e)
		}
	}
	if len(entries) > repository.MaxViewedRecipes {
		entries = entries[:repository.MaxViewedRecipes]
	}
	m.Viewed[username] = entries
	return nil
}

func (m *MockViewHistoryRepo) Entries(username string) ([]models.ViewedRecipe, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ViewedRecipe{}, m.Viewed[username]...), nil
}

func (m *MockViewHistoryRepo) List(username string) ([]int, error) {
	entries, err := m.Entries(username)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.RecipeID
	}
	return ids, nil
}

func (m *MockViewHistoryRepo) Clear(username string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Viewed[username]) == 0 {
		return false, nil
	}
	delete(m.Viewed, username)
	return true, nil
}

// --- MockUserRepo ---

// MockUserRepo is an in-memory mock implementation of repository.UserRepo.
type MockUserRepo struct {
	mu     sync.Mutex
	Users  map[uint]*models.User
	NextID uint

	CreateUserErr error
}

// NewMockUserRepo creates a new MockUserRepo with initialized maps.
func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{
		Users:  make(map[uint]*models.User),
		NextID: 1,
	}
}

func (m *MockUserRepo) CreateUser(user *models.User) (*models.User, error) {
	if m.CreateUserErr != nil {
		return nil, m.CreateUserErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if strings.EqualFold(u.Username, user.Username) {
			return nil, repository.ErrUsernameTaken
		}
	}
	user.ID = m.NextID
	m.NextID++
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockUserRepo) GetUserByID(userID uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.Users[userID]
	if !ok {
		return nil, repository.NewNotFoundError("user not found")
	}
	return u, nil
}

func (m *MockUserRepo) GetUserAuthByUsername(username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.NewNotFoundError("user not found")
}

func (m *MockUserRepo) UsernameExists(username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

// Compile-time interface checks.
var _ ai.Invoker = (*MockInvoker)(nil)
var _ repository.UserRepo = (*MockUserRepo)(nil)
var _ repository.ConversationRepo = (*MockConversationRepo)(nil)
var _ repository.BookmarkRepo = (*MockBookmarkRepo)(nil)
var _ repository.ViewHistoryRepo = (*MockViewHistoryRepo)(nil)
