package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/models"
	"github.com/windoze95/dapur-api/internal/service"
	"github.com/windoze95/dapur-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserHandler() (*UserHandler, *testutil.MockUserRepo) {
	repo := testutil.NewMockUserRepo()
	cfg := &config.Config{
		EnvVars: config.EnvVars{
			JwtSecretKey: "test-jwt-secret-key",
		},
	}
	svc := service.NewUserService(cfg, repo)
	handler := NewUserHandler(svc)
	return handler, repo
}

func TestCreateUser_Handler_Success(t *testing.T) {
	handler, _ := newTestUserHandler()

	r := gin.New()
	r.POST("/users", handler.CreateUser)

	body := `{
		"username": "budisantoso",
		"password": "Password1!"
	}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["access_token"] == nil {
		t.Error("response should contain 'access_token'")
	}
	if resp["refresh_token"] == nil {
		t.Error("response should contain 'refresh_token'")
	}
	if resp["user"] == nil {
		t.Error("response should contain 'user'")
	}
}

func TestCreateUser_Handler_MissingFields(t *testing.T) {
	handler, _ := newTestUserHandler()

	r := gin.New()
	r.POST("/users", handler.CreateUser)

	body := `{"username": "test"}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateUser_Handler_InvalidPassword(t *testing.T) {
	handler, _ := newTestUserHandler()

	r := gin.New()
	r.POST("/users", handler.CreateUser)

	body := `{
		"username": "budisantoso",
		"password": "weak"
	}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestLoginUser_Handler_Success(t *testing.T) {
	handler, repo := newTestUserHandler()

	// Create a user in the mock repo
	hashedPwd, _ := bcrypt.GenerateFromPassword([]byte("Password1!"), 10)
	repo.CreateUser(&models.User{
		Username: "testuser",
		Auth: &models.UserAuth{
			HashedPassword: string(hashedPwd),
			AuthType:       models.Standard,
		},
	})

	r := gin.New()
	r.POST("/auth/login", handler.LoginUser)

	body := `{"username": "testuser", "password": "Password1!"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["access_token"] == nil {
		t.Error("response should contain 'access_token'")
	}
	if resp["refresh_token"] == nil {
		t.Error("response should contain 'refresh_token'")
	}
}

func TestLoginUser_Handler_InvalidCredentials(t *testing.T) {
	handler, repo := newTestUserHandler()

	hashedPwd, _ := bcrypt.GenerateFromPassword([]byte("Correct1!"), 10)
	repo.CreateUser(&models.User{
		Username: "testuser",
		Auth: &models.UserAuth{
			HashedPassword: string(hashedPwd),
			AuthType:       models.Standard,
		},
	})

	r := gin.New()
	r.POST("/auth/login", handler.LoginUser)

	body := `{"username": "testuser", "password": "Wrong1!"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLoginUser_Handler_MissingFields(t *testing.T) {
	handler, _ := newTestUserHandler()

	r := gin.New()
	r.POST("/auth/login", handler.LoginUser)

	body := `{"username": "testuser"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateUser_Handler_DuplicateUsername(t *testing.T) {
	handler, repo := newTestUserHandler()
	repo.CreateUser(&models.User{Username: "budisantoso", Auth: &models.UserAuth{AuthType: models.Standard}})

	r := gin.New()
	r.POST("/users", handler.CreateUser)

	body := `{"username": "budisantoso", "password": "Password1!"}`
	req := httptest.NewRequest("POST", "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestRefreshToken_Handler(t *testing.T) {
	handler, _ := newTestUserHandler()
	refresh, _ := generateRefreshToken(7, "test-jwt-secret-key")
	access, _ := generateAccessToken(7, "test-jwt-secret-key")

	r := gin.New()
	r.POST("/auth/refresh", handler.RefreshToken)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"refresh token", refresh, http.StatusOK},
		{"access token rejected", access, http.StatusUnauthorized},
		{"garbage", "not-a-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"refresh_token": "` + tt.token + `"}`
			req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d. body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestVerifyToken_Handler(t *testing.T) {
	handler, _ := newTestUserHandler()

	r := gin.New()
	r.GET("/users/verify", setUser(testutil.TestUser()), handler.VerifyToken)
	r.GET("/anon/verify", setUser(nil), handler.VerifyToken)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/verify", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["isAuthenticated"] != true {
		t.Errorf("isAuthenticated = %v, want true", resp["isAuthenticated"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/anon/verify", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
