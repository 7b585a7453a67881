package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/api/middleware"
	"github.com/zuulgate/zuul/backend/internal/services"
)

func jsonBody(t *testing.T, body interface{}) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	return &buf
}

func performRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func setupAuthRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := services.NewAuthService(db, "test-secret")
	handler := NewAuthHandler(authService)

	r := gin.New()
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/register", handler.Register)
	r.GET("/auth/me", middleware.AuthMiddleware(authService), handler.Me)
	return r, authService
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	db := OpenTestDB(t)
	r, _ := setupAuthRouter(t, db)

	t.Run("first registration succeeds", func(t *testing.T) {
		w := jsonRequest(t, r, "POST", "/auth/register", gin.H{
			"username": "admin",
			"email":    "admin@example.com",
			"password": "changeme123",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "changeme123")
	})

	t.Run("registration closes after the first account", func(t *testing.T) {
		w := jsonRequest(t, r, "POST", "/auth/register", gin.H{
			"username": "intruder",
			"email":    "intruder@example.com",
			"password": "changeme123",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := jsonRequest(t, r, "POST", "/auth/register", gin.H{
			"username": "x", "email": "x@example.com", "password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login returns a token", func(t *testing.T) {
		w := jsonRequest(t, r, "POST", "/auth/login", gin.H{
			"email": "admin@example.com", "password": "changeme123",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := jsonRequest(t, r, "POST", "/auth/login", gin.H{
			"email": "admin@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	db := OpenTestDB(t)
	r, authService := setupAuthRouter(t, db)

	_, err := authService.Register("admin", "admin@example.com", "changeme123", "")
	assert.NoError(t, err)
	token, err := authService.Login("admin@example.com", "changeme123")
	assert.NoError(t, err)

	t.Run("with token", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := performRequest(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin@example.com")
		assert.NotContains(t, w.Body.String(), "password_hash")
	})

	t.Run("without token", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/auth/me", nil)
		w := performRequest(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
