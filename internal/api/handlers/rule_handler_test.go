package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/zuulgate/zuul/backend/internal/models"
	"github.com/zuulgate/zuul/backend/internal/services"
)

func setupRuleRouter(t *testing.T, db *gorm.DB, reloads *int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewRuleHandler(services.NewRuleService(db), func() {
		if reloads != nil {
			*reloads++
		}
	})

	r := gin.New()
	r.POST("/rules", handler.Create)
	r.GET("/rules", handler.List)
	r.GET("/rules/info", handler.Info)
	r.GET("/rules/:id", handler.Get)
	r.PUT("/rules/:id", handler.Update)
	r.DELETE("/rules/:id", handler.Delete)
	return r
}

func jsonRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRuleHandler_CRUD(t *testing.T) {
	db := OpenTestDB(t)
	reloads := 0
	r := setupRuleRouter(t, db, &reloads)

	t.Run("create reloads the snapshot", func(t *testing.T) {
		w := jsonRequest(t, r, "POST", "/rules", gin.H{
			"weight": 10, "allow": false, "store": true, "path": "^/admin", "active": true,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, reloads)

		var rule models.Rule
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
		assert.NotZero(t, rule.ID)
		assert.Equal(t, "^/admin", *rule.Path)
	})

	t.Run("invalid body", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/rules", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := jsonRequest(t, r, "GET", "/rules/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		w := jsonRequest(t, r, "GET", "/rules/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get malformed id", func(t *testing.T) {
		w := jsonRequest(t, r, "GET", "/rules/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update reloads the snapshot", func(t *testing.T) {
		before := reloads
		w := jsonRequest(t, r, "PUT", "/rules/1", gin.H{
			"weight": 5, "allow": true, "store": true, "path": "^/admin", "active": true,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before+1, reloads)
	})

	t.Run("update missing", func(t *testing.T) {
		w := jsonRequest(t, r, "PUT", "/rules/999", gin.H{"weight": 5})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete reloads the snapshot", func(t *testing.T) {
		before := reloads
		w := jsonRequest(t, r, "DELETE", "/rules/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before+1, reloads)

		w = jsonRequest(t, r, "DELETE", "/rules/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, before+1, reloads)
	})
}

func TestRuleHandler_List(t *testing.T) {
	db := OpenTestDB(t)
	r := setupRuleRouter(t, db, nil)

	service := services.NewRuleService(db)
	for i := 0; i < 12; i++ {
		assert.NoError(t, service.Create(&models.Rule{Weight: i, Active: true, FQDN: strp("app.example.com")}))
	}

	w := jsonRequest(t, r, "GET", "/rules?limit=5&page=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data       []models.Rule `json:"data"`
		Pagination struct {
			Page    int   `json:"page"`
			Limit   int   `json:"limit"`
			Pages   int   `json:"pages"`
			Records int64 `json:"records"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 5)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 3, resp.Pagination.Pages)
	assert.Equal(t, int64(12), resp.Pagination.Records)
}

func TestRuleHandler_Info(t *testing.T) {
	db := OpenTestDB(t)
	r := setupRuleRouter(t, db, nil)

	service := services.NewRuleService(db)
	assert.NoError(t, service.Create(&models.Rule{Weight: 1, Active: true}))
	assert.NoError(t, service.Create(&models.Rule{Weight: 2, Active: false}))

	for option, want := range map[string]float64{"total": 2, "active": 1} {
		w := jsonRequest(t, r, "GET", fmt.Sprintf("/rules/info?option=%s", option), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, want, resp["count"])
	}

	w := jsonRequest(t, r, "GET", "/rules/info?option=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
