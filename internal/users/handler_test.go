package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMeRejectsGuests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("isGuest", true)
		c.Next()
	})
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMeUpsertsProfileFromClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("userEmail", "a@example.com")
		c.Set("userName", "Ana")
		c.Set("isGuest", false)
		c.Next()
	})
	NewHandler(NewService(repo)).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["email"] != "a@example.com" || body["displayName"] != "Ana" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, err := repo.GetByID(req.Context(), "user-1"); err != nil {
		t.Fatalf("expected profile stored: %v", err)
	}
}
