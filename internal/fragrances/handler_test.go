package fragrances

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newFragranceRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(NewMemoryRepo(testCatalog()...))).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestSearchResponseShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances?q=&family=fresh&gender=women&sample_only=true", nil)
	resp := httptest.NewRecorder()
	newFragranceRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Fragrances     []Fragrance    `json:"fragrances"`
		Total          int            `json:"total"`
		Query          string         `json:"query"`
		FiltersApplied map[string]any `json:"filters_applied"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || len(body.Fragrances) != 1 {
		t.Fatalf("unexpected result %s", resp.Body.String())
	}
	if body.FiltersApplied["scent_family"] != "fresh" || body.FiltersApplied["sample_only"] != true {
		t.Fatalf("unexpected filters_applied %v", body.FiltersApplied)
	}
}

func TestSearchEmptyReturnsArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances?q=nothing-matches", nil)
	resp := httptest.NewRecorder()
	newFragranceRouter().ServeHTTP(resp, req)

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["fragrances"].([]any); !ok {
		t.Fatalf("expected fragrances to be an array, got %s", resp.Body.String())
	}
	if body["query"] != "nothing-matches" {
		t.Fatalf("expected query echoed back")
	}
}

func TestSearchRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances?limit=abc", nil)
	resp := httptest.NewRecorder()
	newFragranceRouter().ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetFragrance(t *testing.T) {
	router := newFragranceRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fragrances/chanel__chance", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/fragrances/nope", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
