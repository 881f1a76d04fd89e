package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentmatch-backend/internal/recommendations"
	"scentmatch-backend/internal/shared/config"
)

const seedCSV = "url;Perfume;Brand;Country;Gender;Rating Value;Rating Count;Year;Top;Middle;Base;Perfumer1;Perfumer2;mainaccord1;mainaccord2;mainaccord3;mainaccord4;mainaccord5\n" +
	"https://www.fragrantica.com/perfume/Dior/Sauvage-31861.html;dior-sauvage;dior;France;men;4,12;15.432;2015;bergamot;pepper;ambroxan;francois-demachy;;citrus;fresh spicy;amber;;\n" +
	"https://www.fragrantica.com/perfume/Le-Labo/Santal-33.html;santal-33;le-labo;USA;unisex;4,05;9.120;2011;violet;cardamom;sandalwood;frank-voelkl;;woody;leather;;;\n"

func devConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fra_cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte(seedCSV), 0o644))
	return config.Config{
		Env:                    "dev",
		LLMProvider:            "none",
		DefaultStrategy:        "hybrid",
		ExplanationConcurrency: 2,
		CatalogSeedFile:        path,
		RateLimitRPS:           50,
		RateLimitBurst:         50,
	}
}

func TestBuildDevUsesMemoryRepos(t *testing.T) {
	app, err := Build(context.Background(), devConfig(t))
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.DB)
	assert.Nil(t, app.LLM)
	assert.NotNil(t, app.Router)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDatabaseRecommendationEndToEnd(t *testing.T) {
	app, err := Build(context.Background(), devConfig(t))
	require.NoError(t, err)
	defer app.Close()

	body := `{"strategy":"database","quiz_responses":[
		{"question_id":"gender_preference","answer_value":"men"},
		{"question_id":"experience_level","answer_value":"beginner"},
		{"question_id":"scent_preferences_beginner","answer_value":"fresh_clean"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result recommendations.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, "dior__sauvage", result.Recommendations[0].FragranceID)
	for _, item := range result.Recommendations {
		assert.NotEmpty(t, item.Explanation)
		require.NotNil(t, item.AdaptiveExplanation)
		assert.Contains(t, item.AdaptiveExplanation.Summary, "sample")
	}
	assert.NotEmpty(t, result.QuizSessionToken)
}

func TestAIStrategyWithoutProviderFailsGracefully(t *testing.T) {
	app, err := Build(context.Background(), devConfig(t))
	require.NoError(t, err)
	defer app.Close()

	body := `{"strategy":"ai","quiz_responses":[
		{"question_id":"gender_preference","answer_value":"men"},
		{"question_id":"experience_level","answer_value":"beginner"},
		{"question_id":"scent_preferences_beginner","answer_value":"fresh_clean"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var result recommendations.Result
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Empty(t, result.Recommendations)
	assert.NotContains(t, resp.Body.String(), "not configured")
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	_, err := Build(context.Background(), config.Config{Env: "production", SupabaseJWTSecret: "s"})
	require.Error(t, err)
}
