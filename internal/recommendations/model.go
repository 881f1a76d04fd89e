package recommendations

import (
	"errors"
	"strings"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/explanations"
	"scentmatch-backend/internal/quiz"
)

// Strategy selects how recommendations are produced.
type Strategy string

const (
	StrategyDatabase Strategy = "database"
	StrategyAI       Strategy = "ai"
	StrategyHybrid   Strategy = "hybrid"
)

var ErrInvalidStrategy = errors.New("invalid recommendation strategy")

// ParseStrategy maps a request tag to a Strategy. An empty tag selects fallback.
func ParseStrategy(raw string, fallback Strategy) (Strategy, error) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		tag = string(fallback)
	}
	switch Strategy(tag) {
	case StrategyDatabase, StrategyAI, StrategyHybrid:
		return Strategy(tag), nil
	default:
		return "", ErrInvalidStrategy
	}
}

// Request is one recommendation call. UserID comes from the auth context, never the body.
type Request struct {
	Strategy        string            `json:"strategy"`
	QuizResponses   quiz.Responses    `json:"quiz_responses"`
	UserPreferences *quiz.Preferences `json:"user_preferences,omitempty"`
	SessionToken    string            `json:"session_token,omitempty"`
	Limit           int               `json:"limit,omitempty"`
	UserID          string            `json:"-"`
}

// Item is one recommended fragrance.
type Item struct {
	FragranceID         string                            `json:"fragrance_id"`
	Name                string                            `json:"name"`
	Brand               string                            `json:"brand"`
	Score               float64                           `json:"score"`
	ScentFamily         string                            `json:"scent_family"`
	SampleAvailable     bool                              `json:"sample_available"`
	SamplePriceUSD      int                               `json:"sample_price_usd"`
	Explanation         string                            `json:"explanation"`
	AdaptiveExplanation *explanations.AdaptiveExplanation `json:"adaptive_explanation,omitempty"`
	Source              string                            `json:"source"`

	accords []string
}

func (it Item) meta() explanations.FragranceMeta {
	return explanations.FragranceMeta{
		ID:              it.FragranceID,
		Name:            it.Name,
		Brand:           it.Brand,
		ScentFamily:     it.ScentFamily,
		Accords:         it.accords,
		SampleAvailable: it.SampleAvailable,
		SamplePriceUSD:  it.SamplePriceUSD,
	}
}

type PersonalityAnalysis struct {
	Archetype  string   `json:"archetype"`
	Traits     []string `json:"traits"`
	Confidence float64  `json:"confidence"`
}

type Metadata struct {
	StrategyUsed     string `json:"strategy_used"`
	AlgorithmVersion string `json:"algorithm_version"`
}

// Result is always returned, with Success reporting whether any strategy produced items.
type Result struct {
	Success             bool                 `json:"success"`
	Recommendations     []Item               `json:"recommendations"`
	PersonalityAnalysis *PersonalityAnalysis `json:"personality_analysis,omitempty"`
	ConfidenceScore     float64              `json:"confidence_score"`
	ProcessingTimeMs    int64                `json:"processing_time_ms"`
	Metadata            Metadata             `json:"metadata"`
	QuizSessionToken    string               `json:"quiz_session_token,omitempty"`
	Experience          *experience.Analysis `json:"experience_analysis,omitempty"`
	Error               string               `json:"error,omitempty"`
}

// outcome is what a single strategy produced.
type outcome struct {
	items       []Item
	personality *PersonalityAnalysis
	confidence  float64
}
