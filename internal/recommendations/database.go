package recommendations

import (
	"context"
	"errors"
	"math"

	"scentmatch-backend/internal/fragrances"
	"scentmatch-backend/internal/quiz"
)

// QuizRecommender runs the catalog recommendation RPC.
type QuizRecommender interface {
	RecommendByQuiz(ctx context.Context, p fragrances.RPCParams) ([]fragrances.ScoredRow, error)
}

// DatabaseStrategy maps get_quiz_recommendations rows onto items.
type DatabaseStrategy struct {
	Repo QuizRecommender
}

func (s *DatabaseStrategy) Recommend(ctx context.Context, prefs quiz.Preferences, limit int) (outcome, error) {
	if s == nil || s.Repo == nil {
		return outcome{}, errors.New("database strategy not configured")
	}
	rows, err := s.Repo.RecommendByQuiz(ctx, fragrances.RPCParams{
		ScentFamily: prefs.ScentFamily,
		Gender:      prefs.Gender,
		Intensity:   prefs.Intensity,
		Limit:       limit,
	})
	if err != nil {
		return outcome{}, err
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{
			FragranceID:     row.FragranceID,
			Name:            row.Name,
			Brand:           row.Brand,
			Score:           round(clamp01(row.MatchScore), 3),
			ScentFamily:     row.ScentFamily,
			SampleAvailable: row.SampleAvailable,
			SamplePriceUSD:  row.SamplePriceUSD,
			Source:          string(StrategyDatabase),
		})
	}
	return outcome{items: items, confidence: databaseConfidence(rows, limit)}, nil
}

// databaseConfidence blends the mean match score with how full the result is.
// An empty result always stays below 0.5.
func databaseConfidence(rows []fragrances.ScoredRow, limit int) float64 {
	if len(rows) == 0 {
		return 0.2
	}
	if limit <= 0 {
		limit = len(rows)
	}
	sum := 0.0
	for _, r := range rows {
		sum += clamp01(r.MatchScore)
	}
	mean := sum / float64(len(rows))
	coverage := math.Min(1, float64(len(rows))/float64(limit))
	return round(math.Min(0.95, 0.3+0.45*mean+0.2*coverage), 2)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
