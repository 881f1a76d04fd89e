package recommendations

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"scentmatch-backend/internal/fragrances"
	"scentmatch-backend/internal/llm"
	"scentmatch-backend/internal/quiz"
)

//go:embed prompts/ai.txt
var aiPrompt string

const (
	aiSystemPrompt        = "You are a fragrance consultant for a sample shop. Only recommend fragrances from the list you are given."
	defaultCandidateLimit = 40
)

var ErrNoGroundedItems = errors.New("model returned no catalog fragrances")

// CandidateSource supplies the catalog slice the model may choose from.
type CandidateSource interface {
	Candidates(ctx context.Context, f fragrances.Filter) ([]fragrances.Fragrance, error)
}

// AIStrategy asks the model for a personality analysis and a ranked pick of
// catalog candidates. Ids the model invents are dropped.
type AIStrategy struct {
	LLM            llm.Client
	Catalog        CandidateSource
	CandidateLimit int
}

type aiResponse struct {
	PersonalityAnalysis *PersonalityAnalysis `json:"personality_analysis"`
	Recommendations     []aiPick             `json:"recommendations"`
}

type aiPick struct {
	FragranceID string  `json:"fragrance_id"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

func (s *AIStrategy) Recommend(ctx context.Context, responses quiz.Responses, prefs quiz.Preferences, limit int) (outcome, error) {
	if err := responses.Validate(); err != nil {
		return outcome{}, err
	}
	if s == nil || s.LLM == nil || s.Catalog == nil {
		return outcome{}, errors.New("ai strategy not configured")
	}

	candidates, err := s.candidates(ctx, prefs)
	if err != nil {
		return outcome{}, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return outcome{}, errors.New("no catalog candidates for quiz profile")
	}

	raw, err := s.LLM.Complete(ctx, llm.CompletionRequest{
		System:      aiSystemPrompt,
		Prompt:      renderAIPrompt(responses, prefs, candidates, limit),
		JSON:        true,
		Temperature: 0.4,
		MaxTokens:   900,
		Purpose:     "ai_strategy",
	})
	if err != nil {
		return outcome{}, err
	}

	parsed, err := parseAIResponse(raw)
	if err != nil {
		return outcome{}, err
	}
	items := ground(parsed.Recommendations, candidates, limit)
	if len(items) == 0 {
		return outcome{}, ErrNoGroundedItems
	}

	out := outcome{items: items}
	if pa := parsed.PersonalityAnalysis; pa != nil && strings.TrimSpace(pa.Archetype) != "" {
		pa.Archetype = strings.TrimSpace(pa.Archetype)
		pa.Confidence = round(clamp01(pa.Confidence), 2)
		if pa.Traits == nil {
			pa.Traits = []string{}
		}
		out.personality = pa
	}
	out.confidence = aiConfidence(items, out.personality)
	return out, nil
}

// candidates narrows by family first and widens to gender only when the family is empty.
func (s *AIStrategy) candidates(ctx context.Context, prefs quiz.Preferences) ([]fragrances.Fragrance, error) {
	limit := s.CandidateLimit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	filter := fragrances.Filter{ScentFamily: prefs.ScentFamily, Gender: prefs.Gender, Limit: limit}
	items, err := s.Catalog.Candidates(ctx, filter)
	if err != nil || len(items) > 0 || filter.ScentFamily == "" {
		return items, err
	}
	filter.ScentFamily = ""
	return s.Catalog.Candidates(ctx, filter)
}

func renderAIPrompt(responses quiz.Responses, prefs quiz.Preferences, candidates []fragrances.Fragrance, limit int) string {
	var answers strings.Builder
	for _, r := range responses {
		fmt.Fprintf(&answers, "- %s: %s\n", r.QuestionID, r.AnswerValue)
	}
	var list strings.Builder
	for _, f := range candidates {
		fmt.Fprintf(&list, "%s | %s | %s | %s | %s | %s | %s\n",
			f.ID, f.Name, f.Brand, f.ScentFamily, strings.Join(f.Accords, ", "), f.Gender, f.Intensity)
	}
	return strings.NewReplacer(
		"{{ANSWERS}}", strings.TrimRight(answers.String(), "\n"),
		"{{GENDER}}", orAny(prefs.Gender),
		"{{EXPERIENCE}}", orAny(prefs.Experience),
		"{{FAMILY}}", orAny(prefs.ScentFamily),
		"{{INTENSITY}}", orAny(prefs.Intensity),
		"{{CANDIDATES}}", strings.TrimRight(list.String(), "\n"),
		"{{LIMIT}}", fmt.Sprint(min(limit, len(candidates))),
	).Replace(aiPrompt)
}

func orAny(v string) string {
	if v == "" {
		return "any"
	}
	return v
}

func parseAIResponse(raw string) (aiResponse, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var out aiResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return aiResponse{}, fmt.Errorf("parse ai response: %w", err)
	}
	return out, nil
}

// ground keeps picks that name a candidate, once each, in model order.
func ground(picks []aiPick, candidates []fragrances.Fragrance, limit int) []Item {
	byID := make(map[string]fragrances.Fragrance, len(candidates))
	for _, f := range candidates {
		byID[f.ID] = f
	}
	seen := make(map[string]bool, len(picks))
	var items []Item
	for _, p := range picks {
		id := strings.TrimSpace(p.FragranceID)
		f, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		items = append(items, Item{
			FragranceID:     f.ID,
			Name:            f.Name,
			Brand:           f.Brand,
			Score:           round(clamp01(p.Score), 3),
			ScentFamily:     f.ScentFamily,
			SampleAvailable: f.SampleAvailable,
			SamplePriceUSD:  f.SamplePriceUSD,
			Explanation:     strings.TrimSpace(p.Reason),
			Source:          string(StrategyAI),
			accords:         f.Accords,
		})
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items
}

func aiConfidence(items []Item, pa *PersonalityAnalysis) float64 {
	if pa != nil && pa.Confidence > 0 {
		return pa.Confidence
	}
	sum := 0.0
	for _, it := range items {
		sum += it.Score
	}
	return round(sum/float64(len(items)), 2)
}
