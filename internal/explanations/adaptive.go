package explanations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/llm"
)

const defaultAdaptiveAttempts = 2

// AdaptiveGenerator scales length and vocabulary with the audience level.
// Intermediate and advanced output carries no educational scaffolding.
type AdaptiveGenerator struct {
	LLM         llm.Client
	MaxAttempts int
}

func NewAdaptiveGenerator(client llm.Client) *AdaptiveGenerator {
	return &AdaptiveGenerator{LLM: client, MaxAttempts: defaultAdaptiveAttempts}
}

type adaptiveOutput struct {
	Summary         string `json:"summary"`
	ExpandedContent string `json:"expanded_content"`
}

func (g *AdaptiveGenerator) Generate(ctx context.Context, meta FragranceMeta, aud Audience) (Explanation, error) {
	if g == nil || g.LLM == nil {
		return Explanation{}, errors.New("adaptive generator not configured")
	}
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAdaptiveAttempts
	}
	if aud.Level == "" {
		aud.Level = experience.Intermediate
	}
	policy := PolicyFor(aud.Level)

	start := time.Now()
	var (
		feedback string
		lastErr  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := g.LLM.Complete(ctx, llm.CompletionRequest{
			System:      systemPrompt,
			Prompt:      renderPrompt(adaptivePrompt, meta, aud, feedback),
			JSON:        true,
			Temperature: 0.6,
			MaxTokens:   450,
			Purpose:     "adaptive_explanation",
		})
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || errors.Is(err, llm.ErrCircuitOpen) || errors.Is(err, llm.ErrNotImplemented) {
				break
			}
			continue
		}

		out, err := parseAdaptive(raw)
		if err != nil {
			feedback = "it was not valid JSON with summary and expanded_content"
			lastErr = fmt.Errorf("%w: %v", ErrValidationFailed, err)
			continue
		}
		summary := StripDecorations(out.Summary)
		if aud.Level == experience.Beginner {
			summary = conformBeginner(summary, meta)
		}
		words := CountWords(summary)
		if words < policy.Min || words > policy.Max {
			feedback = fmt.Sprintf("the summary had %d words but must have between %d and %d", words, policy.Min, policy.Max)
			lastErr = fmt.Errorf("%w: %s", ErrValidationFailed, feedback)
			continue
		}

		exp := Explanation{
			Text: summary,
			Adaptive: AdaptiveExplanation{
				UserExperienceLevel: aud.Level,
				Summary:             summary,
				ExpandedContent:     strings.TrimSpace(out.ExpandedContent),
			},
			Metadata: Metadata{
				Stage:     "adaptive",
				Attempts:  attempt,
				ElapsedMs: time.Since(start).Milliseconds(),
			},
		}
		if aud.Level == experience.Beginner {
			exp.Adaptive.EducationalTerms = educationalTerms(summary, meta.ScentFamily)
			exp.Adaptive.ConfidenceBoost = confidenceBoost(meta)
		}
		return exp, nil
	}
	return Explanation{}, fmt.Errorf("adaptive explanation for %q: %w", meta.Name, lastErr)
}

func parseAdaptive(raw string) (adaptiveOutput, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var out adaptiveOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return adaptiveOutput{}, err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return adaptiveOutput{}, errors.New("summary is empty")
	}
	return out, nil
}

// conformBeginner keeps text inside the beginner limit and guarantees a sample call to action.
func conformBeginner(text string, meta FragranceMeta) string {
	limit := PolicyFor(experience.Beginner).Max
	text = StripDecorations(text)
	if hasSampleCTA(text) && CountWords(text) <= limit {
		return text
	}
	cta := fmt.Sprintf("Try a sample for $%d.", meta.price())
	body := TruncateWords(text, limit-CountWords(cta))
	if body == "" {
		return cta
	}
	if !strings.HasSuffix(body, ".") && !strings.HasSuffix(body, "!") && !strings.HasSuffix(body, "?") {
		body += "."
	}
	return body + " " + cta
}
