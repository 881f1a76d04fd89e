package explanations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/llm"
)

const defaultBeginnerAttempts = 3

// BeginnerGenerator writes the constrained beginner explanation. It returns an
// error when no attempt passes validation; it never returns malformed text.
type BeginnerGenerator struct {
	LLM         llm.Client
	MaxAttempts int
}

func NewBeginnerGenerator(client llm.Client) *BeginnerGenerator {
	return &BeginnerGenerator{LLM: client, MaxAttempts: defaultBeginnerAttempts}
}

func (g *BeginnerGenerator) Generate(ctx context.Context, meta FragranceMeta, aud Audience) (Explanation, error) {
	if g == nil || g.LLM == nil {
		return Explanation{}, errors.New("beginner generator not configured")
	}
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = defaultBeginnerAttempts
	}
	aud.Level = experience.Beginner

	start := time.Now()
	var (
		feedback string
		lastErr  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := g.LLM.Complete(ctx, llm.CompletionRequest{
			System:      systemPrompt,
			Prompt:      renderPrompt(beginnerPrompt, meta, aud, feedback),
			Temperature: 0.7,
			MaxTokens:   160,
			Purpose:     "beginner_explanation",
		})
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || errors.Is(err, llm.ErrCircuitOpen) || errors.Is(err, llm.ErrNotImplemented) {
				break
			}
			continue
		}

		text := cleanOutput(raw)
		v := ValidateBeginner(text)
		if !v.Valid {
			feedback = v.Feedback()
			lastErr = fmt.Errorf("%w: %s", ErrValidationFailed, feedback)
			continue
		}
		return Explanation{
			Text: text,
			Adaptive: AdaptiveExplanation{
				UserExperienceLevel: experience.Beginner,
				Summary:             text,
				EducationalTerms:    educationalTerms(text, meta.ScentFamily),
				ConfidenceBoost:     confidenceBoost(meta),
			},
			Validation: &v,
			Metadata: Metadata{
				Stage:     "beginner",
				Attempts:  attempt,
				ElapsedMs: time.Since(start).Milliseconds(),
			},
		}, nil
	}
	return Explanation{}, fmt.Errorf("beginner explanation for %q: %w", meta.Name, lastErr)
}

// cleanOutput drops wrapping quotes, code fences and decorations from model text.
func cleanOutput(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.Trim(strings.TrimSpace(text), `"“”`)
	return StripDecorations(text)
}
