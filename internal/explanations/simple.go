package explanations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/llm"
)

const minSimpleWords = 8

// SimpleGenerator is the single-call fallback: a short plain-text prompt through
// the base client, trimmed locally to the level's word policy.
type SimpleGenerator struct {
	LLM llm.Client
}

func NewSimpleGenerator(client llm.Client) *SimpleGenerator {
	return &SimpleGenerator{LLM: client}
}

func (g *SimpleGenerator) Generate(ctx context.Context, meta FragranceMeta, aud Audience) (Explanation, error) {
	if g == nil || g.LLM == nil {
		return Explanation{}, errors.New("simple generator not configured")
	}
	if aud.Level == "" {
		aud.Level = experience.Beginner
	}
	start := time.Now()
	raw, err := g.LLM.Complete(ctx, llm.CompletionRequest{
		Prompt:      renderPrompt(simplePrompt, meta, aud, ""),
		Temperature: 0.3,
		MaxTokens:   200,
		Purpose:     "simple_explanation",
	})
	if err != nil {
		return Explanation{}, err
	}
	text := cleanOutput(raw)
	if CountWords(text) < minSimpleWords {
		return Explanation{}, fmt.Errorf("%w: simple explanation too short", ErrValidationFailed)
	}

	exp := Explanation{
		Adaptive: AdaptiveExplanation{UserExperienceLevel: aud.Level},
		Metadata: Metadata{Stage: "simple", Attempts: 1, ElapsedMs: time.Since(start).Milliseconds()},
	}
	if aud.Level == experience.Beginner {
		text = conformBeginner(text, meta)
		exp.Adaptive.EducationalTerms = educationalTerms(text, meta.ScentFamily)
		exp.Adaptive.ConfidenceBoost = confidenceBoost(meta)
	} else {
		text = TruncateWords(text, PolicyFor(aud.Level).Max)
	}
	exp.Text = text
	exp.Adaptive.Summary = text
	return exp, nil
}
