package explanations

import (
	"context"
	"strings"

	"scentmatch-backend/internal/experience"
	"scentmatch-backend/internal/quiz"
)

const defaultSamplePrice = 15

// FragranceMeta is what a generator knows about the item it explains.
type FragranceMeta struct {
	ID              string
	Name            string
	Brand           string
	ScentFamily     string
	Accords         []string
	SampleAvailable bool
	SamplePriceUSD  int
}

func (m FragranceMeta) family() string {
	if f := strings.TrimSpace(m.ScentFamily); f != "" {
		return f
	}
	return "signature"
}

func (m FragranceMeta) accords() string {
	if len(m.Accords) == 0 {
		return "not listed"
	}
	return strings.Join(m.Accords, ", ")
}

func (m FragranceMeta) price() int {
	if m.SamplePriceUSD > 0 {
		return m.SamplePriceUSD
	}
	return defaultSamplePrice
}

// Audience is who the explanation is written for.
type Audience struct {
	UserID      string
	Level       experience.Level
	Style       experience.Style
	Preferences quiz.Preferences
}

func (a Audience) style() experience.Style {
	if a.Style.MaxWords > 0 {
		return a.Style
	}
	return experience.StyleFor(a.Level)
}

func (a Audience) describePreferences() string {
	var parts []string
	if a.Preferences.ScentFamily != "" {
		parts = append(parts, a.Preferences.ScentFamily+" scents")
	}
	if a.Preferences.Intensity != "" {
		parts = append(parts, a.Preferences.Intensity+" intensity")
	}
	if len(a.Preferences.Occasions) > 0 {
		parts = append(parts, "wearing it for "+strings.Join(a.Preferences.Occasions, ", "))
	}
	if len(parts) == 0 {
		return "an easy everyday scent"
	}
	return strings.Join(parts, ", ")
}

type EducationalTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// AdaptiveExplanation is attached to recommendation items.
type AdaptiveExplanation struct {
	UserExperienceLevel experience.Level  `json:"user_experience_level"`
	Summary             string            `json:"summary"`
	ExpandedContent     string            `json:"expanded_content,omitempty"`
	EducationalTerms    []EducationalTerm `json:"educational_terms,omitempty"`
	ConfidenceBoost     string            `json:"confidence_boost,omitempty"`
}

type Metadata struct {
	Stage     string `json:"stage"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// Explanation is a generator's output.
type Explanation struct {
	Text       string              `json:"explanation"`
	Adaptive   AdaptiveExplanation `json:"adaptive_explanation"`
	Validation *Validation         `json:"validation,omitempty"`
	Metadata   Metadata            `json:"metadata"`
}

// Generator produces an explanation or an error; fallback is the caller's job.
type Generator interface {
	Generate(ctx context.Context, meta FragranceMeta, aud Audience) (Explanation, error)
}
