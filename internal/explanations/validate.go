package explanations

import (
	"errors"
	"fmt"
	"strings"

	"scentmatch-backend/internal/experience"
)

// ErrValidationFailed wraps every rejected generator output.
var ErrValidationFailed = errors.New("explanation failed validation")

type Validation struct {
	Valid           bool     `json:"valid"`
	WordCount       int      `json:"word_count"`
	HasSimplePhrase bool     `json:"has_simple_phrase"`
	HasSampleCTA    bool     `json:"has_sample_cta"`
	Issues          []string `json:"issues,omitempty"`
}

// ValidateBeginner checks the constrained beginner format: 30 to 40 words,
// one of the simple preference phrases, and a sample call to action with a price.
func ValidateBeginner(text string) Validation {
	policy := PolicyFor(experience.Beginner)
	v := Validation{
		WordCount:       CountWords(text),
		HasSimplePhrase: containsSimplePhrase(text),
		HasSampleCTA:    hasSampleCTA(text),
	}
	if v.WordCount < policy.Min || v.WordCount > policy.Max {
		v.Issues = append(v.Issues, fmt.Sprintf("it had %d words but must have between %d and %d", v.WordCount, policy.Min, policy.Max))
	}
	if !v.HasSimplePhrase {
		v.Issues = append(v.Issues, fmt.Sprintf("it must use one of: %s", strings.Join(quoted(simplePhrases), ", ")))
	}
	if !v.HasSampleCTA {
		v.Issues = append(v.Issues, "it must invite them to try a sample and state the price like $15")
	}
	v.Valid = len(v.Issues) == 0
	return v
}

// Feedback is fed into the next prompt attempt.
func (v Validation) Feedback() string {
	return strings.Join(v.Issues, "; ")
}

// conforms reports whether a summary satisfies the word policy of level.
func conforms(summary string, level experience.Level) bool {
	words := CountWords(summary)
	if words == 0 || words > PolicyFor(level).Max {
		return false
	}
	if level == experience.Beginner {
		return strings.Contains(strings.ToLower(summary), "sample")
	}
	return true
}

func quoted(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = `"` + v + `"`
	}
	return out
}
