package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Question ids the engine reads from a submission.
const (
	QuestionGender           = "gender_preference"
	QuestionExperience       = "experience_level"
	QuestionIntensity        = "intensity_preference"
	scentPreferencePrefix    = "scent_preferences"
	occasionPreferencePrefix = "occasion"
)

// ErrIncompleteQuiz is matched by *IncompleteError.
var ErrIncompleteQuiz = errors.New("quiz responses incomplete")

// Response is one answered question. Order matters: lookups return the first match.
type Response struct {
	QuestionID  string `json:"question_id"`
	AnswerValue string `json:"answer_value"`
	Timestamp   string `json:"timestamp,omitempty"`
}

type Responses []Response

// Find returns the first answer whose question id equals id.
func (rs Responses) Find(id string) (string, bool) {
	for _, r := range rs {
		if r.QuestionID == id {
			return strings.TrimSpace(r.AnswerValue), true
		}
	}
	return "", false
}

// FindPrefix returns the first answer whose question id starts with prefix.
func (rs Responses) FindPrefix(prefix string) (string, bool) {
	for _, r := range rs {
		if strings.HasPrefix(r.QuestionID, prefix) {
			return strings.TrimSpace(r.AnswerValue), true
		}
	}
	return "", false
}

// Preferences are the fields the strategies filter and prompt on.
type Preferences struct {
	Gender      string   `json:"gender,omitempty"`
	Experience  string   `json:"experience,omitempty"`
	ScentFamily string   `json:"scent_family,omitempty"`
	Intensity   string   `json:"intensity,omitempty"`
	Occasions   []string `json:"occasions,omitempty"`
}

// Derive reads preferences out of the ordered responses.
func (rs Responses) Derive() Preferences {
	var p Preferences
	if v, ok := rs.Find(QuestionGender); ok {
		p.Gender = NormalizeGender(v)
	}
	if v, ok := rs.Find(QuestionExperience); ok {
		p.Experience = NormalizeExperience(v)
	}
	if v, ok := rs.FindPrefix(scentPreferencePrefix); ok {
		p.ScentFamily = NormalizeScentFamily(v)
	}
	if v, ok := rs.Find(QuestionIntensity); ok {
		p.Intensity = NormalizeIntensity(v)
	}
	for _, r := range rs {
		if strings.HasPrefix(r.QuestionID, occasionPreferencePrefix) {
			for _, part := range strings.Split(r.AnswerValue, ",") {
				if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
					p.Occasions = append(p.Occasions, part)
				}
			}
		}
	}
	return p
}

// Merge overlays the non-empty fields of override onto p.
func (p Preferences) Merge(override Preferences) Preferences {
	if override.Gender != "" {
		p.Gender = NormalizeGender(override.Gender)
	}
	if override.Experience != "" {
		p.Experience = NormalizeExperience(override.Experience)
	}
	if override.ScentFamily != "" {
		p.ScentFamily = NormalizeScentFamily(override.ScentFamily)
	}
	if override.Intensity != "" {
		p.Intensity = NormalizeIntensity(override.Intensity)
	}
	if len(override.Occasions) > 0 {
		p.Occasions = append([]string(nil), override.Occasions...)
	}
	return p
}

// IncompleteError lists the required answers a submission is missing.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("quiz responses incomplete: missing %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteQuiz
}

// Validate checks that the answers needed to prompt a model are present.
func (rs Responses) Validate() error {
	var missing []string
	if v, ok := rs.Find(QuestionGender); !ok || v == "" {
		missing = append(missing, QuestionGender)
	}
	if v, ok := rs.Find(QuestionExperience); !ok || v == "" {
		missing = append(missing, QuestionExperience)
	}
	if v, ok := rs.FindPrefix(scentPreferencePrefix); !ok || v == "" {
		missing = append(missing, scentPreferencePrefix)
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

func NormalizeGender(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "women", "woman", "female", "feminine", "for_women":
		return "women"
	case "men", "man", "male", "masculine", "for_men":
		return "men"
	case "":
		return ""
	default:
		return "unisex"
	}
}

func NormalizeExperience(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "intermediate", "enthusiast", "some_experience":
		return "intermediate"
	case "advanced", "expert", "collector", "connoisseur":
		return "advanced"
	case "":
		return ""
	default:
		return "beginner"
	}
}

var familyAliases = map[string]string{
	"fresh":    "fresh",
	"clean":    "fresh",
	"citrus":   "fresh",
	"aquatic":  "fresh",
	"green":    "fresh",
	"floral":   "floral",
	"flowers":  "floral",
	"romantic": "floral",
	"woody":    "woody",
	"earthy":   "woody",
	"warm":     "oriental",
	"oriental": "oriental",
	"amber":    "oriental",
	"spicy":    "oriental",
	"sweet":    "gourmand",
	"gourmand": "gourmand",
	"vanilla":  "gourmand",
	"fruity":   "fruity",
}

// NormalizeScentFamily maps answers such as "fresh_clean" or "warm_cozy" to a catalog family.
func NormalizeScentFamily(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	for _, token := range strings.FieldsFunc(v, func(r rune) bool { return r == '_' || r == '-' || r == ' ' || r == ',' }) {
		if family, ok := familyAliases[token]; ok {
			return family
		}
	}
	return v
}

func NormalizeIntensity(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "light", "subtle", "soft", "low":
		return "light"
	case "strong", "bold", "intense", "high", "heavy":
		return "strong"
	case "":
		return ""
	default:
		return "moderate"
	}
}
