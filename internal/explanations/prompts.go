package explanations

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"scentmatch-backend/internal/experience"
)

var (
	//go:embed prompts/beginner.txt
	beginnerPrompt string
	//go:embed prompts/adaptive.txt
	adaptivePrompt string
	//go:embed prompts/simple.txt
	simplePrompt string
)

const systemPrompt = "You write short, honest fragrance recommendations for an online sample shop. Never invent notes that are not listed."

func renderPrompt(template string, meta FragranceMeta, aud Audience, feedback string) string {
	policy := PolicyFor(aud.Level)
	style := aud.style()
	feedbackBlock := ""
	if strings.TrimSpace(feedback) != "" {
		feedbackBlock = fmt.Sprintf("\nYour previous answer was rejected: %s. Fix that this time.\n", feedback)
	}
	technical := ""
	if aud.Level == experience.Advanced {
		technical = "- Use precise perfumery terms (accords, drydown, sillage, projection) without defining them."
	}
	replacer := strings.NewReplacer(
		"{{NAME}}", meta.Name,
		"{{BRAND}}", meta.Brand,
		"{{FAMILY}}", meta.family(),
		"{{ACCORDS}}", meta.accords(),
		"{{PREFERENCES}}", aud.describePreferences(),
		"{{PRICE}}", strconv.Itoa(meta.price()),
		"{{LEVEL}}", string(aud.Level),
		"{{VOCABULARY}}", style.VocabularyLevel,
		"{{COMPLEXITY}}", style.Complexity,
		"{{MAX_WORDS}}", strconv.Itoa(policy.Max),
		"{{MIN_WORDS}}", strconv.Itoa(policy.Min),
		"{{TECHNICAL}}", technical,
		"{{FEEDBACK}}", feedbackBlock,
	)
	return replacer.Replace(template)
}
