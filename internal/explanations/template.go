package explanations

import (
	"context"
	"fmt"
	"strings"

	"scentmatch-backend/internal/experience"
)

// TemplateGenerator builds an explanation from the item's own fields. It makes
// no external calls and never fails.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(_ context.Context, meta FragranceMeta, aud Audience) (Explanation, error) {
	return renderTemplate(meta, aud), nil
}

func renderTemplate(meta FragranceMeta, aud Audience) Explanation {
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = "This fragrance"
	}
	brand := strings.TrimSpace(meta.Brand)
	subject := name
	if brand != "" {
		subject = name + " by " + brand
	}
	family := meta.family()

	level := aud.Level
	if level == "" {
		level = experience.Beginner
	}
	exp := Explanation{
		Adaptive: AdaptiveExplanation{UserExperienceLevel: level},
		Metadata: Metadata{Stage: "template", Attempts: 1},
	}

	var text string
	switch level {
	case experience.Beginner:
		body := fmt.Sprintf("%s is a %s fragrance that matches your taste for %s scents. It is easy to wear and a gentle way to explore what you like.",
			subject, family, family)
		text = conformBeginner(body, meta)
		exp.Adaptive.EducationalTerms = educationalTerms(text, meta.ScentFamily)
		exp.Adaptive.ConfidenceBoost = confidenceBoost(meta)
	default:
		accords := ""
		if len(meta.Accords) > 0 {
			accords = " with " + strings.Join(meta.Accords[:min(3, len(meta.Accords))], ", ") + " accords"
		}
		text = fmt.Sprintf("%s sits in the %s family%s. It lines up with the profile from your quiz and is worth testing on skin, where the opening settles into its heart over a few hours. A sample is available for $%d.",
			subject, family, accords, meta.price())
		text = TruncateWords(text, PolicyFor(level).Max)
	}
	exp.Text = text
	exp.Adaptive.Summary = text
	return exp
}
