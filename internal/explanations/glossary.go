package explanations

import (
	"fmt"
	"strings"
)

var glossaryOrder = []string{"fresh", "floral", "woody", "oriental", "gourmand", "fruity", "notes", "accords", "longevity", "projection", "sample"}

var glossary = map[string]string{
	"fresh":      "Light, clean scents that smell like citrus, water or green leaves.",
	"floral":     "Scents built around flowers such as rose, jasmine or peony.",
	"woody":      "Warm, dry scents from woods like cedar and sandalwood.",
	"oriental":   "Rich, warm scents with amber, spices and resins.",
	"gourmand":   "Sweet scents that smell good enough to eat, like vanilla or caramel.",
	"fruity":     "Juicy scents from fruits like berries, peach or apple.",
	"notes":      "The separate smells you notice as a fragrance changes on your skin.",
	"accords":    "Several notes blended so they read as one smell.",
	"longevity":  "How many hours a fragrance lasts on your skin.",
	"projection": "How far the scent reaches from you.",
	"sample":     "A small vial you can wear for a few days before buying a full bottle.",
}

const maxEducationalTerms = 3

// educationalTerms picks the family term first, then glossary words used in text.
func educationalTerms(text, family string) []EducationalTerm {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	var out []EducationalTerm
	add := func(term string) {
		if seen[term] || len(out) >= maxEducationalTerms {
			return
		}
		if def, ok := glossary[term]; ok {
			seen[term] = true
			out = append(out, EducationalTerm{Term: term, Definition: def})
		}
	}
	add(strings.ToLower(strings.TrimSpace(family)))
	for _, term := range glossaryOrder {
		if strings.Contains(lower, term) {
			add(term)
		}
	}
	return out
}

func confidenceBoost(meta FragranceMeta) string {
	return fmt.Sprintf("Not sure yet? A $%d sample lets you live with it for a few days first.", meta.price())
}
