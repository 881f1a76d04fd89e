package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scentmatch-backend/internal/fragrances"
)

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9]+`)
	whitespace = regexp.MustCompile(`\s+`)
	titleCaser = cases.Title(language.English)
)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

// displayName turns lower kebab-case export values into readable names.
func displayName(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && !strings.Contains(s, " ") && s == strings.ToLower(s) {
		s = titleCaser.String(strings.ReplaceAll(s, "-", " "))
		s = strings.NewReplacer(" De ", " de ", " La ", " la ", " Le ", " le ", " Du ", " du ").Replace(s)
	}
	return s
}

// Clean converts a scored row into a catalog record.
func Clean(r Row, score float64) fragrances.Fragrance {
	brand := displayName(r.Brand)
	name := strings.TrimSpace(r.Perfume)
	prefix := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(strings.TrimSpace(r.Brand)) + `\s*[-:]?\s*`)
	name = prefix.ReplaceAllString(name, "")
	name = displayName(whitespace.ReplaceAllString(name, " "))

	brandID := slugify(r.Brand)
	slug := slugify(name)
	rating := r.RatingValue
	if rating <= 0 {
		rating = 3.0
	}

	return fragrances.Fragrance{
		ID:              brandID + "__" + slug,
		BrandID:         brandID,
		Brand:           brand,
		Name:            name,
		Slug:            slug,
		RatingValue:     r.RatingValue,
		RatingCount:     r.RatingCount,
		Year:            r.Year,
		Gender:          normalizeGender(r.Gender),
		Accords:         r.Accords,
		ScentFamily:     ScentFamily(r.Accords),
		Intensity:       Intensity(r.Accords),
		TopNotes:        r.Top,
		MiddleNotes:     r.Middle,
		BaseNotes:       r.Base,
		Perfumers:       r.Perfumers,
		URL:             r.URL,
		SampleAvailable: true,
		SamplePriceUSD:  SamplePrice(brandID, rating),
		PriorityScore:   score,
	}
}

func normalizeGender(raw string) string {
	g := strings.ToLower(strings.TrimSpace(raw))
	hasWomen := strings.Contains(g, "women")
	hasMen := strings.Contains(strings.ReplaceAll(g, "women", ""), "men")
	switch {
	case hasWomen && !hasMen:
		return "women"
	case hasMen && !hasWomen:
		return "men"
	default:
		return "unisex"
	}
}
