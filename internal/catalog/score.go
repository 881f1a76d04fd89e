package catalog

import (
	"math"
	"strings"
)

// Brand tiers and their score multipliers, keyed by brand id.
var brandTiers = []struct {
	boost  float64
	brands []string
}{
	{boost: 1.5, brands: []string{"chanel", "dior", "tom-ford", "creed", "hermes", "guerlain", "maison-francis-kurkdjian", "yves-saint-laurent", "giorgio-armani"}},
	{boost: 1.3, brands: []string{"le-labo", "byredo", "parfums-de-marly", "jo-malone-london", "jo-malone", "diptyque", "xerjoff", "initio-parfums-prives", "amouage", "kilian"}},
	{boost: 1.15, brands: []string{"prada", "versace", "dolce-gabbana", "givenchy", "valentino", "gucci", "viktor-rolf", "carolina-herrera", "paco-rabanne", "lancome", "burberry", "calvin-klein"}},
}

var luxuryBrands = map[string]bool{
	"dior": true, "chanel": true, "tom-ford": true, "creed": true, "hermes": true,
}

func brandBoost(brandID string) float64 {
	for _, tier := range brandTiers {
		for _, b := range tier.brands {
			if b == brandID {
				return tier.boost
			}
		}
	}
	return 1.0
}

func recencyBoost(year int) float64 {
	switch {
	case year >= 2020:
		return 1.2
	case year >= 2015:
		return 1.1
	case year >= 2010:
		return 1.05
	default:
		return 1.0
	}
}

// Boost multiplies the score of any perfume whose name contains one of Names.
// Matching ignores case, spaces and hyphens.
type Boost struct {
	Names      []string
	Multiplier float64
}

func (b Boost) factor(perfume string) float64 {
	if b.Multiplier <= 0 {
		return 1.0
	}
	name := compactName(perfume)
	for _, n := range b.Names {
		if c := compactName(n); c != "" && strings.Contains(name, c) {
			return b.Multiplier
		}
	}
	return 1.0
}

func compactName(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// PriorityScore ranks rows for import. Rows without a rating or reviews score 0.
// Each boost list applies at most once.
func PriorityScore(r Row, boosts ...Boost) float64 {
	if r.RatingValue <= 0 || r.RatingCount <= 0 {
		return 0
	}
	base := r.RatingValue * math.Log(float64(r.RatingCount)+1)
	score := base * brandBoost(slugify(r.Brand)) * recencyBoost(r.Year)
	for _, b := range boosts {
		score *= b.factor(r.Perfume)
	}
	return score
}

// SamplePrice follows brand tier first, then rating.
func SamplePrice(brandID string, rating float64) int {
	switch {
	case luxuryBrands[brandID]:
		return 20
	case rating >= 4.5:
		return 18
	case rating >= 4.0:
		return 16
	default:
		return 15
	}
}

var familyByAccord = map[string]string{
	"citrus": "fresh", "fresh": "fresh", "aquatic": "fresh", "marine": "fresh", "ozonic": "fresh",
	"green": "fresh", "aromatic": "fresh", "fresh spicy": "fresh", "herbal": "fresh", "lavender": "fresh",
	"floral": "floral", "white floral": "floral", "yellow floral": "floral", "rose": "floral",
	"tuberose": "floral", "iris": "floral", "violet": "floral", "powdery": "floral",
	"woody": "woody", "oud": "woody", "mossy": "woody", "earthy": "woody", "leather": "woody",
	"smoky": "woody", "patchouli": "woody", "tobacco": "woody",
	"amber": "oriental", "warm spicy": "oriental", "balsamic": "oriental", "oriental": "oriental",
	"animalic": "oriental", "musky": "oriental", "soft spicy": "oriental",
	"sweet": "gourmand", "vanilla": "gourmand", "caramel": "gourmand", "chocolate": "gourmand",
	"coffee": "gourmand", "honey": "gourmand", "almond": "gourmand", "cacao": "gourmand", "gourmand": "gourmand",
	"fruity": "fruity", "tropical": "fruity", "cherry": "fruity", "coconut": "fruity",
}

// ScentFamily maps the first mappable accord onto a quiz family.
func ScentFamily(accords []string) string {
	for _, a := range accords {
		if f, ok := familyByAccord[strings.ToLower(strings.TrimSpace(a))]; ok {
			return f
		}
	}
	if len(accords) > 0 {
		return strings.ToLower(strings.TrimSpace(accords[0]))
	}
	return ""
}

var (
	heavyAccords = map[string]bool{"oud": true, "leather": true, "tobacco": true, "amber": true, "animalic": true, "smoky": true, "balsamic": true, "warm spicy": true}
	lightAccords = map[string]bool{"citrus": true, "fresh": true, "aquatic": true, "marine": true, "ozonic": true, "green": true, "fresh spicy": true}
)

// Intensity reads the two leading accords.
func Intensity(accords []string) string {
	lead := accords
	if len(lead) > 2 {
		lead = lead[:2]
	}
	light := 0
	for _, a := range lead {
		a = strings.ToLower(strings.TrimSpace(a))
		if heavyAccords[a] {
			return "strong"
		}
		if lightAccords[a] {
			light++
		}
	}
	if light > 0 && light == len(lead) {
		return "light"
	}
	return "moderate"
}
