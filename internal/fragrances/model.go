package fragrances

import "errors"

var ErrNotFound = errors.New("fragrance not found")

type Fragrance struct {
	ID              string   `json:"id" validate:"required,contains=__"`
	BrandID         string   `json:"brand_id" validate:"required"`
	Brand           string   `json:"brand" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Slug            string   `json:"slug" validate:"required"`
	RatingValue     float64  `json:"rating_value" validate:"gte=0,lte=5"`
	RatingCount     int      `json:"rating_count" validate:"gte=0"`
	Year            int      `json:"year,omitempty" validate:"omitempty,gte=1700,lte=2100"`
	Gender          string   `json:"gender" validate:"oneof=women men unisex"`
	Accords         []string `json:"accords"`
	ScentFamily     string   `json:"scent_family"`
	Intensity       string   `json:"intensity" validate:"oneof=light moderate strong"`
	TopNotes        string   `json:"top_notes,omitempty"`
	MiddleNotes     string   `json:"middle_notes,omitempty"`
	BaseNotes       string   `json:"base_notes,omitempty"`
	Perfumers       []string `json:"perfumers,omitempty"`
	URL             string   `json:"fragrantica_url,omitempty" validate:"omitempty,url"`
	SampleAvailable bool     `json:"sample_available"`
	SamplePriceUSD  int      `json:"sample_price_usd" validate:"gte=0"`
	PriorityScore   float64  `json:"priority_score"`
}

// Filter drives browse/search and candidate selection.
type Filter struct {
	Query       string
	ScentFamily string
	Gender      string
	SampleOnly  bool
	Limit       int
	Offset      int
}

// Page is the browse/search response.
type Page struct {
	Fragrances     []Fragrance    `json:"fragrances"`
	Total          int            `json:"total"`
	Query          string         `json:"query"`
	FiltersApplied map[string]any `json:"filters_applied"`
}

// RPCParams are the arguments of get_quiz_recommendations.
type RPCParams struct {
	ScentFamily string
	Gender      string
	Intensity   string
	Limit       int
}

// ScoredRow is one row returned by the recommendation RPC.
type ScoredRow struct {
	FragranceID     string  `json:"fragrance_id"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	ScentFamily     string  `json:"scent_family"`
	MatchScore      float64 `json:"match_score"`
	SampleAvailable bool    `json:"sample_available"`
	SamplePriceUSD  int     `json:"sample_price_usd"`
}

func (f Filter) applied() map[string]any {
	out := map[string]any{}
	if f.ScentFamily != "" {
		out["scent_family"] = f.ScentFamily
	}
	if f.Gender != "" {
		out["gender"] = f.Gender
	}
	if f.SampleOnly {
		out["sample_only"] = true
	}
	return out
}
