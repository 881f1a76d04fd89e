// Package catalog builds the fragrance catalog from the Kaggle export.
package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"

	"scentmatch-backend/internal/fragrances"
	"scentmatch-backend/internal/shared/telemetry"
)

const (
	DefaultLimit     = 2000
	DefaultBatchSize = 200
)

// Upserter stores catalog records.
type Upserter interface {
	Upsert(ctx context.Context, items []fragrances.Fragrance) (int, error)
}

type Options struct {
	Limit     int
	BatchSize int
	DryRun    bool
	Encoding  Encoding
	// Boosts lift hand-picked names such as bestsellers and classics.
	Boosts    []Boost
}

// Report summarizes one import run.
type Report struct {
	Read       int `json:"read"`
	Malformed  int `json:"malformed"`
	Unscored   int `json:"unscored"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Selected   int `json:"selected"`
	Upserted   int `json:"upserted"`
	Brands     int `json:"brands"`
}

type Importer struct {
	Repo     Upserter
	validate *validator.Validate
}

func NewImporter(repo Upserter) *Importer {
	return &Importer{Repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type scored struct {
	row   Row
	score float64
}

// Import parses, scores, cleans and stores the top rows of r.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (Report, []fragrances.Fragrance, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	rows, malformed, err := ParseCSV(r, opts.Encoding)
	if err != nil {
		return Report{}, nil, err
	}
	rep := Report{Read: len(rows) + malformed, Malformed: malformed}

	ranked := make([]scored, 0, len(rows))
	for _, row := range rows {
		s := PriorityScore(row, opts.Boosts...)
		if s <= 0 {
			rep.Unscored++
			continue
		}
		ranked = append(ranked, scored{row: row, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	seen := make(map[string]bool, limit)
	brands := map[string]bool{}
	selected := make([]fragrances.Fragrance, 0, limit)
	for _, c := range ranked {
		if len(selected) == limit {
			break
		}
		f := Clean(c.row, c.score)
		if seen[f.ID] {
			rep.Duplicates++
			continue
		}
		if err := im.validate.Struct(f); err != nil {
			rep.Invalid++
			telemetry.Warn("catalog.record_invalid", map[string]any{"id": f.ID, "error": err.Error()})
			continue
		}
		seen[f.ID] = true
		brands[f.BrandID] = true
		selected = append(selected, f)
	}
	rep.Selected = len(selected)
	rep.Brands = len(brands)

	if opts.DryRun || im.Repo == nil {
		return rep, selected, nil
	}
	for start := 0; start < len(selected); start += batch {
		end := min(start+batch, len(selected))
		n, err := im.Repo.Upsert(ctx, selected[start:end])
		rep.Upserted += n
		if err != nil {
			return rep, selected, fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
		telemetry.Info("catalog.batch_upserted", map[string]any{"from": start, "to": end, "total": len(selected)})
	}
	return rep, selected, nil
}
