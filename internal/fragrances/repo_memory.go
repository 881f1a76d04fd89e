package fragrances

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo backs dev mode and tests. RecommendByQuiz mirrors the baseline
// scoring of the get_quiz_recommendations migration.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Fragrance
}

func NewMemoryRepo(seed ...Fragrance) *MemoryRepo {
	r := &MemoryRepo{items: make(map[string]Fragrance)}
	for _, f := range seed {
		r.items[f.ID] = f
	}
	return r
}

func (r *MemoryRepo) sorted() []Fragrance {
	out := make([]Fragrance, 0, len(r.items))
	for _, f := range r.items {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore > out[j].PriorityScore
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func matches(f Fragrance, filter Filter) bool {
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		if !strings.Contains(strings.ToLower(f.Name), q) && !strings.Contains(strings.ToLower(f.Brand), q) {
			return false
		}
	}
	if filter.ScentFamily != "" && f.ScentFamily != filter.ScentFamily {
		return false
	}
	if filter.Gender != "" && f.Gender != filter.Gender && f.Gender != "unisex" {
		return false
	}
	if filter.SampleOnly && !f.SampleAvailable {
		return false
	}
	return true
}

func (r *MemoryRepo) Search(ctx context.Context, f Filter) ([]Fragrance, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var hits []Fragrance
	for _, item := range r.sorted() {
		if matches(item, f) {
			hits = append(hits, item)
		}
	}
	total := len(hits)
	return page(hits, f.Limit, f.Offset), total, nil
}

func (r *MemoryRepo) Candidates(ctx context.Context, f Filter) ([]Fragrance, error) {
	items, _, err := r.Search(ctx, Filter{Query: f.Query, ScentFamily: f.ScentFamily, Gender: f.Gender, SampleOnly: f.SampleOnly, Limit: f.Limit})
	return items, err
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Fragrance, error) {
	if err := ctx.Err(); err != nil {
		return Fragrance{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.items[id]
	if !ok {
		return Fragrance{}, ErrNotFound
	}
	return f, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, items []Fragrance) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range items {
		r.items[f.ID] = f
	}
	return len(items), nil
}

func (r *MemoryRepo) RecommendByQuiz(ctx context.Context, p RPCParams) ([]ScoredRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []ScoredRow
	for _, f := range r.sorted() {
		if p.Gender != "" && f.Gender != p.Gender && f.Gender != "unisex" {
			continue
		}
		score := 0.3
		if p.ScentFamily != "" && f.ScentFamily == p.ScentFamily {
			score += 0.4
		}
		if p.Gender == "" || f.Gender == p.Gender || f.Gender == "unisex" {
			score += 0.15
		}
		if p.Intensity != "" && f.Intensity == p.Intensity {
			score += 0.1
		}
		score += math.Min(0.05, f.PriorityScore/1000.0)
		rows = append(rows, ScoredRow{
			FragranceID:     f.ID,
			Name:            f.Name,
			Brand:           f.Brand,
			ScentFamily:     f.ScentFamily,
			MatchScore:      math.Min(1.0, score),
			SampleAvailable: f.SampleAvailable,
			SamplePriceUSD:  f.SamplePriceUSD,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].MatchScore > rows[j].MatchScore })
	limit := p.Limit
	if limit < 1 {
		limit = 1
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func page(items []Fragrance, limit, offset int) []Fragrance {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
