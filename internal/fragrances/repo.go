package fragrances

import "context"

type Repo interface {
	Search(ctx context.Context, f Filter) ([]Fragrance, int, error)
	GetByID(ctx context.Context, id string) (Fragrance, error)
	// Candidates returns the highest-priority fragrances matching f, without a total count.
	Candidates(ctx context.Context, f Filter) ([]Fragrance, error)
	Upsert(ctx context.Context, items []Fragrance) (int, error)
	RecommendByQuiz(ctx context.Context, p RPCParams) ([]ScoredRow, error)
}
