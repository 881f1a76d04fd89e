package fragrances

import (
	"context"
	"errors"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Search clamps paging and normalizes filters before querying.
func (s *Service) Search(ctx context.Context, f Filter) (Page, error) {
	if s == nil || s.Repo == nil {
		return Page{}, errors.New("fragrances service not configured")
	}
	f = normalizeFilter(f)
	items, total, err := s.Repo.Search(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []Fragrance{}
	}
	return Page{
		Fragrances:     items,
		Total:          total,
		Query:          f.Query,
		FiltersApplied: f.applied(),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Fragrance, error) {
	if s == nil || s.Repo == nil {
		return Fragrance{}, errors.New("fragrances service not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Fragrance{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

func normalizeFilter(f Filter) Filter {
	f.Query = strings.TrimSpace(f.Query)
	f.ScentFamily = strings.ToLower(strings.TrimSpace(f.ScentFamily))
	f.Gender = strings.ToLower(strings.TrimSpace(f.Gender))
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
