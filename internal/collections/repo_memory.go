package collections

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Item)}
}

func (r *MemoryRepo) Add(ctx context.Context, item Item) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == item.UserID && existing.FragranceID == item.FragranceID {
			return Item{}, ErrDuplicate
		}
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = item
	return item, nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, id string, patch Patch) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return Item{}, ErrNotFound
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Rating != nil {
		rating := *patch.Rating
		item.Rating = &rating
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return item, nil
}

func (r *MemoryRepo) Remove(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, status Status) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Item
	for _, item := range r.items {
		if item.UserID != userID {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	items, err := r.List(ctx, userID, "")
	if err != nil {
		return Stats{}, err
	}
	var s Stats
	families := map[string]struct{}{}
	for _, item := range items {
		s.Total++
		switch item.Status {
		case StatusOwned:
			s.Owned++
		case StatusWishlist:
			s.Wishlist++
		case StatusTried:
			s.Tried++
		}
		if item.Rating != nil {
			s.Rated++
		}
		if item.ScentFamily != "" && item.Status != StatusWishlist {
			families[item.ScentFamily] = struct{}{}
		}
	}
	s.DistinctFamilies = len(families)
	return s, nil
}
