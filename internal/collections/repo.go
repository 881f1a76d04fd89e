package collections

import "context"

type Repo interface {
	Add(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, userID, id string, patch Patch) (Item, error)
	Remove(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, status Status) ([]Item, error)
	Stats(ctx context.Context, userID string) (Stats, error)
}
