package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	// Upsert creates the profile or refreshes identity fields, keeping created_at.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	SetEngagement(ctx context.Context, userID string, score float64) error
}
