package collections

import (
	"errors"
	"time"
)

type Status string

const (
	StatusOwned    Status = "owned"
	StatusWishlist Status = "wishlist"
	StatusTried    Status = "tried"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOwned, StatusWishlist, StatusTried:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("collection item not found")
	ErrDuplicate         = errors.New("fragrance already in collection")
	ErrInvalidStatus     = errors.New("invalid collection status")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrFragranceNotFound = errors.New("fragrance not found")
)

type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FragranceID string    `json:"fragrance_id"`
	Status      Status    `json:"status"`
	Rating      *int      `json:"rating,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Name        string    `json:"name,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ScentFamily string    `json:"scent_family,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Patch holds the mutable fields of an item; nil means unchanged.
type Patch struct {
	Status *Status
	Rating *int
	Notes  *string
}

// Stats summarizes a user's collection for experience detection.
type Stats struct {
	Total            int `json:"total"`
	Owned            int `json:"owned"`
	Wishlist         int `json:"wishlist"`
	Tried            int `json:"tried"`
	Rated            int `json:"rated"`
	DistinctFamilies int `json:"distinct_families"`
}
