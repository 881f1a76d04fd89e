package collections

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"scentmatch-backend/internal/fragrances"
)

// FragranceLookup resolves catalog entries when items are added.
type FragranceLookup interface {
	GetByID(ctx context.Context, id string) (fragrances.Fragrance, error)
}

type Service struct {
	Repo      Repo
	Catalog   FragranceLookup
	newItemID func() string
}

func NewService(repo Repo, catalog FragranceLookup) *Service {
	return &Service{Repo: repo, Catalog: catalog, newItemID: uuid.NewString}
}

// AddInput is the payload for adding a fragrance to a collection.
type AddInput struct {
	FragranceID string
	Status      Status
	Rating      *int
	Notes       string
}

func (s *Service) Add(ctx context.Context, userID string, in AddInput) (Item, error) {
	if err := s.ready(userID); err != nil {
		return Item{}, err
	}
	if in.Status == "" {
		in.Status = StatusOwned
	}
	if !in.Status.Valid() {
		return Item{}, ErrInvalidStatus
	}
	if err := validateRating(in.Rating); err != nil {
		return Item{}, err
	}
	fragranceID := strings.TrimSpace(in.FragranceID)
	if fragranceID == "" {
		return Item{}, ErrFragranceNotFound
	}

	item := Item{
		ID:          s.newID(),
		UserID:      userID,
		FragranceID: fragranceID,
		Status:      in.Status,
		Rating:      in.Rating,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if s.Catalog != nil {
		f, err := s.Catalog.GetByID(ctx, fragranceID)
		if err != nil {
			if errors.Is(err, fragrances.ErrNotFound) {
				return Item{}, ErrFragranceNotFound
			}
			return Item{}, err
		}
		item.Name = f.Name
		item.Brand = f.Brand
		item.ScentFamily = f.ScentFamily
	}
	return s.Repo.Add(ctx, item)
}

func (s *Service) Update(ctx context.Context, userID, id string, patch Patch) (Item, error) {
	if err := s.ready(userID); err != nil {
		return Item{}, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return Item{}, ErrInvalidStatus
	}
	if err := validateRating(patch.Rating); err != nil {
		return Item{}, err
	}
	return s.Repo.Update(ctx, userID, strings.TrimSpace(id), patch)
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if err := s.ready(userID); err != nil {
		return err
	}
	return s.Repo.Remove(ctx, userID, strings.TrimSpace(id))
}

func (s *Service) List(ctx context.Context, userID string, status Status) ([]Item, error) {
	if err := s.ready(userID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	items, err := s.Repo.List(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	if err := s.ready(userID); err != nil {
		return Stats{}, err
	}
	return s.Repo.Stats(ctx, userID)
}

func (s *Service) ready(userID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("collections service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}
	return nil
}

func (s *Service) newID() string {
	if s.newItemID == nil {
		return uuid.NewString()
	}
	return s.newItemID()
}

func validateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
