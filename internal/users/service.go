package users

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// Engagement grows by visitIncrement for each visit on a new calendar day and
// decays by decayPerIdleWeek for every full week without a visit.
const (
	visitIncrement   = 0.05
	decayPerIdleWeek = 0.1
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// UpsertFromAuth persists the identity from the verified token and updates engagement.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" {
		return User{}, errors.New("user id is required")
	}

	previous, err := s.Repo.GetByID(ctx, user.ID)
	firstVisit := errors.Is(err, ErrNotFound)
	if err != nil && !firstVisit {
		return User{}, err
	}

	saved, err := s.Repo.Upsert(ctx, user)
	if err != nil {
		return User{}, err
	}
	if firstVisit {
		return saved, nil
	}

	score := nextEngagement(previous.EngagementScore, previous.LastSeenAt, s.now())
	if score != previous.EngagementScore {
		if err := s.Repo.SetEngagement(ctx, user.ID, score); err != nil {
			return User{}, err
		}
		saved.EngagementScore = score
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func nextEngagement(score float64, lastSeen, now time.Time) float64 {
	if lastSeen.IsZero() || !now.After(lastSeen) {
		return score
	}
	idleWeeks := int(now.Sub(lastSeen).Hours() / (24 * 7))
	score -= float64(idleWeeks) * decayPerIdleWeek
	if sameDay(lastSeen, now) {
		return clamp01(score)
	}
	return clamp01(score + visitIncrement)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func clamp01(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v))*1000) / 1000
}
