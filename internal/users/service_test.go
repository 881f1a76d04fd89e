package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertFromAuthFirstVisitStartsAtZero(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, err := svc.UpsertFromAuth(context.Background(), User{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, user.EngagementScore)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUpsertFromAuthRequiresID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	_, err := svc.UpsertFromAuth(context.Background(), User{Email: "a@example.com"})
	assert.Error(t, err)
}

func TestNextEngagement(t *testing.T) {
	base := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		score    float64
		lastSeen time.Time
		now      time.Time
		want     float64
	}{
		{name: "same day unchanged", score: 0.5, lastSeen: base, now: base.Add(2 * time.Hour), want: 0.5},
		{name: "next day grows", score: 0.5, lastSeen: base, now: base.Add(24 * time.Hour), want: 0.55},
		{name: "capped at one", score: 0.98, lastSeen: base, now: base.Add(24 * time.Hour), want: 1},
		{name: "idle weeks decay", score: 0.5, lastSeen: base, now: base.Add(15 * 24 * time.Hour), want: 0.35},
		{name: "floored at zero", score: 0.1, lastSeen: base, now: base.Add(60 * 24 * time.Hour), want: 0},
		{name: "zero last seen", score: 0.3, now: base, want: 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, nextEngagement(tt.score, tt.lastSeen, tt.now), 0.0001)
		})
	}
}

func TestUpsertFromAuthUpdatesEngagementOnNewDay(t *testing.T) {
	repo := NewMemoryRepo()
	day1 := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return day1 }
	svc := NewService(repo)
	svc.Now = func() time.Time { return day1 }

	_, err := svc.UpsertFromAuth(context.Background(), User{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)

	day2 := day1.Add(24 * time.Hour)
	repo.now = func() time.Time { return day2 }
	svc.Now = func() time.Time { return day2 }
	user, err := svc.UpsertFromAuth(context.Background(), User{ID: "user-1", Email: "a@example.com", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, user.EngagementScore, 0.0001)
	assert.Equal(t, day1, user.CreatedAt)
	assert.Equal(t, 1, user.AccountAgeDays(day2))
}
