package quiz

import (
	"context"
	"errors"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 24 * time.Hour

var (
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrSessionExpired  = errors.New("quiz session expired")
)

// Session keeps a submission and its result so results can be fetched again by token.
type Session struct {
	Token     string          `json:"token"`
	UserID    string          `json:"user_id,omitempty"`
	Responses Responses       `json:"responses"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type SessionRepo interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type SessionService struct {
	Repo SessionRepo
	TTL  time.Duration
	Now  func() time.Time
}

func NewSessionService(repo SessionRepo) *SessionService {
	return &SessionService{Repo: repo, TTL: DefaultSessionTTL, Now: time.Now}
}

func (s *SessionService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create stores a new session. result may be nil and attached later with Save.
func (s *SessionService) Create(ctx context.Context, userID string, responses Responses, result any) (Session, error) {
	if s == nil || s.Repo == nil {
		return Session{}, errors.New("quiz session service not configured")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := s.now()
	session := Session{
		Token:     NewToken(),
		UserID:    strings.TrimSpace(userID),
		Responses: responses,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return Session{}, err
		}
		session.Result = raw
	}
	if err := s.Repo.Save(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Get returns a live session. Sessions owned by a user are hidden from other users.
func (s *SessionService) Get(ctx context.Context, token, requesterID string) (Session, error) {
	if s == nil || s.Repo == nil {
		return Session{}, errors.New("quiz session service not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrSessionNotFound
	}
	session, err := s.Repo.Get(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if session.UserID != "" && session.UserID != requesterID {
		return Session{}, ErrSessionNotFound
	}
	if !session.ExpiresAt.IsZero() && !s.now().Before(session.ExpiresAt) {
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Purge removes expired sessions.
func (s *SessionService) Purge(ctx context.Context) (int64, error) {
	if s == nil || s.Repo == nil {
		return 0, nil
	}
	return s.Repo.DeleteExpired(ctx, s.now())
}

// NewToken returns an opaque session token.
func NewToken() string {
	return "qs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
