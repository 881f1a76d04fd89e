package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

type PGSessionRepo struct {
	DB *sql.DB
}

func (r *PGSessionRepo) Save(ctx context.Context, s Session) error {
	const query = `
INSERT INTO quiz_sessions (token, user_id, responses, result, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (token) DO UPDATE SET
  result = EXCLUDED.result,
  expires_at = EXCLUDED.expires_at`
	responses, err := json.Marshal(s.Responses)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		s.Token,
		nullableString(s.UserID),
		responses,
		nullableJSON(s.Result),
		s.CreatedAt,
		s.ExpiresAt,
	)
	return err
}

func (r *PGSessionRepo) Get(ctx context.Context, token string) (Session, error) {
	const query = `
SELECT token, user_id, responses, result, created_at, expires_at
FROM quiz_sessions
WHERE token = $1
LIMIT 1`
	var (
		s         Session
		userID    sql.NullString
		responses []byte
		result    []byte
	)
	err := r.DB.QueryRowContext(ctx, query, token).Scan(
		&s.Token,
		&userID,
		&responses,
		&result,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	if userID.Valid {
		s.UserID = userID.String
	}
	if len(responses) > 0 {
		if err := json.Unmarshal(responses, &s.Responses); err != nil {
			return Session{}, err
		}
	}
	if len(result) > 0 {
		s.Result = json.RawMessage(result)
	}
	return s, nil
}

func (r *PGSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM quiz_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
