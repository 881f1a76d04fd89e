package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, email, display_name, avatar_url, created_at, last_seen_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
  avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), users.avatar_url),
  last_seen_at = now()
RETURNING id, email, display_name, avatar_url, engagement_score, created_at, last_seen_at`
	var out User
	err := r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
	).Scan(
		&out.ID,
		&out.Email,
		&out.DisplayName,
		&out.AvatarURL,
		&out.EngagementScore,
		&out.CreatedAt,
		&out.LastSeenAt,
	)
	return out, err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, display_name, avatar_url, engagement_score, created_at, last_seen_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.AvatarURL,
		&user.EngagementScore,
		&user.CreatedAt,
		&user.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) SetEngagement(ctx context.Context, userID string, score float64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET engagement_score = $1 WHERE id = $2`, score, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
