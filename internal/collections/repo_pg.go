package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

const itemSelect = `
SELECT c.id, c.user_id, c.fragrance_id, c.status, c.rating, c.notes,
       f.name, f.brand_name, f.scent_family, c.created_at, c.updated_at
FROM user_collections c
JOIN fragrances f ON f.id = c.fragrance_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		item   Item
		status string
		rating sql.NullInt64
	)
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.FragranceID,
		&status,
		&rating,
		&item.Notes,
		&item.Name,
		&item.Brand,
		&item.ScentFamily,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return Item{}, err
	}
	item.Status = Status(status)
	if rating.Valid {
		v := int(rating.Int64)
		item.Rating = &v
	}
	return item, nil
}

func (r *PGRepo) Add(ctx context.Context, item Item) (Item, error) {
	const query = `
INSERT INTO user_collections (id, user_id, fragrance_id, status, rating, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		item.ID,
		item.UserID,
		item.FragranceID,
		string(item.Status),
		nullableInt(item.Rating),
		item.Notes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Item{}, ErrDuplicate
		}
		return Item{}, err
	}
	return r.get(ctx, item.UserID, item.ID)
}

func (r *PGRepo) get(ctx context.Context, userID, id string) (Item, error) {
	item, err := scanItem(r.DB.QueryRowContext(ctx, itemSelect+" WHERE c.id = $1 AND c.user_id = $2", id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func (r *PGRepo) Update(ctx context.Context, userID, id string, patch Patch) (Item, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Rating != nil {
		set("rating", *patch.Rating)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = now()")
		args = append(args, id, userID)
		query := fmt.Sprintf("UPDATE user_collections SET %s WHERE id = $%d AND user_id = $%d",
			strings.Join(sets, ", "), len(args)-1, len(args))
		res, err := r.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return Item{}, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return Item{}, ErrNotFound
		}
	}
	return r.get(ctx, userID, id)
}

func (r *PGRepo) Remove(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM user_collections WHERE id = $1 AND user_id = $2`, id, userID)
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

func (r *PGRepo) List(ctx context.Context, userID string, status Status) ([]Item, error) {
	query := itemSelect + " WHERE c.user_id = $1"
	args := []any{userID}
	if status != "" {
		query += " AND c.status = $2"
		args = append(args, string(status))
	}
	query += " ORDER BY c.created_at DESC, c.id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PGRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	const query = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE c.status = 'owned'),
       COUNT(*) FILTER (WHERE c.status = 'wishlist'),
       COUNT(*) FILTER (WHERE c.status = 'tried'),
       COUNT(c.rating),
       COUNT(DISTINCT f.scent_family) FILTER (WHERE c.status <> 'wishlist' AND f.scent_family <> '')
FROM user_collections c
JOIN fragrances f ON f.id = c.fragrance_id
WHERE c.user_id = $1`
	var s Stats
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&s.Total,
		&s.Owned,
		&s.Wishlist,
		&s.Tried,
		&s.Rated,
		&s.DistinctFamilies,
	)
	return s, err
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
