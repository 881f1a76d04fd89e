package fragrances

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

type PGRepo struct {
	DB *sql.DB
}

const fragranceColumns = `id, brand_id, brand_name, name, slug, rating_value, rating_count, COALESCE(year, 0),
  gender, array_to_json(accords)::text, scent_family, intensity, top_notes, middle_notes, base_notes,
  array_to_json(perfumers)::text, fragrantica_url, sample_available, sample_price_usd, priority_score`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFragrance(row rowScanner) (Fragrance, error) {
	var (
		f         Fragrance
		accords   string
		perfumers string
	)
	err := row.Scan(
		&f.ID,
		&f.BrandID,
		&f.Brand,
		&f.Name,
		&f.Slug,
		&f.RatingValue,
		&f.RatingCount,
		&f.Year,
		&f.Gender,
		&accords,
		&f.ScentFamily,
		&f.Intensity,
		&f.TopNotes,
		&f.MiddleNotes,
		&f.BaseNotes,
		&perfumers,
		&f.URL,
		&f.SampleAvailable,
		&f.SamplePriceUSD,
		&f.PriorityScore,
	)
	if err != nil {
		return Fragrance{}, err
	}
	if err := decodeTextArray(accords, &f.Accords); err != nil {
		return Fragrance{}, fmt.Errorf("decode accords: %w", err)
	}
	if err := decodeTextArray(perfumers, &f.Perfumers); err != nil {
		return Fragrance{}, fmt.Errorf("decode perfumers: %w", err)
	}
	return f, nil
}

func decodeTextArray(raw string, dst *[]string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func whereClause(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("(name ILIKE $%[1]d OR brand_name ILIKE $%[1]d)", "%"+q+"%")
	}
	if f.ScentFamily != "" {
		add("scent_family = $%d", f.ScentFamily)
	}
	if f.Gender != "" {
		add("(gender = $%d OR gender = 'unisex')", f.Gender)
	}
	if f.SampleOnly {
		conds = append(conds, "sample_available")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGRepo) Search(ctx context.Context, f Filter) ([]Fragrance, int, error) {
	where, args := whereClause(f)

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragrances"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.list(ctx, where, args, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PGRepo) Candidates(ctx context.Context, f Filter) ([]Fragrance, error) {
	where, args := whereClause(f)
	return r.list(ctx, where, args, f.Limit, 0)
}

func (r *PGRepo) list(ctx context.Context, where string, args []any, limit, offset int) ([]Fragrance, error) {
	query := fmt.Sprintf("SELECT %s FROM fragrances%s ORDER BY priority_score DESC, id LIMIT $%d OFFSET $%d",
		fragranceColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fragrance
	for rows.Next() {
		f, err := scanFragrance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Fragrance, error) {
	query := "SELECT " + fragranceColumns + " FROM fragrances WHERE id = $1 LIMIT 1"
	f, err := scanFragrance(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Fragrance{}, ErrNotFound
		}
		return Fragrance{}, err
	}
	return f, nil
}

const upsertQuery = `
INSERT INTO fragrances (
  id, brand_id, brand_name, name, slug, rating_value, rating_count, year, gender, accords,
  scent_family, intensity, top_notes, middle_notes, base_notes, perfumers, fragrantica_url,
  sample_available, sample_price_usd, priority_score, created_at, updated_at
)
VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9, ARRAY(SELECT json_array_elements_text($10::json)),
  $11, $12, $13, $14, $15, ARRAY(SELECT json_array_elements_text($16::json)), $17,
  $18, $19, $20, now(), now()
)
ON CONFLICT (id) DO UPDATE SET
  brand_id = EXCLUDED.brand_id,
  brand_name = EXCLUDED.brand_name,
  name = EXCLUDED.name,
  slug = EXCLUDED.slug,
  rating_value = EXCLUDED.rating_value,
  rating_count = EXCLUDED.rating_count,
  year = EXCLUDED.year,
  gender = EXCLUDED.gender,
  accords = EXCLUDED.accords,
  scent_family = EXCLUDED.scent_family,
  intensity = EXCLUDED.intensity,
  top_notes = EXCLUDED.top_notes,
  middle_notes = EXCLUDED.middle_notes,
  base_notes = EXCLUDED.base_notes,
  perfumers = EXCLUDED.perfumers,
  fragrantica_url = EXCLUDED.fragrantica_url,
  sample_available = EXCLUDED.sample_available,
  sample_price_usd = EXCLUDED.sample_price_usd,
  priority_score = EXCLUDED.priority_score,
  updated_at = now()`

// Upsert writes items in one transaction.
func (r *PGRepo) Upsert(ctx context.Context, items []Fragrance) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, f := range items {
		accords, err := json.Marshal(nonNil(f.Accords))
		if err != nil {
			return 0, err
		}
		perfumers, err := json.Marshal(nonNil(f.Perfumers))
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			f.ID,
			f.BrandID,
			f.Brand,
			f.Name,
			f.Slug,
			f.RatingValue,
			f.RatingCount,
			nullableYear(f.Year),
			f.Gender,
			string(accords),
			f.ScentFamily,
			f.Intensity,
			f.TopNotes,
			f.MiddleNotes,
			f.BaseNotes,
			string(perfumers),
			f.URL,
			f.SampleAvailable,
			f.SamplePriceUSD,
			f.PriorityScore,
		); err != nil {
			return i, fmt.Errorf("upsert %s: %w", f.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *PGRepo) RecommendByQuiz(ctx context.Context, p RPCParams) ([]ScoredRow, error) {
	const query = `
SELECT fragrance_id, name, brand, scent_family, match_score, sample_available, sample_price_usd
FROM get_quiz_recommendations($1, $2, $3, $4)`
	rows, err := r.DB.QueryContext(ctx, query, p.ScentFamily, p.Gender, p.Intensity, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get_quiz_recommendations: %w", err)
	}
	defer rows.Close()

	var out []ScoredRow
	for rows.Next() {
		var (
			row   ScoredRow
			price sql.NullInt64
		)
		if err := rows.Scan(
			&row.FragranceID,
			&row.Name,
			&row.Brand,
			&row.ScentFamily,
			&row.MatchScore,
			&row.SampleAvailable,
			&price,
		); err != nil {
			return nil, err
		}
		if price.Valid {
			row.SamplePriceUSD = int(price.Int64)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullableYear(year int) any {
	if year <= 0 {
		return nil
	}
	return year
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
