package fragrances

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var fragranceRowColumns = []string{
	"id", "brand_id", "brand_name", "name", "slug", "rating_value", "rating_count", "year",
	"gender", "accords", "scent_family", "intensity", "top_notes", "middle_notes", "base_notes",
	"perfumers", "fragrantica_url", "sample_available", "sample_price_usd", "priority_score",
}

func TestPGRepoSearchBuildsFilteredQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM fragrances WHERE (name ILIKE $1 OR brand_name ILIKE $1) AND scent_family = $2 AND (gender = $3 OR gender = 'unisex') AND sample_available")).
		WithArgs("%dior%", "fresh", "men").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY priority_score DESC, id LIMIT $4 OFFSET $5")).
		WithArgs("%dior%", "fresh", "men", 20, 0).
		WillReturnRows(sqlmock.NewRows(fragranceRowColumns).AddRow(
			"dior__sauvage", "dior", "Dior", "Sauvage", "sauvage", 4.2, 15000, 2015,
			"men", `["fresh spicy","citrus"]`, "fresh", "strong", "bergamot", "pepper", "ambroxan",
			`["François Demachy"]`, "", true, 20, 41.5,
		))

	repo := &PGRepo{DB: db}
	items, total, err := repo.Search(context.Background(), Filter{Query: "dior", ScentFamily: "fresh", Gender: "men", SampleOnly: true, Limit: 20})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one result, got total=%d len=%d", total, len(items))
	}
	if len(items[0].Accords) != 2 || items[0].Accords[0] != "fresh spicy" {
		t.Fatalf("unexpected accords %v", items[0].Accords)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM fragrances WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(fragranceRowColumns))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoRecommendByQuizCallsRPC(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(regexp.QuoteMeta("FROM get_quiz_recommendations($1, $2, $3, $4)")).
		WithArgs("fresh", "women", "light", 10).
		WillReturnRows(sqlmock.NewRows([]string{"fragrance_id", "name", "brand", "scent_family", "match_score", "sample_available", "sample_price_usd"}).
			AddRow("acqua-di-parma__colonia", "Colonia", "Acqua di Parma", "fresh", 0.95, true, 16).
			AddRow("glossier__you", "You", "Glossier", "fresh", 0.9, false, nil))

	repo := &PGRepo{DB: db}
	rows, err := repo.RecommendByQuiz(context.Background(), RPCParams{ScentFamily: "fresh", Gender: "women", Intensity: "light", Limit: 10})
	if err != nil {
		t.Fatalf("RecommendByQuiz: %v", err)
	}
	if len(rows) != 2 || rows[0].SamplePriceUSD != 16 || rows[1].SamplePriceUSD != 0 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestPGRepoUpsertRunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	items := testCatalog()[:2]
	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO fragrances")
	for _, f := range items {
		prep.ExpectExec().
			WithArgs(f.ID, f.BrandID, f.Brand, f.Name, f.Slug, f.RatingValue, f.RatingCount, nil, f.Gender, "[]",
				f.ScentFamily, f.Intensity, "", "", "", "[]", "", f.SampleAvailable, f.SamplePriceUSD, f.PriorityScore).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	n, err := repo.Upsert(context.Background(), items)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 upserted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
