package collections

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var itemColumns = []string{"id", "user_id", "fragrance_id", "status", "rating", "notes", "name", "brand_name", "scent_family", "created_at", "updated_at"}

func TestPGRepoAddMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO user_collections").
		WithArgs("item-1", "user-1", "dior__sauvage", "owned", nil, "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := &PGRepo{DB: db}
	_, err = repo.Add(context.Background(), Item{ID: "item-1", UserID: "user-1", FragranceID: "dior__sauvage", Status: StatusOwned})
	if err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPGRepoUpdateBuildsPartialSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_collections SET rating = $1, updated_at = now() WHERE id = $2 AND user_id = $3")).
		WithArgs(4, "item-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM user_collections c").
		WithArgs("item-1", "user-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("item-1", "user-1", "dior__sauvage", "owned", 4, "", "Sauvage", "Dior", "fresh", now, now))

	repo := &PGRepo{DB: db}
	rating := 4
	item, err := repo.Update(context.Background(), "user-1", "item-1", Patch{Rating: &rating})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if item.Rating == nil || *item.Rating != 4 || item.Name != "Sauvage" {
		t.Fatalf("unexpected item %+v", item)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoRemoveNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("DELETE FROM user_collections").
		WithArgs("item-9", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Remove(context.Background(), "user-1", "item-9"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("COUNT\\(DISTINCT f.scent_family\\)").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "owned", "wishlist", "tried", "rated", "families"}).
			AddRow(12, 10, 1, 1, 6, 4))

	repo := &PGRepo{DB: db}
	stats, err := repo.Stats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Owned != 10 || stats.DistinctFamilies != 4 || stats.Rated != 6 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
