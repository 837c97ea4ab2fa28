package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var contentCols = []string{"id", "author_id", "title", "deleted_at", "created_at"}

func newContentRepo(t *testing.T) (*ContentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewContentRepository(db), mock
}

func TestGetContent_UnknownTable(t *testing.T) {
	repo, _ := newContentRepo(t)
	_, err := repo.GetContent(context.Background(), "users; DROP TABLE users", "x")
	if err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestGetContent_Found(t *testing.T) {
	repo, mock := newContentRepo(t)
	mock.ExpectQuery("SELECT id, author_id, title, deleted_at, created_at FROM articles").
		WillReturnRows(sqlmock.NewRows(contentCols).
			AddRow("a-1", "u-1", "Hiking with dogs", nil, time.Now()))

	item, err := repo.GetContent(context.Background(), "articles", "a-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item == nil {
		t.Fatal("expected item, got nil")
	}
	if item.Deleted() {
		t.Error("expected live item")
	}
}

func TestSoftDeleteTx_AlreadyDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewContentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE places SET deleted_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	ok, err := repo.SoftDeleteTx(context.Background(), tx, "places", "p-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false for already deleted row")
	}
}

func TestRestoreTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewContentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET deleted_at = NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.RestoreTx(context.Background(), tx, "products", "pr-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
