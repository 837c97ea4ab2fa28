package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

var userCols = []string{
	"id", "email", "name", "role", "session_invalidated_at",
	"deletion_scheduled_at", "deletion_reason", "created_at", "updated_at",
}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func TestGetUser_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT id.*FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "a@example.com", "Ada", "moderator",
				nil, nil, nil, time.Now(), time.Now()))

	u, err := repo.GetUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if !u.IsModerator() {
		t.Error("expected moderator role")
	}
	if u.IsAdmin() {
		t.Error("moderator should not be admin")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT id.*FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows(userCols))

	u, err := repo.GetUser(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil, got %v", u)
	}
}

func TestApplyRangeBlockTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users.*SET deletion_scheduled_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sessions SET revoked = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	now := time.Now()
	if err := repo.ApplyRangeBlockTx(context.Background(), tx, "u-1", "abuse", now.Add(30*24*time.Hour), now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	revoked, err := repo.RevokeSessionsTx(context.Background(), tx, "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revoked != 2 {
		t.Errorf("revoked = %d, want 2", revoked)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestApplyRangeBlockTx_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users.*SET deletion_scheduled_at").
		WillReturnError(errDB)
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	now := time.Now()
	if err := repo.ApplyRangeBlockTx(context.Background(), tx, "u-1", "abuse", now, now); err == nil {
		t.Error("expected error, got nil")
	}
	tx.Rollback()
}
