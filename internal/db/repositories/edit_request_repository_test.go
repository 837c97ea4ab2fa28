package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/pawtrails/backoffice/internal/db/models"
)

var editRequestCols = []string{
	"id", "content_type", "content_id", "user_id", "status",
	"reviewed_by", "reviewed_at", "reason", "created_at",
}

func TestGetForUpdateTx_Pending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewEditRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM edit_requests WHERE id.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(editRequestCols).
			AddRow("er-1", "article", "a-1", "u-1", "pending",
				nil, nil, nil, time.Now()))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	req, err := repo.GetForUpdateTx(context.Background(), tx, "er-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req == nil {
		t.Fatal("expected request, got nil")
	}
	if req.Status != models.EditRequestPending {
		t.Errorf("Status = %q, want pending", req.Status)
	}
}

func TestGetForUpdateTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewEditRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM edit_requests WHERE id.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(editRequestCols))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	req, err := repo.GetForUpdateTx(context.Background(), tx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req != nil {
		t.Errorf("expected nil, got %v", req)
	}
}

func TestRejectTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewEditRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE edit_requests.*SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.RejectTx(context.Background(), tx, "er-1", "mod-1", "spam", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
