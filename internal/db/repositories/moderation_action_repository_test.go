package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/pawtrails/backoffice/internal/db/models"
)

func TestCreateActionTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewModerationActionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO moderation_actions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	action := &models.ModerationActionLog{
		Action:      "bulk_range_block",
		ContentType: "user",
		ContentID:   "u-1",
		PerformedBy: "mod-1",
		Metadata:    map[string]interface{}{"duration": 30},
	}
	if err := repo.CreateTx(context.Background(), tx, action); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestListByContent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewModerationActionRepository(db)

	cols := []string{"id", "action", "content_type", "content_id", "performed_by", "reason", "metadata", "created_at"}
	mock.ExpectQuery("SELECT id.*FROM moderation_actions").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ma-1", "delete", "article", "a-1", "mod-1", "spam", []byte(`{"source":"report"}`), time.Now()).
			AddRow("ma-2", "restore", "article", "a-1", "mod-2", nil, nil, time.Now()))

	actions, err := repo.ListByContent(context.Background(), "article", "a-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].Metadata["source"] != "report" {
		t.Errorf("metadata source = %v, want report", actions[0].Metadata["source"])
	}
}
