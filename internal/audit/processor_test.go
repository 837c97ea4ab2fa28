package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/pawtrails/backoffice/internal/db/repositories"
)

var queueCols = []string{
	"id", "actor_id", "action", "target_type", "target_id",
	"reason", "metadata", "attempts", "last_attempt", "created_at",
}

func newProcessor(t *testing.T) (*Processor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logs := repositories.NewAuditRepository(db)
	queue := repositories.NewAuditQueueRepository(db)
	return NewProcessor(db, logs, queue, 5, time.Minute, 0), mock
}

func TestProcessQueue_Empty(t *testing.T) {
	p, mock := newProcessor(t)
	mock.ExpectQuery("SELECT id FROM audit_queue").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	processed, err := p.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}
}

func TestProcessQueue_MigratesEntry(t *testing.T) {
	p, mock := newProcessor(t)
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id FROM audit_queue").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q-1"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM audit_queue.*FOR UPDATE SKIP LOCKED").
		WillReturnRows(sqlmock.NewRows(queueCols).
			AddRow("q-1", "mod-1", "soft_delete", "article", "a-1",
				nil, nil, 1, time.Now().Add(-time.Hour), created))
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs("q-1", "mod-1", "soft_delete", "article", "a-1", nil, nil, created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM audit_queue WHERE id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	processed, err := p.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProcessQueue_SkipsLockedEntry(t *testing.T) {
	p, mock := newProcessor(t)

	mock.ExpectQuery("SELECT id FROM audit_queue").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q-1"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM audit_queue.*FOR UPDATE SKIP LOCKED").
		WillReturnRows(sqlmock.NewRows(queueCols))
	mock.ExpectRollback()

	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	processed, err := p.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0 for skipped entry", processed)
	}
}

func TestProcessQueue_FailureBumpsAttempts(t *testing.T) {
	p, mock := newProcessor(t)

	mock.ExpectQuery("SELECT id FROM audit_queue").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q-1"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM audit_queue.*FOR UPDATE SKIP LOCKED").
		WillReturnRows(sqlmock.NewRows(queueCols).
			AddRow("q-1", nil, "restore", "place", "p-1",
				nil, nil, 0, nil, time.Now()))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	mock.ExpectExec("UPDATE audit_queue SET attempts = attempts \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	processed, err := p.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProcessQueue_ContinuesPastFailures(t *testing.T) {
	p, mock := newProcessor(t)
	created := time.Now()

	mock.ExpectQuery("SELECT id FROM audit_queue").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q-1").AddRow("q-2"))

	// q-1 fails on insert
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM audit_queue.*FOR UPDATE SKIP LOCKED").
		WillReturnRows(sqlmock.NewRows(queueCols).
			AddRow("q-1", nil, "restore", "place", "p-1", nil, nil, 0, nil, created))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()
	mock.ExpectExec("UPDATE audit_queue SET attempts = attempts \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// q-2 succeeds
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id.*FROM audit_queue.*FOR UPDATE SKIP LOCKED").
		WillReturnRows(sqlmock.NewRows(queueCols).
			AddRow("q-2", nil, "soft_delete", "article", "a-2", nil, nil, 0, nil, created))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM audit_queue WHERE id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 2))

	processed, err := p.ProcessQueue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
}

func TestProcessQueue_UsesConfiguredBatchLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	p := NewProcessor(db, repositories.NewAuditRepository(db),
		repositories.NewAuditQueueRepository(db), 5, time.Minute, 7)

	mock.ExpectQuery("SELECT id FROM audit_queue").
		WithArgs(5, sqlmock.AnyArg(), 7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := p.ProcessQueue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProcessQueue_DefaultsBatchLimit(t *testing.T) {
	p, mock := newProcessor(t)

	mock.ExpectQuery("SELECT id FROM audit_queue").
		WithArgs(5, sqlmock.AnyArg(), DefaultDrainBatchSize).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE FROM audit_queue WHERE attempts >=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := p.ProcessQueue(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProcessQueue_ListError(t *testing.T) {
	p, mock := newProcessor(t)
	mock.ExpectQuery("SELECT id FROM audit_queue").
		WillReturnError(errors.New("db down"))

	if _, err := p.ProcessQueue(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}
