package moderation

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newStatsService(t *testing.T) (*StatsService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStatsService(sqlx.NewDb(db, "sqlmock")), mock
}

func TestStats(t *testing.T) {
	svc, mock := newStatsService(t)

	mock.ExpectQuery("SELECT.*FILTER.*FROM moderation_queue").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "in_review", "resolved"}).
			AddRow(7, 2, 40))
	mock.ExpectQuery("SELECT priority AS key.*GROUP BY priority").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("high", 3).
			AddRow("low", 4))
	mock.ExpectQuery("SELECT content_type AS key.*GROUP BY content_type").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("article", 5).
			AddRow("place", 2))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPending != 7 || stats.TotalInReview != 2 || stats.TotalResolved != 40 {
		t.Errorf("totals = %d/%d/%d, want 7/2/40", stats.TotalPending, stats.TotalInReview, stats.TotalResolved)
	}

	var byPriority, byType int64
	for _, n := range stats.PendingByPriority {
		byPriority += n
	}
	for _, n := range stats.QueueByContentType {
		byType += n
	}
	if byPriority != stats.TotalPending {
		t.Errorf("pendingByPriority sums to %d, want %d", byPriority, stats.TotalPending)
	}
	if byType != stats.TotalPending {
		t.Errorf("queueByContentType sums to %d, want %d", byType, stats.TotalPending)
	}
}

func TestStats_EmptyQueue(t *testing.T) {
	svc, mock := newStatsService(t)

	mock.ExpectQuery("SELECT.*FILTER.*FROM moderation_queue").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "in_review", "resolved"}).
			AddRow(0, 0, 0))
	mock.ExpectQuery("SELECT priority AS key.*GROUP BY priority").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}))
	mock.ExpectQuery("SELECT content_type AS key.*GROUP BY content_type").
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}))

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPending != 0 || len(stats.PendingByPriority) != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}

func TestStats_DBError(t *testing.T) {
	svc, mock := newStatsService(t)
	mock.ExpectQuery("SELECT.*FILTER.*FROM moderation_queue").
		WillReturnError(errors.New("db down"))

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}
