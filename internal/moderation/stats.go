// stats.go aggregates moderation queue statistics. Pure group-by reads with
// no locking: the numbers are a point-in-time snapshot for the dashboard, not
// a view guaranteed consistent with in-flight writes.
package moderation

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// QueueStats is the aggregated view of the moderation queue
type QueueStats struct {
	TotalPending       int64            `json:"totalPending"`
	TotalInReview      int64            `json:"totalInReview"`
	TotalResolved      int64            `json:"totalResolved"`
	PendingByPriority  map[string]int64 `json:"pendingByPriority"`
	QueueByContentType map[string]int64 `json:"queueByContentType"`
}

// StatsService computes moderation queue statistics
type StatsService struct {
	db *sqlx.DB
}

// NewStatsService creates a StatsService
func NewStatsService(db *sqlx.DB) *StatsService {
	return &StatsService{db: db}
}

type groupCount struct {
	Key   string `db:"key"`
	Count int64  `db:"count"`
}

// Stats returns queue totals plus pending breakdowns by priority and content
// type. Both breakdown maps sum to TotalPending.
func (s *StatsService) Stats(ctx context.Context) (*QueueStats, error) {
	stats := &QueueStats{
		PendingByPriority:  make(map[string]int64),
		QueueByContentType: make(map[string]int64),
	}

	// Totals in a single round-trip
	totalsQuery := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'in_review') AS in_review,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved
		FROM moderation_queue
	`
	err := s.db.QueryRowContext(ctx, totalsQuery).Scan(
		&stats.TotalPending,
		&stats.TotalInReview,
		&stats.TotalResolved,
	)
	if err != nil {
		return nil, fmt.Errorf("load queue totals: %w", err)
	}

	var byPriority []groupCount
	err = s.db.SelectContext(ctx, &byPriority, `
		SELECT priority AS key, COUNT(*) AS count
		FROM moderation_queue
		WHERE status = 'pending'
		GROUP BY priority
	`)
	if err != nil {
		return nil, fmt.Errorf("load pending by priority: %w", err)
	}
	for _, row := range byPriority {
		stats.PendingByPriority[row.Key] = row.Count
	}

	var byContentType []groupCount
	err = s.db.SelectContext(ctx, &byContentType, `
		SELECT content_type AS key, COUNT(*) AS count
		FROM moderation_queue
		WHERE status = 'pending'
		GROUP BY content_type
	`)
	if err != nil {
		return nil, fmt.Errorf("load pending by content type: %w", err)
	}
	for _, row := range byContentType {
		stats.QueueByContentType[row.Key] = row.Count
	}

	return stats, nil
}
