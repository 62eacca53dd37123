package store

import (
	"context"
	"fmt"
	"time"
)

// Visit is one tracked page view. The client address is stored hashed.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Country   string    `json:"country,omitempty"`
}

// VisitCounts summarizes the visitors table relative to a point in time.
type VisitCounts struct {
	Total    int64 `json:"total_visitors"`
	Unique   int64 `json:"unique_visitors"`
	Today    int64 `json:"visitors_today"`
	ThisWeek int64 `json:"visitors_this_week"`
}

// VisitorRepository records and reports page views.
type VisitorRepository struct {
	db *DB
}

func NewVisitorRepository(db *DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

func (r *VisitorRepository) Record(ctx context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp, country)
		VALUES (?, ?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, v.Timestamp.UTC(), nullString(v.Country))
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// Counts reports totals plus views since the start of now's UTC day and
// during the seven days before now.
func (r *VisitorRepository) Counts(ctx context.Context, now time.Time) (VisitCounts, error) {
	var counts VisitCounts
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT hashed_ip),
			COUNT(CASE WHEN timestamp >= ? THEN 1 END),
			COUNT(CASE WHEN timestamp >= ? THEN 1 END)
		FROM visitors
	`, day, now.AddDate(0, 0, -7)).Scan(&counts.Total, &counts.Unique, &counts.Today, &counts.ThisWeek)
	if err != nil {
		return VisitCounts{}, fmt.Errorf("failed to count visitors: %w", err)
	}
	return counts, nil
}

// Recent returns the latest visits, newest first.
func (r *VisitorRepository) Recent(ctx context.Context, limit int) ([]Visit, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, timestamp, COALESCE(country, '')
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp, &v.Country); err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// DeleteBefore removes visits older than cutoff and returns how many went.
func (r *VisitorRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM visitors WHERE timestamp < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up visitors: %w", err)
	}
	return res.RowsAffected()
}
