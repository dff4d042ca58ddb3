package db

import (
	"context"
	"time"
)

// ViewRecord is one public calendar view event.
type ViewRecord struct {
	UserID     string
	PublicSlug string
	IPAddress  string
	UserAgent  string
	Referrer   string
}

// ViewCounts aggregates view events for the stats endpoint.
type ViewCounts struct {
	Total     int64 `json:"total_views"`
	ThisMonth int64 `json:"this_month_views"`
	LastMonth int64 `json:"last_month_views"`
}

// InsertView records a public calendar view.
func (db *DB) InsertView(ctx context.Context, v ViewRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schedule_views (user_id, public_slug, ip_address, user_agent, referrer, viewed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.UserID, v.PublicSlug, v.IPAddress, v.UserAgent, v.Referrer, time.Now())
	return err
}

// GetViewCounts returns total, current-month and previous-month view
// counts for a user, relative to now.
func (db *DB) GetViewCounts(ctx context.Context, userID string, now time.Time) (*ViewCounts, error) {
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)

	var counts ViewCounts
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN viewed_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN viewed_at >= ? AND viewed_at < ? THEN 1 ELSE 0 END), 0)
		FROM schedule_views
		WHERE user_id = ?`,
		thisMonthStart, lastMonthStart, thisMonthStart, userID,
	).Scan(&counts.Total, &counts.ThisMonth, &counts.LastMonth)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// DeleteOldViews prunes view events older than the given retention.
// Returns the number of deleted rows.
func (db *DB) DeleteOldViews(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := db.ExecContext(ctx,
		"DELETE FROM schedule_views WHERE viewed_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
