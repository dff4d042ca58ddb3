package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/karubi02/smb-booking/internal/schedule"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ScheduleRecord is one stored month for one user. Data is the
// canonical, already-normalized month; TotalHours the derived cache
// persisted alongside it.
type ScheduleRecord struct {
	ID         int64
	UserID     string
	Month      int
	Year       int
	Data       schedule.MonthlySchedule
	IsPublic   bool
	TotalHours float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GetSchedule loads the month record for (userID, month, year). The
// stored blob is normalized on every read so callers only ever see the
// canonical shape.
func (db *DB) GetSchedule(ctx context.Context, userID string, month, year int) (*ScheduleRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, month, year, schedule_data, is_public, total_hours,
		       created_at, updated_at
		FROM schedules
		WHERE user_id = ? AND month = ? AND year = ?`,
		userID, month, year)
	return scanSchedule(row)
}

// GetPublicSchedule loads a month record only if its owner published it.
func (db *DB) GetPublicSchedule(ctx context.Context, userID string, month, year int) (*ScheduleRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, month, year, schedule_data, is_public, total_hours,
		       created_at, updated_at
		FROM schedules
		WHERE user_id = ? AND month = ? AND year = ? AND is_public = 1`,
		userID, month, year)
	return scanSchedule(row)
}

func scanSchedule(row *sql.Row) (*ScheduleRecord, error) {
	var rec ScheduleRecord
	var data []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Month, &rec.Year, &data,
		&rec.IsPublic, &rec.TotalHours, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Data = schedule.NormalizeMonth(data)
	return &rec, nil
}

// UpsertSchedule creates or replaces the month record. The total-hours
// cache is recomputed from the data on every save, never trusted from
// the caller.
func (db *DB) UpsertSchedule(ctx context.Context, userID string, month, year int, data schedule.MonthlySchedule, isPublic bool) (float64, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal schedule: %w", err)
	}

	totalHours := schedule.MonthTotalHours(data, time.Month(month), year)
	now := time.Now()

	_, err = db.ExecContext(ctx, `
		INSERT INTO schedules (user_id, month, year, schedule_data, is_public, total_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, month, year) DO UPDATE SET
			schedule_data = excluded.schedule_data,
			is_public = excluded.is_public,
			total_hours = excluded.total_hours,
			updated_at = excluded.updated_at`,
		userID, month, year, string(blob), isPublic, totalHours, now, now)
	if err != nil {
		return 0, err
	}
	return totalHours, nil
}

// DeleteSchedule removes the whole month record; per-day deletion does
// not exist.
func (db *DB) DeleteSchedule(ctx context.Context, userID string, month, year int) error {
	res, err := db.ExecContext(ctx,
		"DELETE FROM schedules WHERE user_id = ? AND month = ? AND year = ?",
		userID, month, year)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// HasPublicSchedule reports whether a published record exists for the
// given month, used for prev/next navigation on the public page.
func (db *DB) HasPublicSchedule(ctx context.Context, userID string, month, year int) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM schedules
		WHERE user_id = ? AND month = ? AND year = ? AND is_public = 1`,
		userID, month, year).Scan(&count)
	return count > 0, err
}

// ListTotalHours returns the cached total_hours of every stored month
// for a user, oldest first.
func (db *DB) ListTotalHours(ctx context.Context, userID string) ([]float64, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT total_hours FROM schedules
		WHERE user_id = ?
		ORDER BY year, month`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// MonthSummary is one month's aggregate for the year overview.
type MonthSummary struct {
	Month      int     `json:"month"`
	TotalHours float64 `json:"total_hours"`
	IsPublic   bool    `json:"is_public"`
}

// ListYearSummaries returns the stored months of one calendar year,
// January first.
func (db *DB) ListYearSummaries(ctx context.Context, userID string, year int) ([]MonthSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT month, total_hours, is_public FROM schedules
		WHERE user_id = ? AND year = ?
		ORDER BY month`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []MonthSummary
	for rows.Next() {
		var s MonthSummary
		if err := rows.Scan(&s.Month, &s.TotalHours, &s.IsPublic); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
