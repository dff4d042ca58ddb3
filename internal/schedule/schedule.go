// Package schedule implements the opening-hours interval engine: it
// migrates stored month data to one canonical shape, computes the open
// sub-intervals of a day after breaks, and aggregates open hours.
//
// Everything here is pure computation over in-memory values. Malformed
// data degrades to documented fallbacks instead of returning errors,
// so a broken entry never prevents the rest of a calendar from being
// served.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default opening hours applied when a day entry exists but carries no
// usable values, and when the editor seeds a fresh month.
const (
	DefaultOpen  = "09:00"
	DefaultClose = "17:00"
)

// Break is one interruption inside a day's open window. ID is an opaque
// editor handle and never participates in any computation.
type Break struct {
	ID    string `json:"id,omitempty"`
	Start string `json:"start"` // "HH:MM", 24-hour
	End   string `json:"end"`   // "HH:MM", 24-hour
}

// DaySchedule is the canonical per-day configuration. Breaks is always
// non-nil after normalization.
type DaySchedule struct {
	Open   string  `json:"open"`
	Close  string  `json:"close"`
	Closed bool    `json:"closed"`
	Breaks []Break `json:"breaks"`
}

// MonthlySchedule maps "YYYY-MM-DD" date strings to day configurations
// for exactly the days that have an explicit entry.
type MonthlySchedule map[string]DaySchedule

// OpenPeriod is one contiguous open sub-interval after breaks are
// removed. Derived only, never stored.
type OpenPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultDay returns the fallback day configuration: open 09:00-17:00,
// no breaks.
func DefaultDay() DaySchedule {
	return DaySchedule{
		Open:   DefaultOpen,
		Close:  DefaultClose,
		Closed: false,
		Breaks: []Break{},
	}
}

// DateKey formats a calendar day as the "YYYY-MM-DD" map key.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EnsureBreakIDs fills in a generated id for every break that lacks
// one. Called at the editor boundary before persisting; normalization
// itself never invents ids.
func EnsureBreakIDs(ms MonthlySchedule) {
	for date, day := range ms {
		changed := false
		for i := range day.Breaks {
			if day.Breaks[i].ID == "" {
				day.Breaks[i].ID = uuid.New().String()
				changed = true
			}
		}
		if changed {
			ms[date] = day
		}
	}
}

// timeToMinutes parses an "HH:MM" string into minutes since midnight.
// Returns ok=false for anything unparsable.
func timeToMinutes(s string) (int, bool) {
	if !strings.Contains(s, ":") {
		return 0, false
	}
	parts := strings.Split(s, ":")
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}

// minutesToTime renders minutes since midnight as a zero-padded
// "HH:MM" string.
func minutesToTime(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
