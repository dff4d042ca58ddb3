package schedule

import (
	"math"
	"time"
)

// TrendDirection tags which way an aggregate moved between two periods.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendSame TrendDirection = "same"
)

// Trend is a period-over-period comparison: an absolute percentage
// paired with the direction of the change.
type Trend struct {
	Percentage int            `json:"percentage"`
	Direction  TrendDirection `json:"direction"`
}

// DayMinutes returns the open minutes of a single day: close minus
// open, less the nominal duration of every parseable positive-length
// break, clamped at zero.
//
// Breaks are subtracted independently here, without merging overlaps
// the way OpenPeriods does. Persisted totals were produced by this
// flat subtraction, so it is kept for compatibility.
func DayMinutes(day DaySchedule) int {
	if day.Closed {
		return 0
	}

	openMinutes, ok := timeToMinutes(day.Open)
	if !ok {
		return 0
	}
	closeMinutes, ok := timeToMinutes(day.Close)
	if !ok {
		return 0
	}

	dayMinutes := closeMinutes - openMinutes
	for _, b := range day.Breaks {
		start, ok := timeToMinutes(b.Start)
		if !ok {
			continue
		}
		end, ok := timeToMinutes(b.End)
		if !ok {
			continue
		}
		if end-start > 0 {
			dayMinutes -= end - start
		}
	}

	if dayMinutes < 0 {
		return 0
	}
	return dayMinutes
}

// MonthTotalHours sums open minutes over every calendar day of the
// month and returns the total in hours, rounded to two decimals. Days
// absent from the schedule or marked closed contribute zero.
func MonthTotalHours(ms MonthlySchedule, month time.Month, year int) float64 {
	totalMinutes := 0
	for day := 1; day <= DaysInMonth(year, month); day++ {
		entry, ok := ms[DateKey(year, month, day)]
		if !ok {
			continue
		}
		totalMinutes += DayMinutes(entry)
	}
	return round2(float64(totalMinutes) / 60)
}

// AverageHours returns the arithmetic mean of already-computed monthly
// totals, rounded to two decimals. An empty input yields zero.
func AverageHours(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range totals {
		sum += t
	}
	return round2(sum / float64(len(totals)))
}

// ComputeTrend compares two aggregate figures. A zero previous period
// reports a flat 100% rise when the current one is positive, otherwise
// no change.
func ComputeTrend(current, previous float64) Trend {
	if previous == 0 {
		if current > 0 {
			return Trend{Percentage: 100, Direction: TrendUp}
		}
		return Trend{Percentage: 0, Direction: TrendSame}
	}

	pct := roundHalfUp((current - previous) / previous * 100)
	switch {
	case pct > 0:
		return Trend{Percentage: pct, Direction: TrendUp}
	case pct < 0:
		return Trend{Percentage: -pct, Direction: TrendDown}
	default:
		return Trend{Percentage: 0, Direction: TrendSame}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundHalfUp rounds halves toward positive infinity, matching how the
// historical totals were rounded.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
