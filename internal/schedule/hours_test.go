package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayMinutes(t *testing.T) {
	tests := []struct {
		name     string
		day      DaySchedule
		expected int
	}{
		{
			name:     "plain eight hour day",
			day:      DaySchedule{Open: "09:00", Close: "17:00"},
			expected: 480,
		},
		{
			name:     "closed day",
			day:      DaySchedule{Open: "09:00", Close: "17:00", Closed: true},
			expected: 0,
		},
		{
			name: "lunch break subtracted",
			day: DaySchedule{
				Open:   "09:00",
				Close:  "17:00",
				Breaks: []Break{{Start: "12:00", End: "13:00"}},
			},
			expected: 420,
		},
		{
			name: "inverted break contributes nothing",
			day: DaySchedule{
				Open:   "09:00",
				Close:  "17:00",
				Breaks: []Break{{Start: "14:00", End: "12:00"}},
			},
			expected: 480,
		},
		{
			name: "unparsable break contributes nothing",
			day: DaySchedule{
				Open:   "09:00",
				Close:  "17:00",
				Breaks: []Break{{Start: "", End: "13:00"}},
			},
			expected: 480,
		},
		{
			name: "break time exceeding window clamps at zero",
			day: DaySchedule{
				Open:   "09:00",
				Close:  "11:00",
				Breaks: []Break{{Start: "08:00", End: "12:00"}},
			},
			expected: 0,
		},
		{
			name:     "unparsable open yields zero",
			day:      DaySchedule{Open: "soon", Close: "17:00"},
			expected: 0,
		},
		{
			name: "overlapping breaks are each subtracted in full",
			day: DaySchedule{
				Open:  "09:00",
				Close: "17:00",
				Breaks: []Break{
					{Start: "12:00", End: "14:00"},
					{Start: "13:00", End: "15:00"},
				},
			},
			// 480 - 120 - 120: the flat subtraction double-counts the
			// overlapping 13:00-14:00 hour on purpose.
			expected: 240,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayMinutes(tt.day))
		})
	}
}

func TestMonthTotalHoursFullMonth(t *testing.T) {
	ms := MonthlySchedule{}
	for day := 1; day <= DaysInMonth(2025, time.January); day++ {
		ms[DateKey(2025, time.January, day)] = DaySchedule{
			Open:  "09:00",
			Close: "17:00",
		}
	}

	assert.Equal(t, float64(8*31), MonthTotalHours(ms, time.January, 2025))
}

func TestMonthTotalHoursSkipsMissingAndClosedDays(t *testing.T) {
	ms := MonthlySchedule{
		DateKey(2025, time.February, 3): {Open: "09:00", Close: "17:00"},
		DateKey(2025, time.February, 4): {Open: "09:00", Close: "17:00", Closed: true},
		DateKey(2025, time.February, 5): {
			Open:   "10:00",
			Close:  "16:30",
			Breaks: []Break{{Start: "12:00", End: "12:45"}},
		},
		// Entry from another month must not leak into the total.
		DateKey(2025, time.March, 1): {Open: "00:00", Close: "23:59"},
	}

	// 480 + 0 + (390 - 45) = 825 minutes.
	assert.Equal(t, 13.75, MonthTotalHours(ms, time.February, 2025))
}

func TestMonthTotalHoursRoundingStaysWithinTolerance(t *testing.T) {
	ms := MonthlySchedule{}
	totalMinutes := 0
	for day := 1; day <= 31; day++ {
		ms[DateKey(2025, time.July, day)] = DaySchedule{
			Open:  "09:00",
			Close: "16:40", // 460 minutes, not divisible by 60
		}
		totalMinutes += 460
	}

	hours := MonthTotalHours(ms, time.July, 2025)
	assert.InDelta(t, float64(totalMinutes)/60, hours, 0.01)
}

func TestMonthTotalHoursEmptySchedule(t *testing.T) {
	assert.Equal(t, 0.0, MonthTotalHours(MonthlySchedule{}, time.May, 2025))
}

func TestAverageHours(t *testing.T) {
	assert.Equal(t, 0.0, AverageHours(nil))
	assert.Equal(t, 160.0, AverageHours([]float64{160}))
	assert.Equal(t, 150.25, AverageHours([]float64{100.5, 200}))
}

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		expected Trend
	}{
		{"zero previous with growth", 5, 0, Trend{Percentage: 100, Direction: TrendUp}},
		{"zero previous and zero current", 0, 0, Trend{Percentage: 0, Direction: TrendSame}},
		{"fifty percent up", 150, 100, Trend{Percentage: 50, Direction: TrendUp}},
		{"quarter down", 75, 100, Trend{Percentage: 25, Direction: TrendDown}},
		{"unchanged", 100, 100, Trend{Percentage: 0, Direction: TrendSame}},
		{"rounds to nearest whole percent", 101, 300, Trend{Percentage: 66, Direction: TrendDown}},
		{"drop to zero", 0, 40, Trend{Percentage: 100, Direction: TrendDown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeTrend(tt.current, tt.previous))
		})
	}
}

func TestRoundHalfUpMatchesHistoricalRounding(t *testing.T) {
	assert.Equal(t, 3, roundHalfUp(2.5))
	assert.Equal(t, -2, roundHalfUp(-2.5))
	assert.Equal(t, -3, roundHalfUp(-2.6))
	assert.Equal(t, 2, roundHalfUp(2.4))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 13.75, round2(13.745000001))
	assert.True(t, math.Abs(round2(1.0/3)-0.33) < 1e-9)
}
