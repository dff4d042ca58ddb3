package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMonthLegacyShape(t *testing.T) {
	data := []byte(`{
		"2024-01-15": {"open": "10:00", "close": "18:00", "closed": false,
			"hasBreak": true, "breakStart": "12:00", "breakEnd": "13:00"},
		"2024-01-16": {"open": "10:00", "close": "18:00", "closed": false,
			"hasBreak": false, "breakStart": "12:00", "breakEnd": "13:00"},
		"2024-01-17": {"open": "10:00", "close": "18:00", "closed": false,
			"hasBreak": true, "breakStart": "", "breakEnd": "13:00"}
	}`)

	ms := NormalizeMonth(data)
	require.Len(t, ms, 3)

	withBreak := ms["2024-01-15"]
	assert.Equal(t, "10:00", withBreak.Open)
	assert.Equal(t, "18:00", withBreak.Close)
	require.Len(t, withBreak.Breaks, 1)
	assert.Equal(t, Break{Start: "12:00", End: "13:00"}, withBreak.Breaks[0])

	// hasBreak false: the stored bounds are ignored.
	assert.Empty(t, ms["2024-01-16"].Breaks)
	// hasBreak true but a bound is missing: no break synthesized.
	assert.Empty(t, ms["2024-01-17"].Breaks)
}

func TestNormalizeMonthBreaksList(t *testing.T) {
	data := []byte(`{
		"2024-02-01": {"open": "08:00", "close": "20:00", "closed": false,
			"breaks": [{"start": "12:00", "end": "13:00"}, {"id": "b2", "start": "16:00", "end": "16:15"}]}
	}`)

	ms := NormalizeMonth(data)
	day := ms["2024-02-01"]
	require.Len(t, day.Breaks, 2)
	assert.Equal(t, "", day.Breaks[0].ID)
	assert.Equal(t, "b2", day.Breaks[1].ID)
}

func TestNormalizeMonthDefaults(t *testing.T) {
	data := []byte(`{
		"2024-03-01": {},
		"2024-03-02": {"closed": true},
		"2024-03-03": {"open": "", "close": ""}
	}`)

	ms := NormalizeMonth(data)

	for _, date := range []string{"2024-03-01", "2024-03-03"} {
		day := ms[date]
		assert.Equal(t, DefaultOpen, day.Open, date)
		assert.Equal(t, DefaultClose, day.Close, date)
		assert.False(t, day.Closed, date)
		assert.NotNil(t, day.Breaks, date)
		assert.Empty(t, day.Breaks, date)
	}

	assert.True(t, ms["2024-03-02"].Closed)
}

func TestNormalizeMonthMalformedInput(t *testing.T) {
	assert.Empty(t, NormalizeMonth(nil))
	assert.Empty(t, NormalizeMonth([]byte(`not json`)))
	assert.Empty(t, NormalizeMonth([]byte(`[1,2,3]`)))

	// A malformed day entry degrades to the default day instead of
	// poisoning the month.
	ms := NormalizeMonth([]byte(`{"2024-04-01": 42, "2024-04-02": {"open": "07:00"}}`))
	require.Len(t, ms, 2)
	assert.Equal(t, DefaultDay(), ms["2024-04-01"])
	assert.Equal(t, "07:00", ms["2024-04-02"].Open)
}

func TestNormalizeMonthIdempotent(t *testing.T) {
	legacy := []byte(`{
		"2024-05-01": {"open": "10:00", "close": "19:00", "closed": false,
			"hasBreak": true, "breakStart": "13:00", "breakEnd": "14:00"},
		"2024-05-02": {"closed": true}
	}`)

	once := NormalizeMonth(legacy)

	reencoded, err := json.Marshal(once)
	require.NoError(t, err)
	twice := NormalizeMonth(reencoded)

	assert.Equal(t, once, twice)
}

func TestEnsureBreakIDs(t *testing.T) {
	ms := MonthlySchedule{
		"2024-06-01": {
			Open:  "09:00",
			Close: "17:00",
			Breaks: []Break{
				{Start: "12:00", End: "13:00"},
				{ID: "keep-me", Start: "15:00", End: "15:30"},
			},
		},
	}

	EnsureBreakIDs(ms)

	breaks := ms["2024-06-01"].Breaks
	assert.NotEmpty(t, breaks[0].ID)
	assert.Equal(t, "keep-me", breaks[1].ID)
}
