package schedule

import (
	"encoding/json"
)

// rawDay accepts every historical shape of a stored day entry:
//
//	v1: single optional break via hasBreak/breakStart/breakEnd
//	v2: breaks list without ids
//	v3: breaks list with ids (current)
//
// Pointer fields distinguish "absent" from zero values so the decode
// path can be picked by field presence.
type rawDay struct {
	Open       *string `json:"open"`
	Close      *string `json:"close"`
	Closed     *bool   `json:"closed"`
	HasBreak   *bool   `json:"hasBreak"`
	BreakStart string  `json:"breakStart"`
	BreakEnd   string  `json:"breakEnd"`
	Breaks     []Break `json:"breaks"`
}

// NormalizeMonth migrates a stored month blob of any historical shape
// into the canonical MonthlySchedule. Malformed entries degrade to the
// default day and a blob that is not a JSON object yields an empty
// schedule; the function never fails.
func NormalizeMonth(data []byte) MonthlySchedule {
	migrated := MonthlySchedule{}
	if len(data) == 0 {
		return migrated
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return migrated
	}

	for date, entry := range raw {
		migrated[date] = normalizeDay(entry)
	}
	return migrated
}

// NormalizeDay migrates a single stored day entry to the canonical
// shape.
func NormalizeDay(entry json.RawMessage) DaySchedule {
	return normalizeDay(entry)
}

func normalizeDay(entry json.RawMessage) DaySchedule {
	day := DefaultDay()

	var r rawDay
	if err := json.Unmarshal(entry, &r); err != nil {
		return day
	}

	if r.Open != nil && *r.Open != "" {
		day.Open = *r.Open
	}
	if r.Close != nil && *r.Close != "" {
		day.Close = *r.Close
	}
	if r.Closed != nil {
		day.Closed = *r.Closed
	}

	switch {
	case r.HasBreak != nil:
		// Legacy shape: at most one break, and only when both bounds
		// are present.
		if *r.HasBreak && r.BreakStart != "" && r.BreakEnd != "" {
			day.Breaks = []Break{{Start: r.BreakStart, End: r.BreakEnd}}
		}
	case r.Breaks != nil:
		day.Breaks = append([]Break{}, r.Breaks...)
	}
	return day
}
