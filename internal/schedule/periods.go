package schedule

import (
	"sort"
)

type breakWindow struct {
	start int
	end   int
}

// OpenPeriods computes the ordered open sub-intervals of a day after
// subtracting its breaks.
//
// A closed day, an unparsable open/close pair, or open >= close yields
// no periods. Breaks with unparsable bounds or start >= end are
// dropped. Overlapping and back-to-back breaks merge into a single gap.
// If the surviving breaks consume the whole window, the full open-close
// span is returned instead of nothing so the day still renders with a
// visible entry.
func OpenPeriods(day DaySchedule) []OpenPeriod {
	if day.Closed {
		return nil
	}

	openMinutes, ok := timeToMinutes(day.Open)
	if !ok {
		return nil
	}
	closeMinutes, ok := timeToMinutes(day.Close)
	if !ok || openMinutes >= closeMinutes {
		return nil
	}

	breaks := make([]breakWindow, 0, len(day.Breaks))
	for _, b := range day.Breaks {
		start, ok := timeToMinutes(b.Start)
		if !ok {
			continue
		}
		end, ok := timeToMinutes(b.End)
		if !ok || start >= end {
			continue
		}
		breaks = append(breaks, breakWindow{start: start, end: end})
	}
	sort.SliceStable(breaks, func(i, j int) bool {
		return breaks[i].start < breaks[j].start
	})

	var periods []OpenPeriod
	segmentStart := openMinutes

	for _, b := range breaks {
		if b.start >= closeMinutes {
			break
		}

		if b.start > segmentStart {
			segmentEnd := b.start
			if closeMinutes < segmentEnd {
				segmentEnd = closeMinutes
			}
			if segmentStart < segmentEnd {
				periods = append(periods, OpenPeriod{
					Start: minutesToTime(segmentStart),
					End:   minutesToTime(segmentEnd),
				})
			}
		}

		if b.end > segmentStart {
			segmentStart = b.end
		}
		if segmentStart >= closeMinutes {
			break
		}
	}

	if segmentStart < closeMinutes {
		periods = append(periods, OpenPeriod{
			Start: minutesToTime(segmentStart),
			End:   minutesToTime(closeMinutes),
		})
	}

	// Breaks covered the whole window: fall back to the unmodified span
	// so the calendar shows something rather than an empty cell.
	if len(periods) == 0 {
		periods = append(periods, OpenPeriod{
			Start: minutesToTime(openMinutes),
			End:   minutesToTime(closeMinutes),
		})
	}

	return periods
}
