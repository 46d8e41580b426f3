package planning

import (
	"time"

	"github.com/mwongozo/backend/core/task"
)

// Expand materializes the ordered, finite sequence of occurrences implied by
// freq within w. All times are naive local timestamps; day boundaries are
// midnight-to-midnight. A rule matching no day in the window yields an empty
// sequence, not an error.
//
// An empty weekday set on a weekly or fortnightly rule expands without any
// weekday filter for that kind.
func Expand(w Window, freq task.Frequency, days []task.Weekday) []Occurrence {
	switch freq {
	case task.FreqDaily:
		return expandDaily(w)
	case task.FreqWeekly:
		return expandWeekly(w, days)
	case task.FreqFortnightlyEven:
		return expandFortnightly(w, days, 0)
	case task.FreqFortnightlyOdd:
		return expandFortnightly(w, days, 1)
	case task.FreqMonthly:
		return expandMonthly(w)
	default:
		// no repetition: a single occurrence spanning the window verbatim
		return []Occurrence{{Start: w.Start, End: w.End}}
	}
}

// expandDaily emits [start, dayEnd(start)] then one occurrence per following
// day starting at midnight. An occurrence whose end would pass the window's
// end is not emitted (strict upper bound, no clamping).
func expandDaily(w Window) []Occurrence {
	occs := make([]Occurrence, 0, int(w.End.Sub(w.Start)/(24*time.Hour))+1)
	start := w.Start
	for {
		end := dayEnd(start)
		if end.After(w.End) {
			return occs
		}
		occs = append(occs, Occurrence{Start: start, End: end})
		start = nextMidnight(start)
	}
}

// expandWeekly walks the window one calendar day at a time and emits an
// occurrence on every day matching the weekday set, carrying the window's
// start and end times of day. On the window's final calendar day the
// occurrence ends exactly at the window end; on any other day an end that
// does not land strictly after the start is clamped to that day's 23:59:59.
func expandWeekly(w Window, days []task.Weekday) []Occurrence {
	var occs []Occurrence
	for d := dayStart(w.Start); !d.After(w.End); d = d.AddDate(0, 0, 1) {
		if !matchesWeekdays(d, days) {
			continue
		}
		occStart := withClock(d, w.Start)
		if occStart.After(w.End) {
			continue
		}

		var occEnd time.Time
		if sameDay(d, w.End) {
			occEnd = w.End // exact boundary, no clamping
		} else {
			occEnd = withClock(d, w.End)
			if !occEnd.After(occStart) {
				occEnd = dayEnd(d)
			}
		}
		occs = append(occs, Occurrence{Start: occStart, End: occEnd})
	}
	return occs
}

// expandFortnightly is the weekly walk additionally gated on ISO week number
// parity. Unlike expandWeekly it has no exact-boundary case for the window's
// final day: an end not strictly after its start is always clamped to the
// day's 23:59:59.
func expandFortnightly(w Window, days []task.Weekday, parity int) []Occurrence {
	var occs []Occurrence
	for d := dayStart(w.Start); !d.After(w.End); d = d.AddDate(0, 0, 1) {
		if _, week := d.ISOWeek(); week%2 != parity {
			continue
		}
		if !matchesWeekdays(d, days) {
			continue
		}
		occStart := withClock(d, w.Start)
		if occStart.After(w.End) {
			continue
		}

		occEnd := withClock(d, w.End)
		if !occEnd.After(occStart) {
			occEnd = dayEnd(d)
		}
		occs = append(occs, Occurrence{Start: occStart, End: occEnd})
	}
	return occs
}

// expandMonthly emits [start, start+1 month at 23:59:59]; each subsequent
// occurrence starts one calendar month after the prior one, at midnight.
// Same strict upper bound rule as expandDaily.
func expandMonthly(w Window) []Occurrence {
	var occs []Occurrence
	start := w.Start
	for {
		end := dayEnd(start.AddDate(0, 1, 0))
		if end.After(w.End) {
			return occs
		}
		occs = append(occs, Occurrence{Start: start, End: end})
		start = dayStart(start.AddDate(0, 1, 0))
	}
}

func matchesWeekdays(d time.Time, days []task.Weekday) bool {
	if len(days) == 0 {
		return true
	}
	return task.ContainsWeekday(days, task.Weekday(d.Weekday()))
}

// dayStart returns d's calendar day at midnight.
func dayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// dayEnd returns d's calendar day at 23:59:59.
func dayEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

func nextMidnight(d time.Time) time.Time {
	return dayStart(d).AddDate(0, 0, 1)
}

// withClock combines day's calendar date with clock's time of day.
func withClock(day, clock time.Time) time.Time {
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(),
		day.Location(),
	)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
