// Package availability decides whether a candidate date range is free
// given the existing reservations of a property. All checks are pure
// date arithmetic at day granularity; persistence and locking are the
// service layer's concern.
package availability

import (
	"time"

	"qota/pkg/model"
)

// DayStart normalizes a timestamp to midnight UTC. Occupancy is tracked
// per day, so time-of-day never influences any availability decision.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights between start and end at day
// granularity. The end day is the checkout day and is not counted.
func Nights(start, end time.Time) int {
	return int(DayStart(end).Sub(DayStart(start)).Hours() / 24)
}

// Overlaps reports whether the half-open day intervals [start1, end1)
// and [start2, end2) share at least one occupied day. Because the
// intervals are half-open, one reservation's checkout day may serve as
// the next reservation's check-in day.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return DayStart(start1).Before(DayStart(end2)) && DayStart(end1).After(DayStart(start2))
}

// IsRangeFree reports whether [candidateStart, candidateEnd) is free
// given the existing reservations. Cancelled reservations do not
// occupy their range. A candidate that starts before today at midnight
// is never free.
func IsRangeFree(existing []*model.Reservation, candidateStart, candidateEnd, today time.Time) bool {
	if DayStart(candidateStart).Before(DayStart(today)) {
		return false
	}
	return FindConflict(existing, candidateStart, candidateEnd) == nil
}

// FindConflict returns the first non-cancelled reservation whose range
// overlaps [candidateStart, candidateEnd), or nil if none does.
func FindConflict(existing []*model.Reservation, candidateStart, candidateEnd time.Time) *model.Reservation {
	for _, r := range existing {
		if !r.Active() {
			continue
		}
		if Overlaps(r.StartDate, r.EndDate, candidateStart, candidateEnd) {
			return r
		}
	}
	return nil
}
