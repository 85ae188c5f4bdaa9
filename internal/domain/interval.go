package domain

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Clashes reports whether two intervals could clash for merging purposes.
// Touching endpoints count as a clash, so back-to-back windows fold into one.
func (i Interval) Clashes(other Interval) bool {
	return !i.Start.After(other.End) && !other.Start.After(i.End)
}

// Covers reports whether i fully contains other.
func (i Interval) Covers(other Interval) bool {
	return !i.Start.After(other.Start) && !i.End.Before(other.End)
}

// Blocks reports whether an existing booking over i prevents a new booking
// over requested. Touching at the boundaries is allowed (back-to-back
// bookings), any interior overlap is not.
func (i Interval) Blocks(requested Interval) bool {
	if !i.Start.After(requested.Start) && i.End.After(requested.Start) {
		return true
	}
	if i.Start.Before(requested.End) && !i.End.Before(requested.End) {
		return true
	}
	if !i.Start.Before(requested.Start) && !i.End.After(requested.End) {
		return true
	}
	return false
}
