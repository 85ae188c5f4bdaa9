package domain

import "time"

// AvailabilityWindow is a published time range during which a space may be
// booked. Stored windows for one space never overlap: overlapping submissions
// are folded into a single replacement window before persistence.
type AvailabilityWindow struct {
	ID           int64
	SpaceID      int64
	Date         time.Time
	StartTime    time.Time
	EndTime      time.Time
	IsAvailable  bool
	SpecialPrice float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (w *AvailabilityWindow) Interval() Interval {
	return Interval{Start: w.StartTime, End: w.EndTime}
}

type RepeatPattern string

const (
	RepeatNever    RepeatPattern = "never"
	RepeatDaily    RepeatPattern = "daily"
	RepeatWeekly   RepeatPattern = "weekly"
	RepeatBiweekly RepeatPattern = "biweekly"
	RepeatMonthly  RepeatPattern = "monthly"
)

// StepDays returns the occurrence offset in days. Monthly is a fixed 28-day
// step, not calendar-month aware.
func (p RepeatPattern) StepDays() (int, bool) {
	switch p {
	case RepeatNever:
		return 0, true
	case RepeatDaily:
		return 1, true
	case RepeatWeekly:
		return 7, true
	case RepeatBiweekly:
		return 14, true
	case RepeatMonthly:
		return 28, true
	default:
		return 0, false
	}
}
