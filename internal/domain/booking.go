package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCancelled      BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that occupy a slot for conflict
// checks. Cancelled bookings free their interval.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPendingPayment,
	BookingStatusConfirmed,
}

type Booking struct {
	ID          int64
	SpaceID     int64
	UserID      int64
	Token       string
	BookingDate time.Time
	StartTime   time.Time
	EndTime     time.Time
	TotalPrice  float64
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

func (b *Booking) Finalized() bool {
	return b.Status == BookingStatusCancelled
}
