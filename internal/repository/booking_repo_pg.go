package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// ReserveSlot runs the whole check-then-create sequence in one
	// transaction and fills in the server-side price, id and timestamps.
	ReserveSlot(ctx context.Context, booking *domain.Booking) error
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error)
	FindOverlapping(ctx context.Context, spaceID int64, date time.Time, iv domain.Interval) ([]domain.Booking, error)
	FindBusySpaceIDs(ctx context.Context, spaceIDs []int64, date time.Time, iv domain.Interval) ([]int64, error)
	DeleteExpiredPending(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, space_id, user_id, token, booking_date, start_time, end_time, total_price, status, created_at, updated_at`

// Overlap predicate for bookings in statuses $5 against a requested [$3, $4).
// Boundary-touching at a booking's very start or end is tolerated, so
// back-to-back bookings are allowed; any interior overlap matches.
const bookingOverlapWhere = `space_id = $1 AND booking_date = $2
	AND status = ANY($5)
	AND ((start_time <= $3 AND end_time > $3)
	  OR (start_time < $4 AND end_time >= $4)
	  OR (start_time >= $3 AND end_time <= $4))`

func activeStatusList() []string {
	statuses := make([]string, len(domain.ActiveBookingStatuses))
	for i, s := range domain.ActiveBookingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func scanBookingRow(row pgx.Row, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.SpaceID, &b.UserID, &b.Token, &b.BookingDate, &b.StartTime, &b.EndTime, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBookingRow(rows, &b); err != nil {
			return nil, asStoreError(err)
		}
		bookings = append(bookings, b)
	}
	return bookings, asStoreError(rows.Err())
}

func (r *PGBookingRepository) ReserveSlot(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return asStoreError(err)
	}
	defer tx.Rollback(ctx)

	conflict := &domain.ConflictError{
		SpaceID: booking.SpaceID,
		Date:    booking.BookingDate,
		Start:   booking.StartTime,
		End:     booking.EndTime,
	}

	// Lock the covering window row so concurrent reserves on the same slot
	// serialize here even when the advisory cache lock is unavailable.
	var price float64
	err = tx.QueryRow(ctx, `SELECT special_price FROM availability_windows
		WHERE space_id=$1 AND date=$2 AND is_available
		  AND start_time <= $3 AND end_time >= $4
		ORDER BY start_time
		LIMIT 1
		FOR UPDATE`, booking.SpaceID, booking.BookingDate, booking.StartTime, booking.EndTime).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conflict
		}
		return asStoreError(err)
	}

	var overlaps bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE `+bookingOverlapWhere+`)`,
		booking.SpaceID, booking.BookingDate, booking.StartTime, booking.EndTime, activeStatusList()).Scan(&overlaps)
	if err != nil {
		return asStoreError(err)
	}
	if overlaps {
		return conflict
	}

	booking.Status = domain.BookingStatusPendingPayment
	booking.TotalPrice = price
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (space_id, user_id, token, booking_date, start_time, end_time, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		booking.SpaceID, booking.UserID, booking.Token, booking.BookingDate, booking.StartTime, booking.EndTime, booking.TotalPrice, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return asStoreError(err)
	}

	return asStoreError(tx.Commit(ctx))
}

func (r *PGBookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE token=$1`, token)
	var b domain.Booking
	if err := scanBookingRow(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, asStoreError(err)
	}
	return &b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, token string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE token=$2 RETURNING `+bookingColumns, status, token)
	var b domain.Booking
	if err := scanBookingRow(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, asStoreError(err)
	}
	return &b, nil
}

func (r *PGBookingRepository) FindOverlapping(ctx context.Context, spaceID int64, date time.Time, iv domain.Interval) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+bookingOverlapWhere+` ORDER BY start_time`,
		spaceID, date, iv.Start, iv.End, activeStatusList())
	if err != nil {
		return nil, asStoreError(err)
	}
	return scanBookings(rows)
}

// FindBusySpaceIDs is the bulk exclusion used by search: which candidate
// spaces already carry an active booking blocking the interval.
func (r *PGBookingRepository) FindBusySpaceIDs(ctx context.Context, spaceIDs []int64, date time.Time, iv domain.Interval) ([]int64, error) {
	if len(spaceIDs) == 0 {
		return []int64{}, nil
	}

	rows, err := r.db.Query(ctx, `SELECT DISTINCT space_id FROM bookings
		WHERE space_id = ANY($1) AND booking_date = $2
		  AND status = ANY($5)
		  AND ((start_time <= $3 AND end_time > $3)
		    OR (start_time < $4 AND end_time >= $4)
		    OR (start_time >= $3 AND end_time <= $4))`, spaceIDs, date, iv.Start, iv.End, activeStatusList())
	if err != nil {
		return nil, asStoreError(err)
	}
	defer rows.Close()

	busy := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, asStoreError(err)
		}
		busy = append(busy, id)
	}
	return busy, asStoreError(rows.Err())
}

// DeleteExpiredPending removes pending_payment bookings created before the
// deadline and returns them so the caller can publish expiry events.
// Confirmed and cancelled bookings are never touched regardless of age.
func (r *PGBookingRepository) DeleteExpiredPending(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM bookings
		WHERE status=$1 AND created_at <= $2
		RETURNING `+bookingColumns, domain.BookingStatusPendingPayment, deadline)
	if err != nil {
		return nil, asStoreError(err)
	}
	return scanBookings(rows)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
