package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/Paul01001000/spacematch/internal/kafka"
	"github.com/Paul01001000/spacematch/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CheckAvailability(ctx context.Context, spaceID int64, date time.Time, start, end time.Time) (Availability, error)
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, token string) (*domain.Booking, error)
	SweepExpiredPending(ctx context.Context) (int, error)
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, spaceID int64, date time.Time, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, spaceID int64, date time.Time) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// publishRetries bounds the best-effort event publishes; a final failure is
// logged, never surfaced to the caller.
const publishRetries = 3

type BookingService struct {
	bookings           repository.BookingRepository
	windows            repository.AvailabilityRepository
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	pendingRetention   time.Duration
	storeRetries       int
}

// Availability is the conflict checker's answer: whether the interval is
// bookable and at what window price.
type Availability struct {
	Free  bool    `json:"free"`
	Price float64 `json:"price"`
}

type ReserveInput struct {
	SpaceID       int64     `json:"space_id"`
	UserID        int64     `json:"user_id"`
	Date          time.Time `json:"date"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DeclaredPrice float64   `json:"declared_price"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithStoreRetries(retries int) BookingServiceOption {
	return func(s *BookingService) {
		if retries > 0 {
			s.storeRetries = retries
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	windows repository.AvailabilityRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	lockTTL, pendingRetention time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:         bookings,
		windows:          windows,
		cache:            cache,
		producer:         producer,
		bookingTopic:     bookingTopic,
		lockTTL:          lockTTL,
		pendingRetention: pendingRetention,
		storeRetries:     3,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CheckAvailability answers whether the interval is fully covered by an
// available window and free of active bookings. The price always comes from
// the covering window; when several cover (should not happen post-merge) the
// first one wins.
func (s *BookingService) CheckAvailability(ctx context.Context, spaceID int64, date time.Time, start, end time.Time) (Availability, error) {
	iv := domain.NewInterval(start, end)
	if !iv.Valid() {
		return Availability{}, domain.ErrInvalidInterval
	}

	covering, err := s.windows.FindCovering(ctx, spaceID, &date, iv)
	if err != nil {
		return Availability{}, err
	}
	if len(covering) == 0 {
		return Availability{Free: false, Price: 0}, nil
	}

	overlapping, err := s.bookings.FindOverlapping(ctx, spaceID, date, iv)
	if err != nil {
		return Availability{}, err
	}

	return Availability{
		Free:  len(overlapping) == 0,
		Price: covering[0].SpecialPrice,
	}, nil
}

// Reserve performs the atomic check-then-create. The conflict check re-runs
// inside the repository transaction; the cache lock on (space, date) keeps
// concurrent reserves from even reaching it. The price is recomputed from
// the covering window server-side; a mismatched declared price is only
// logged, never trusted.
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	iv := domain.NewInterval(input.StartTime, input.EndTime)
	if !iv.Valid() {
		return nil, domain.ErrInvalidInterval
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireBookingLock(ctx, input.SpaceID, input.Date, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ConflictError{SpaceID: input.SpaceID, Date: input.Date, Start: input.StartTime, End: input.EndTime}
		}
		locked = true
	}
	// The release must reach redis even when the caller's context is already
	// cancelled; otherwise the key blocks the (space, date) until its TTL.
	defer func() {
		if locked {
			if err := s.cache.ReleaseBookingLock(context.WithoutCancel(ctx), input.SpaceID, input.Date); err != nil {
				log.Printf("WARNING: failed to release booking lock for space %d on %s: %v",
					input.SpaceID, input.Date.Format("2006-01-02"), err)
			}
		}
	}()

	booking := &domain.Booking{
		SpaceID:     input.SpaceID,
		UserID:      input.UserID,
		Token:       uuid.NewString(),
		BookingDate: input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}

	if err := s.reserveWithRetry(ctx, booking); err != nil {
		return nil, err
	}

	if input.DeclaredPrice != 0 && input.DeclaredPrice != booking.TotalPrice {
		log.Printf("declared price %.2f for space %d ignored, window price is %.2f",
			input.DeclaredPrice, booking.SpaceID, booking.TotalPrice)
	}

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		log.Printf("WARNING: failed to publish booking_created event for booking %s: %v", booking.Token, err)
	}
	return booking, nil
}

// reserveWithRetry retries transient store failures with linear backoff up
// to the serialization boundary. Conflicts and validation failures surface
// immediately.
func (s *BookingService) reserveWithRetry(ctx context.Context, booking *domain.Booking) error {
	var lastErr error
	for attempt := 0; attempt < s.storeRetries; attempt++ {
		err := s.bookings.ReserveSlot(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}

		lastErr = err
		log.Printf("reserve attempt %d for space %d failed: %v", attempt+1, booking.SpaceID, err)
		if attempt < s.storeRetries-1 {
			select {
			case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (s *BookingService) ConfirmBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingStatusPendingPayment {
		return nil, errors.New("booking is not pending payment")
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_confirmed", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_confirmed event for booking %s: %v", updated.Token, err)
	}
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, token string) (*domain.Booking, error) {
	current, err := s.bookings.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Finalized() {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, token, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "booking_cancelled", updated); err != nil {
		log.Printf("WARNING: failed to publish booking_cancelled event for booking %s: %v", updated.Token, err)
	}
	return updated, nil
}

// SweepExpiredPending purges pending_payment bookings older than the
// retention window. Event publishing is per-record best-effort: a failure
// is logged and the sweep moves on.
func (s *BookingService) SweepExpiredPending(ctx context.Context) (int, error) {
	deadline := time.Now().Add(-s.pendingRetention)
	expired, err := s.bookings.DeleteExpiredPending(ctx, deadline)
	if err != nil {
		return 0, err
	}
	for _, b := range expired {
		if err := s.publish(ctx, "booking_expired", &b); err != nil {
			log.Printf("sweep: failed to publish booking_expired for %s: %v", b.Token, err)
		}
	}
	return len(expired), nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		Token:      booking.Token,
		SpaceID:    booking.SpaceID,
		UserID:     booking.UserID,
		Date:       booking.BookingDate,
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		TotalPrice: booking.TotalPrice,
		Status:     string(booking.Status),
	}
	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, booking.Token, event, publishRetries); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.Token, event, publishRetries)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
