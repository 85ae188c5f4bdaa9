package availability

import (
	"context"
	"log"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/Paul01001000/spacematch/internal/repository"
)

type AvailabilityUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.AvailabilityWindow, error)
	ExpandRecurring(ctx context.Context, input SubmitInput, pattern domain.RepeatPattern, count int) ([]OccurrenceResult, error)
	ListForSpace(ctx context.Context, spaceID int64, date *time.Time) ([]domain.AvailabilityWindow, error)
	Remove(ctx context.Context, windowID int64) error
}

type AvailabilityService struct {
	windows repository.AvailabilityRepository
	spaces  repository.SpaceRepository
}

type SubmitInput struct {
	SpaceID   int64     `json:"space_id"`
	Date      time.Time `json:"date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Price     float64   `json:"price"`
}

// OccurrenceResult is the per-occurrence outcome of a recurring expansion.
// One failing occurrence never aborts the batch.
type OccurrenceResult struct {
	Date   time.Time                  `json:"date"`
	Window *domain.AvailabilityWindow `json:"window,omitempty"`
	Err    error                      `json:"-"`
}

func NewAvailabilityService(windows repository.AvailabilityRepository, spaces repository.SpaceRepository) *AvailabilityService {
	return &AvailabilityService{windows: windows, spaces: spaces}
}

// Submit applies the merge-on-insert policy: windows clashing with the
// incoming one (touching endpoints included) are folded into a single
// replacement spanning min(starts)..max(ends) with the max price. Windows
// not touching the submission are left alone, so repeated submissions
// converge toward a minimal non-overlapping set per space/date.
func (s *AvailabilityService) Submit(ctx context.Context, input SubmitInput) (*domain.AvailabilityWindow, error) {
	iv := domain.NewInterval(input.StartTime, input.EndTime)
	if !iv.Valid() {
		return nil, domain.ErrInvalidInterval
	}
	if input.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	exists, err := s.spaces.Exists(ctx, input.SpaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrSpaceNotFound
	}

	window := &domain.AvailabilityWindow{
		SpaceID:      input.SpaceID,
		Date:         input.Date,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		IsAvailable:  true,
		SpecialPrice: input.Price,
	}

	clashing, err := s.windows.FindClashing(ctx, input.SpaceID, input.Date, iv)
	if err != nil {
		return nil, err
	}
	if len(clashing) == 0 {
		if err := s.windows.Insert(ctx, window); err != nil {
			return nil, err
		}
		return window, nil
	}

	removeIDs := make([]int64, 0, len(clashing))
	for _, existing := range clashing {
		if existing.StartTime.Before(window.StartTime) {
			window.StartTime = existing.StartTime
		}
		if existing.EndTime.After(window.EndTime) {
			window.EndTime = existing.EndTime
		}
		if existing.SpecialPrice > window.SpecialPrice {
			window.SpecialPrice = existing.SpecialPrice
		}
		removeIDs = append(removeIDs, existing.ID)
	}

	if err := s.windows.Replace(ctx, window, removeIDs); err != nil {
		return nil, err
	}
	return window, nil
}

// ExpandRecurring submits the pattern as count additional occurrences beyond
// the first, each shifted by the pattern's fixed day offset and anchored to
// the same time of day. Occurrences go through the merge independently,
// best-effort: a failure is logged and recorded, the rest still run.
func (s *AvailabilityService) ExpandRecurring(ctx context.Context, input SubmitInput, pattern domain.RepeatPattern, count int) ([]OccurrenceResult, error) {
	stepDays, ok := pattern.StepDays()
	if !ok {
		return nil, domain.ErrInvalidPattern
	}
	if count < 0 {
		count = 0
	}
	if pattern == domain.RepeatNever {
		count = 0
	}

	results := make([]OccurrenceResult, 0, count+1)
	for i := 0; i <= count; i++ {
		shift := i * stepDays
		occurrence := SubmitInput{
			SpaceID:   input.SpaceID,
			Date:      input.Date.AddDate(0, 0, shift),
			StartTime: input.StartTime.AddDate(0, 0, shift),
			EndTime:   input.EndTime.AddDate(0, 0, shift),
			Price:     input.Price,
		}

		window, err := s.Submit(ctx, occurrence)
		if err != nil {
			log.Printf("recurring occurrence %d for space %d on %s failed: %v",
				i, input.SpaceID, occurrence.Date.Format("2006-01-02"), err)
		}
		results = append(results, OccurrenceResult{Date: occurrence.Date, Window: window, Err: err})
	}
	return results, nil
}

func (s *AvailabilityService) ListForSpace(ctx context.Context, spaceID int64, date *time.Time) ([]domain.AvailabilityWindow, error) {
	exists, err := s.spaces.Exists(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrSpaceNotFound
	}
	return s.windows.ListForSpace(ctx, spaceID, date)
}

func (s *AvailabilityService) Remove(ctx context.Context, windowID int64) error {
	return s.windows.Delete(ctx, windowID)
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
