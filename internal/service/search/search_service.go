package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/Paul01001000/spacematch/internal/repository"
)

type SearchUseCase interface {
	Search(ctx context.Context, input SearchInput) ([]domain.SpaceMatch, error)
}

type Cache interface {
	GetMatches(ctx context.Context, key string) ([]domain.SpaceMatch, error)
	SetMatches(ctx context.Context, key string, matches []domain.SpaceMatch) error
}

// SearchInput carries the raw query. Date is "2006-01-02", From/To are
// "15:04"; values that fail to parse drop the corresponding filter stage
// instead of failing the pipeline.
type SearchInput struct {
	PostalCode string
	Category   string
	Date       string
	From       string
	To         string
	PriceMin   *float64
	PriceMax   *float64
}

type SearchService struct {
	spaces   repository.SpaceRepository
	windows  repository.AvailabilityRepository
	bookings repository.BookingRepository
	cache    Cache
	now      func() time.Time
}

func NewSearchService(spaces repository.SpaceRepository, windows repository.AvailabilityRepository, bookings repository.BookingRepository, cache Cache) *SearchService {
	return &SearchService{
		spaces:   spaces,
		windows:  windows,
		bookings: bookings,
		cache:    cache,
		now:      time.Now,
	}
}

// Search narrows candidates stage by stage: attribute filter, covering
// available windows with price bounds, booking-conflict exclusion, then a
// stable promoted-first ordering. An empty stage result is an empty result
// set, not an error.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]domain.SpaceMatch, error) {
	key := cacheKey(input)
	if s.cache != nil {
		if cached, err := s.cache.GetMatches(ctx, key); err == nil && cached != nil {
			return cached, nil
		}
	}

	ids, err := s.spaces.FilterIDs(ctx, repository.SpaceFilter{
		PostalCode: input.PostalCode,
		Category:   input.Category,
		Active:     true,
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.SpaceMatch{}, nil
	}

	date, iv := s.timeFilter(input)

	windows, err := s.windows.SearchCovering(ctx, ids, date, iv, input.PriceMin, input.PriceMax)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []domain.SpaceMatch{}, nil
	}

	// First matched window per space wins; post-merge there is normally
	// exactly one.
	prices := make(map[int64]float64, len(windows))
	for _, w := range windows {
		if _, seen := prices[w.SpaceID]; !seen {
			prices[w.SpaceID] = w.SpecialPrice
		}
	}

	busy := make(map[int64]bool)
	if date != nil && iv != nil {
		busyIDs, err := s.bookings.FindBusySpaceIDs(ctx, ids, *date, *iv)
		if err != nil {
			return nil, err
		}
		for _, id := range busyIDs {
			busy[id] = true
		}
	}

	matched := make([]int64, 0, len(prices))
	for _, id := range ids {
		if _, ok := prices[id]; ok && !busy[id] {
			matched = append(matched, id)
		}
	}

	promoted, err := s.spaces.PromotedUntil(ctx, matched)
	if err != nil {
		return nil, err
	}

	today := s.now().Truncate(24 * time.Hour)
	matches := make([]domain.SpaceMatch, 0, len(matched))
	for _, id := range matched {
		matches = append(matches, domain.SpaceMatch{
			SpaceID:    id,
			Price:      prices[id],
			IsPromoted: !promoted[id].Before(today),
		})
	}

	// Promoted float to the top, everything else keeps its prior order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].IsPromoted && !matches[j].IsPromoted
	})

	if s.cache != nil {
		if err := s.cache.SetMatches(ctx, key, matches); err != nil {
			log.Printf("search cache set failed: %v", err)
		}
	}
	return matches, nil
}

// timeFilter builds the date and absolute-interval filters from the raw
// query. A date that fails to parse means no time filter at all; a malformed
// from/to keeps the date filter but drops the time restriction.
func (s *SearchService) timeFilter(input SearchInput) (*time.Time, *domain.Interval) {
	if input.Date == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		log.Printf("search: ignoring unparseable date %q", input.Date)
		return nil, nil
	}

	if input.From == "" || input.To == "" {
		return &day, nil
	}
	from, errFrom := time.Parse("15:04", input.From)
	to, errTo := time.Parse("15:04", input.To)
	if errFrom != nil || errTo != nil {
		log.Printf("search: ignoring unparseable time range %q-%q", input.From, input.To)
		return &day, nil
	}

	iv := domain.NewInterval(combine(day, from), combine(day, to))
	if !iv.Valid() {
		return &day, nil
	}
	return &day, &iv
}

func combine(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

func cacheKey(input SearchInput) string {
	min, max := "", ""
	if input.PriceMin != nil {
		min = fmt.Sprintf("%.2f", *input.PriceMin)
	}
	if input.PriceMax != nil {
		max = fmt.Sprintf("%.2f", *input.PriceMax)
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s", input.PostalCode, input.Category, input.Date, input.From, input.To, min, max)
}

var _ SearchUseCase = (*SearchService)(nil)
