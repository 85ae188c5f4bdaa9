package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/Paul01001000/spacematch/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) FindClashing(ctx context.Context, spaceID int64, date time.Time, iv domain.Interval) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, spaceID, date, iv)
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityRepository) Insert(ctx context.Context, w *domain.AvailabilityWindow) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) Replace(ctx context.Context, w *domain.AvailabilityWindow, removeIDs []int64) error {
	args := m.Called(ctx, w, removeIDs)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) FindCovering(ctx context.Context, spaceID int64, date *time.Time, iv domain.Interval) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, spaceID, date, iv)
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityRepository) SearchCovering(ctx context.Context, spaceIDs []int64, date *time.Time, iv *domain.Interval, priceMin, priceMax *float64) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, spaceIDs, date, iv, priceMin, priceMax)
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityRepository) ListForSpace(ctx context.Context, spaceID int64, date *time.Time) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, spaceID, date)
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSpaceRepository struct {
	mock.Mock
}

func (m *MockSpaceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpaceRepository) GetByID(ctx context.Context, id int64) (*domain.Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Space), args.Error(1)
}

func (m *MockSpaceRepository) FilterIDs(ctx context.Context, filter repository.SpaceFilter) ([]int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockSpaceRepository) PromotedUntil(ctx context.Context, ids []int64) (map[int64]time.Time, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64]time.Time), args.Error(1)
}

var _ repository.AvailabilityRepository = (*MockAvailabilityRepository)(nil)
var _ repository.SpaceRepository = (*MockSpaceRepository)(nil)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func slot(d, hour, min int) time.Time {
	return time.Date(2026, 3, d, hour, min, 0, 0, time.UTC)
}

func TestAvailabilityService_Submit_NoClash(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	input := SubmitInput{
		SpaceID:   7,
		Date:      day(10),
		StartTime: slot(10, 9, 0),
		EndTime:   slot(10, 12, 0),
		Price:     50,
	}

	mockSpaces.On("Exists", ctx, int64(7)).Return(true, nil).Once()
	mockWindows.On("FindClashing", ctx, int64(7), day(10), domain.NewInterval(input.StartTime, input.EndTime)).
		Return([]domain.AvailabilityWindow{}, nil).Once()
	mockWindows.On("Insert", ctx, mock.AnythingOfType("*domain.AvailabilityWindow")).Return(nil).Once()

	window, err := service.Submit(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, window)
	assert.Equal(t, input.StartTime, window.StartTime)
	assert.Equal(t, input.EndTime, window.EndTime)
	assert.Equal(t, 50.0, window.SpecialPrice)
	assert.True(t, window.IsAvailable)

	mockWindows.AssertExpectations(t)
	mockWindows.AssertNotCalled(t, "Replace")
}

func TestAvailabilityService_Submit_MergesClashingWindows(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	// Existing [09:00,12:00) price 50; incoming [11:00,14:00) price 80.
	existing := domain.AvailabilityWindow{
		ID:           3,
		SpaceID:      7,
		Date:         day(10),
		StartTime:    slot(10, 9, 0),
		EndTime:      slot(10, 12, 0),
		IsAvailable:  true,
		SpecialPrice: 50,
	}
	input := SubmitInput{
		SpaceID:   7,
		Date:      day(10),
		StartTime: slot(10, 11, 0),
		EndTime:   slot(10, 14, 0),
		Price:     80,
	}

	mockSpaces.On("Exists", ctx, int64(7)).Return(true, nil).Once()
	mockWindows.On("FindClashing", ctx, int64(7), day(10), domain.NewInterval(input.StartTime, input.EndTime)).
		Return([]domain.AvailabilityWindow{existing}, nil).Once()
	mockWindows.On("Replace", ctx, mock.AnythingOfType("*domain.AvailabilityWindow"), []int64{3}).Return(nil).Once()

	window, err := service.Submit(ctx, input)

	assert.NoError(t, err)
	assert.Equal(t, slot(10, 9, 0), window.StartTime)
	assert.Equal(t, slot(10, 14, 0), window.EndTime)
	assert.Equal(t, 80.0, window.SpecialPrice)

	mockWindows.AssertExpectations(t)
	mockWindows.AssertNotCalled(t, "Insert")
}

func TestAvailabilityService_Submit_MaxPriceWins(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	existing := []domain.AvailabilityWindow{
		{ID: 1, SpaceID: 7, Date: day(10), StartTime: slot(10, 8, 0), EndTime: slot(10, 10, 0), SpecialPrice: 120},
		{ID: 2, SpaceID: 7, Date: day(10), StartTime: slot(10, 10, 0), EndTime: slot(10, 12, 0), SpecialPrice: 0},
	}
	input := SubmitInput{
		SpaceID:   7,
		Date:      day(10),
		StartTime: slot(10, 9, 0),
		EndTime:   slot(10, 11, 0),
		Price:     60,
	}

	mockSpaces.On("Exists", ctx, int64(7)).Return(true, nil).Once()
	mockWindows.On("FindClashing", ctx, int64(7), day(10), mock.Anything).Return(existing, nil).Once()
	mockWindows.On("Replace", ctx, mock.AnythingOfType("*domain.AvailabilityWindow"), []int64{1, 2}).Return(nil).Once()

	window, err := service.Submit(ctx, input)

	assert.NoError(t, err)
	assert.Equal(t, slot(10, 8, 0), window.StartTime)
	assert.Equal(t, slot(10, 12, 0), window.EndTime)
	assert.Equal(t, 120.0, window.SpecialPrice)

	mockWindows.AssertExpectations(t)
}

func TestAvailabilityService_Submit_ValidationErrors(t *testing.T) {
	service := NewAvailabilityService(&MockAvailabilityRepository{}, &MockSpaceRepository{})
	ctx := context.Background()

	testCases := []struct {
		name        string
		input       SubmitInput
		expectedErr error
	}{
		{
			name: "end before start",
			input: SubmitInput{
				SpaceID:   7,
				Date:      day(10),
				StartTime: slot(10, 12, 0),
				EndTime:   slot(10, 9, 0),
				Price:     50,
			},
			expectedErr: domain.ErrInvalidInterval,
		},
		{
			name: "zero length",
			input: SubmitInput{
				SpaceID:   7,
				Date:      day(10),
				StartTime: slot(10, 9, 0),
				EndTime:   slot(10, 9, 0),
				Price:     50,
			},
			expectedErr: domain.ErrInvalidInterval,
		},
		{
			name: "negative price",
			input: SubmitInput{
				SpaceID:   7,
				Date:      day(10),
				StartTime: slot(10, 9, 0),
				EndTime:   slot(10, 12, 0),
				Price:     -1,
			},
			expectedErr: domain.ErrInvalidPrice,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window, err := service.Submit(ctx, tc.input)
			assert.Nil(t, window)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestAvailabilityService_Submit_UnknownSpace(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	mockSpaces.On("Exists", ctx, int64(99)).Return(false, nil).Once()

	window, err := service.Submit(ctx, SubmitInput{
		SpaceID:   99,
		Date:      day(10),
		StartTime: slot(10, 9, 0),
		EndTime:   slot(10, 12, 0),
	})

	assert.Nil(t, window)
	assert.ErrorIs(t, err, domain.ErrSpaceNotFound)
	mockWindows.AssertNotCalled(t, "FindClashing")
}

func TestAvailabilityService_ExpandRecurring_Weekly(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	input := SubmitInput{
		SpaceID:   7,
		Date:      day(2),
		StartTime: slot(2, 9, 0),
		EndTime:   slot(2, 12, 0),
		Price:     50,
	}

	mockSpaces.On("Exists", ctx, int64(7)).Return(true, nil).Times(3)
	mockWindows.On("FindClashing", ctx, int64(7), mock.Anything, mock.Anything).
		Return([]domain.AvailabilityWindow{}, nil).Times(3)
	mockWindows.On("Insert", ctx, mock.AnythingOfType("*domain.AvailabilityWindow")).Return(nil).Times(3)

	results, err := service.ExpandRecurring(ctx, input, domain.RepeatWeekly, 2)

	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, day(2), results[0].Date)
	assert.Equal(t, day(9), results[1].Date)
	assert.Equal(t, day(16), results[2].Date)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.NotNil(t, r.Window)
	}
	// Time of day stays anchored on the shifted date.
	assert.Equal(t, slot(16, 9, 0), results[2].Window.StartTime)

	mockWindows.AssertExpectations(t)
}

func TestAvailabilityService_ExpandRecurring_Never(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	mockSpaces.On("Exists", ctx, int64(7)).Return(true, nil).Once()
	mockWindows.On("FindClashing", ctx, int64(7), mock.Anything, mock.Anything).
		Return([]domain.AvailabilityWindow{}, nil).Once()
	mockWindows.On("Insert", ctx, mock.Anything).Return(nil).Once()

	results, err := service.ExpandRecurring(ctx, SubmitInput{
		SpaceID:   7,
		Date:      day(2),
		StartTime: slot(2, 9, 0),
		EndTime:   slot(2, 12, 0),
	}, domain.RepeatNever, 5)

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	mockWindows.AssertExpectations(t)
}

func TestAvailabilityService_ExpandRecurring_FailureDoesNotAbortBatch(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	mockSpaces := &MockSpaceRepository{}
	service := NewAvailabilityService(mockWindows, mockSpaces)

	ctx := context.Background()
	storeErr := errors.New("insert failed")

	mockSpaces.On("Exists", ctx, int64(7)).Return(true, nil).Times(3)
	mockWindows.On("FindClashing", ctx, int64(7), mock.Anything, mock.Anything).
		Return([]domain.AvailabilityWindow{}, nil).Times(3)
	mockWindows.On("Insert", ctx, mock.Anything).Return(nil).Once()
	mockWindows.On("Insert", ctx, mock.Anything).Return(storeErr).Once()
	mockWindows.On("Insert", ctx, mock.Anything).Return(nil).Once()

	results, err := service.ExpandRecurring(ctx, SubmitInput{
		SpaceID:   7,
		Date:      day(2),
		StartTime: slot(2, 9, 0),
		EndTime:   slot(2, 12, 0),
	}, domain.RepeatDaily, 2)

	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, storeErr)
	assert.NoError(t, results[2].Err)

	mockWindows.AssertExpectations(t)
}

func TestAvailabilityService_ExpandRecurring_InvalidPattern(t *testing.T) {
	service := NewAvailabilityService(&MockAvailabilityRepository{}, &MockSpaceRepository{})

	results, err := service.ExpandRecurring(context.Background(), SubmitInput{}, domain.RepeatPattern("fortnightly"), 2)

	assert.Nil(t, results)
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)
}

func TestAvailabilityService_Remove(t *testing.T) {
	mockWindows := &MockAvailabilityRepository{}
	service := NewAvailabilityService(mockWindows, &MockSpaceRepository{})

	ctx := context.Background()
	mockWindows.On("Delete", ctx, int64(5)).Return(domain.ErrWindowNotFound).Once()

	err := service.Remove(ctx, 5)

	assert.ErrorIs(t, err, domain.ErrWindowNotFound)
	mockWindows.AssertExpectations(t)
}
