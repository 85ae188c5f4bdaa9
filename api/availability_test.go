package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/Paul01001000/spacematch/internal/service/availability"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAvailabilityUseCase struct {
	mock.Mock
}

func (m *MockAvailabilityUseCase) Submit(ctx context.Context, input availability.SubmitInput) (*domain.AvailabilityWindow, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityUseCase) ExpandRecurring(ctx context.Context, input availability.SubmitInput, pattern domain.RepeatPattern, count int) ([]availability.OccurrenceResult, error) {
	args := m.Called(ctx, input, pattern, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]availability.OccurrenceResult), args.Error(1)
}

func (m *MockAvailabilityUseCase) ListForSpace(ctx context.Context, spaceID int64, date *time.Time) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, spaceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityUseCase) Remove(ctx context.Context, windowID int64) error {
	args := m.Called(ctx, windowID)
	return args.Error(0)
}

var _ availability.AvailabilityUseCase = (*MockAvailabilityUseCase)(nil)

func TestAvailabilityHandler_submit(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(submitAvailabilityRequest{
		SpaceID:   7,
		Date:      "2026-03-10",
		StartTime: "2026-03-10T09:00:00Z",
		EndTime:   "2026-03-10T17:00:00Z",
		Price:     50,
	})
	c.Request = httptest.NewRequest("POST", "/availability", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	stored := &domain.AvailabilityWindow{
		ID:           1,
		SpaceID:      7,
		Date:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC),
		IsAvailable:  true,
		SpecialPrice: 50,
	}

	mockService.On("Submit", c.Request.Context(), mock.AnythingOfType("availability.SubmitInput")).Return(stored, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response windowResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), response.ID)
	assert.Equal(t, 50.0, response.Price)
	assert.True(t, response.IsAvailable)

	mockService.AssertExpectations(t)
}

func TestAvailabilityHandler_submit_invalidInterval(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(submitAvailabilityRequest{
		SpaceID:   7,
		Date:      "2026-03-10",
		StartTime: "2026-03-10T17:00:00Z",
		EndTime:   "2026-03-10T09:00:00Z",
		Price:     50,
	})
	c.Request = httptest.NewRequest("POST", "/availability", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Submit", c.Request.Context(), mock.Anything).Return(nil, domain.ErrInvalidInterval)

	handler.submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandler_submitRecurring(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]interface{}{
		"space_id":   7,
		"date":       "2026-03-02",
		"start_time": "2026-03-02T09:00:00Z",
		"end_time":   "2026-03-02T12:00:00Z",
		"price":      50,
		"pattern":    "weekly",
		"count":      2,
	})
	c.Request = httptest.NewRequest("POST", "/availability/recurring", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	results := []availability.OccurrenceResult{
		{Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Window: &domain.AvailabilityWindow{ID: 1}},
		{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Window: &domain.AvailabilityWindow{ID: 2}},
		{Date: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), Err: domain.ErrStoreUnavailable},
	}

	mockService.On("ExpandRecurring", c.Request.Context(), mock.Anything, domain.RepeatWeekly, 2).Return(results, nil)

	handler.submitRecurring(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Occurrences []occurrenceResponse `json:"occurrences"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Occurrences, 3)
	assert.Empty(t, response.Occurrences[0].Error)
	assert.NotEmpty(t, response.Occurrences[2].Error)

	mockService.AssertExpectations(t)
}

func TestAvailabilityHandler_submitRecurring_badPattern(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := []byte(`{"space_id":7,"date":"2026-03-02","start_time":"2026-03-02T09:00:00Z","end_time":"2026-03-02T12:00:00Z","pattern":"yearly","count":2}`)
	c.Request = httptest.NewRequest("POST", "/availability/recurring", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.submitRecurring(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ExpandRecurring")
}

func TestAvailabilityHandler_remove(t *testing.T) {
	mockService := &MockAvailabilityUseCase{}
	handler := NewAvailabilityHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Request = httptest.NewRequest("DELETE", "/availability/5", nil)

	mockService.On("Remove", c.Request.Context(), int64(5)).Return(domain.ErrWindowNotFound)

	handler.remove(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
