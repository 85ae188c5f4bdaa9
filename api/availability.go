package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/Paul01001000/spacematch/internal/service/availability"
	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	service availability.AvailabilityUseCase
}

type submitAvailabilityRequest struct {
	SpaceID   int64   `json:"space_id" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Price     float64 `json:"price"`
}

type recurringAvailabilityRequest struct {
	submitAvailabilityRequest
	Pattern string `json:"pattern" binding:"required,oneof=never daily weekly biweekly monthly"`
	Count   int    `json:"count" binding:"min=0"`
}

type windowResponse struct {
	ID          int64   `json:"id"`
	SpaceID     int64   `json:"space_id"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	IsAvailable bool    `json:"is_available"`
	Price       float64 `json:"price"`
}

type occurrenceResponse struct {
	Date   string          `json:"date"`
	Window *windowResponse `json:"window,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func NewAvailabilityHandler(service availability.AvailabilityUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.POST("/recurring", h.submitRecurring)
	router.GET("/", h.list)
	router.DELETE("/:id", h.remove)
}

func (h *AvailabilityHandler) submit(c *gin.Context) {
	var req submitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := h.service.Submit(c.Request.Context(), input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toWindowResponse(window))
}

func (h *AvailabilityHandler) submitRecurring(c *gin.Context) {
	var req recurringAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.service.ExpandRecurring(c.Request.Context(), input, domain.RepeatPattern(req.Pattern), req.Count)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	occurrences := make([]occurrenceResponse, 0, len(results))
	for _, r := range results {
		occ := occurrenceResponse{Date: r.Date.Format("2006-01-02")}
		if r.Window != nil {
			resp := toWindowResponse(r.Window)
			occ.Window = &resp
		}
		if r.Err != nil {
			occ.Error = r.Err.Error()
		}
		occurrences = append(occurrences, occ)
	}
	c.JSON(http.StatusCreated, gin.H{"occurrences": occurrences})
}

func (h *AvailabilityHandler) list(c *gin.Context) {
	spaceID, err := strconv.ParseInt(c.Query("space_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space_id"})
		return
	}

	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		date = &parsed
	}

	windows, err := h.service.ListForSpace(c.Request.Context(), spaceID, date)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]windowResponse, 0, len(windows))
	for i := range windows {
		out = append(out, toWindowResponse(&windows[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AvailabilityHandler) remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (r submitAvailabilityRequest) toInput() (availability.SubmitInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return availability.SubmitInput{}, err
	}
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return availability.SubmitInput{}, err
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return availability.SubmitInput{}, err
	}
	return availability.SubmitInput{
		SpaceID:   r.SpaceID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Price:     r.Price,
	}, nil
}

func toWindowResponse(w *domain.AvailabilityWindow) windowResponse {
	return windowResponse{
		ID:          w.ID,
		SpaceID:     w.SpaceID,
		Date:        w.Date.Format("2006-01-02"),
		StartTime:   w.StartTime.Format(time.RFC3339),
		EndTime:     w.EndTime.Format(time.RFC3339),
		IsAvailable: w.IsAvailable,
		Price:       w.SpecialPrice,
	}
}
