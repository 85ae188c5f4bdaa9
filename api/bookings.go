package api

import (
	"net/http"
	"time"

	"github.com/Paul01001000/spacematch/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type reserveRequest struct {
	SpaceID   int64   `json:"space_id" binding:"required"`
	UserID    int64   `json:"user_id" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   string  `json:"end_time" binding:"required"`
	Price     float64 `json:"price"`
}

type bookingResponse struct {
	Token      string  `json:"token"`
	Status     string  `json:"status"`
	SpaceID    int64   `json:"space_id"`
	UserID     int64   `json:"user_id"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	TotalPrice float64 `json:"total_price"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/check", h.check)
	router.PUT("/:token", h.confirm)
	router.DELETE("/:token", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Reserve(c.Request.Context(), input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		Token:      created.Token,
		Status:     string(created.Status),
		SpaceID:    created.SpaceID,
		UserID:     created.UserID,
		Date:       created.BookingDate.Format("2006-01-02"),
		StartTime:  created.StartTime.Format(time.RFC3339),
		EndTime:    created.EndTime.Format(time.RFC3339),
		TotalPrice: created.TotalPrice,
	})
}

func (h *BookingHandler) check(c *gin.Context) {
	spaceID, err := parseID(c.Query("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space_id"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	start, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time"})
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), spaceID, date, start, end)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	token := c.Param("token")
	confirmed, err := h.service.ConfirmBooking(c.Request.Context(), token)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bookingResponse{
		Token:      confirmed.Token,
		Status:     string(confirmed.Status),
		SpaceID:    confirmed.SpaceID,
		UserID:     confirmed.UserID,
		Date:       confirmed.BookingDate.Format("2006-01-02"),
		StartTime:  confirmed.StartTime.Format(time.RFC3339),
		EndTime:    confirmed.EndTime.Format(time.RFC3339),
		TotalPrice: confirmed.TotalPrice,
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	token := c.Param("token")
	cancelled, err := h.service.CancelBooking(c.Request.Context(), token)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, bookingResponse{
		Token:      cancelled.Token,
		Status:     string(cancelled.Status),
		SpaceID:    cancelled.SpaceID,
		UserID:     cancelled.UserID,
		Date:       cancelled.BookingDate.Format("2006-01-02"),
		StartTime:  cancelled.StartTime.Format(time.RFC3339),
		EndTime:    cancelled.EndTime.Format(time.RFC3339),
		TotalPrice: cancelled.TotalPrice,
	})
}

func (r reserveRequest) toInput() (booking.ReserveInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return booking.ReserveInput{}, err
	}
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return booking.ReserveInput{}, err
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return booking.ReserveInput{}, err
	}
	return booking.ReserveInput{
		SpaceID:       r.SpaceID,
		UserID:        r.UserID,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		DeclaredPrice: r.Price,
	}, nil
}
