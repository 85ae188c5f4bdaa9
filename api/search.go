package api

import (
	"net/http"
	"strconv"

	"github.com/Paul01001000/spacematch/internal/service/search"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchUseCase
}

func NewSearchHandler(service search.SearchUseCase) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.search)
}

func (h *SearchHandler) search(c *gin.Context) {
	input := search.SearchInput{
		PostalCode: c.Query("postal_code"),
		Category:   c.Query("category"),
		Date:       c.Query("date"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	}

	if raw := c.Query("price_min"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_min"})
			return
		}
		input.PriceMin = &min
	}
	if raw := c.Query("price_max"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_max"})
			return
		}
		input.PriceMax = &max
	}

	matches, err := h.service.Search(c.Request.Context(), input)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, matches)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
