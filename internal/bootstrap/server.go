package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Paul01001000/spacematch/api"
	"github.com/Paul01001000/spacematch/config"
	"github.com/Paul01001000/spacematch/internal/service/availability"
	"github.com/Paul01001000/spacematch/internal/service/booking"
	"github.com/Paul01001000/spacematch/internal/service/search"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, availabilitySvc availability.AvailabilityUseCase, bookingSvc booking.BookingUseCase, searchSvc search.SearchUseCase) error {
	router := newRouter(availabilitySvc, bookingSvc, searchSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(availabilitySvc availability.AvailabilityUseCase, bookingSvc booking.BookingUseCase, searchSvc search.SearchUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api.NewAvailabilityHandler(availabilitySvc).Register(router.Group("/availability"))
	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))
	api.NewSearchHandler(searchSvc).Register(router.Group("/search"))

	return router
}
