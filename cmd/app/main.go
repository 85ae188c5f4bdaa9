package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Paul01001000/spacematch/config"
	"github.com/Paul01001000/spacematch/internal/bootstrap"
	"github.com/Paul01001000/spacematch/internal/cache"
	"github.com/Paul01001000/spacematch/internal/kafka"
	"github.com/Paul01001000/spacematch/internal/repository"
	"github.com/Paul01001000/spacematch/internal/service/availability"
	"github.com/Paul01001000/spacematch/internal/service/booking"
	"github.com/Paul01001000/spacematch/internal/service/search"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	spaceRepo := repository.NewSpaceRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	availabilityService := availability.NewAvailabilityService(availabilityRepo, spaceRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		availabilityRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.PendingRetentionMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithStoreRetries(cfg.Booking.StoreRetries),
	)
	searchService := search.NewSearchService(spaceRepo, availabilityRepo, bookingRepo, redisCache)

	if err := bootstrap.Run(ctx, cfg, availabilityService, bookingService, searchService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
