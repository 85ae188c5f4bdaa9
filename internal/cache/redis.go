package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Paul01001000/spacematch/config"
	"github.com/Paul01001000/spacematch/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetMatches(ctx context.Context, key string) ([]domain.SpaceMatch, error) {
	data, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var matches []domain.SpaceMatch
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *RedisCache) SetMatches(ctx context.Context, key string, matches []domain.SpaceMatch) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(key), payload, c.searchTTL).Err()
}

// AcquireBookingLock serializes reservation commits for one space/date.
// Callers must release it after the transaction finishes; the TTL only
// guards against a crashed holder.
func (c *RedisCache) AcquireBookingLock(ctx context.Context, spaceID int64, date time.Time, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, bookingLockKey(spaceID, date), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseBookingLock(ctx context.Context, spaceID int64, date time.Time) error {
	return c.client.Del(ctx, bookingLockKey(spaceID, date)).Err()
}

func searchKey(key string) string {
	return "cache:search:" + key
}

func bookingLockKey(spaceID int64, date time.Time) string {
	return fmt.Sprintf("lock:space:%d:date:%s", spaceID, date.Format("2006-01-02"))
}
