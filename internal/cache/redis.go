package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/clinicbooking/config"
	"github.com/Domenick1991/clinicbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds a short-lived snapshot of the availability listing.
// Mutations invalidate it, so a stale count lives at most one TTL.
type RedisCache struct {
	client          *redis.Client
	availabilityTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, availabilityTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:          redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		availabilityTTL: availabilityTTL,
	}
}

func (c *RedisCache) GetAvailability(ctx context.Context) (map[string][]domain.DateAvailability, error) {
	data, err := c.client.Get(ctx, availabilityKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var availability map[string][]domain.DateAvailability
	if err := json.Unmarshal(data, &availability); err != nil {
		return nil, err
	}
	return availability, nil
}

func (c *RedisCache) SetAvailability(ctx context.Context, availability map[string][]domain.DateAvailability) error {
	payload, err := json.Marshal(availability)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, availabilityKey(), payload, c.availabilityTTL).Err()
}

func (c *RedisCache) InvalidateAvailability(ctx context.Context) error {
	return c.client.Del(ctx, availabilityKey()).Err()
}

func availabilityKey() string {
	return "cache:availability"
}
