package rediscache

import (
	"context"
	"docbook/cmd/internal/domain/entity"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// AvailabilityCache keeps per-day free slot lists. Each doctor has a
// version counter that is part of every key, so bumping it invalidates all
// of the doctor's days at once across instances.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

// Connect pings the server a few times before giving up.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const maxRetries = 3
	const retryDelay = 2 * time.Second

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		log.Warnf("failed to connect to redis (attempt %d/%d): %v", i+1, maxRetries, err)

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	_ = client.Close()
	return nil, err
}

// Get returns the cached slots of the day starting at dayStart, the
// doctor's current version and whether the entry was present.
func (a *AvailabilityCache) Get(ctx context.Context, doctorID int, dayStart int64) ([]*entity.AvailabilitySlot, int64, bool, error) {
	version, err := a.client.Get(ctx, versionKey(doctorID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}

	data, err := a.client.Get(ctx, dayKey(doctorID, version, dayStart)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, version, false, err
	}

	var slots []*entity.AvailabilitySlot
	if err = json.Unmarshal(data, &slots); err != nil {
		return nil, version, false, err
	}
	return slots, version, true, nil
}

// Set stores slots under the version returned by the Get that missed.
func (a *AvailabilityCache) Set(ctx context.Context, doctorID int, dayStart, version int64, slots []*entity.AvailabilitySlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return a.client.Set(ctx, dayKey(doctorID, version, dayStart), data, a.ttl).Err()
}

func (a *AvailabilityCache) Invalidate(ctx context.Context, doctorID int) error {
	return a.client.Incr(ctx, versionKey(doctorID)).Err()
}

func versionKey(doctorID int) string {
	return fmt.Sprintf("availability:%d:version", doctorID)
}

func dayKey(doctorID int, version, dayStart int64) string {
	return fmt.Sprintf("availability:%d:v%d:%d", doctorID, version, dayStart)
}
