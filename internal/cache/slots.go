// Package cache provides an optional redis-backed cache for generated slot
// lists. A stale entry is harmless: booking a cached slot still goes through
// commit-time validation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/JayBeez180/booking-system/internal/slots"
)

const genKey = "slots:gen"

// SlotCache stores slot lists per (date, duration) under a generation
// counter. Date-scoped invalidation deletes one hash; schedule-wide changes
// bump the generation, orphaning every old key to expire by TTL.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// New creates a slot cache. Cache errors are logged and treated as misses;
// redis being down never breaks slot generation.
func New(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *SlotCache {
	return &SlotCache{client: client, ttl: ttl, logger: logger}
}

func (c *SlotCache) key(ctx context.Context, date string) (string, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("slots:%d:%s", gen, date), nil
}

// Get returns the cached slots for a date and duration, if present.
func (c *SlotCache) Get(ctx context.Context, date string, duration int) ([]slots.Slot, bool) {
	key, err := c.key(ctx, date)
	if err != nil {
		c.logger.Warn().Err(err).Msg("slot cache read failed")
		return nil, false
	}
	raw, err := c.client.HGet(ctx, key, fmt.Sprint(duration)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("slot cache read failed")
		return nil, false
	}

	var list []slots.Slot
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn().Err(err).Msg("slot cache entry corrupt")
		return nil, false
	}
	return list, true
}

// Set caches the slots for a date and duration with the configured TTL.
func (c *SlotCache) Set(ctx context.Context, date string, duration int, list []slots.Slot) {
	key, err := c.key(ctx, date)
	if err != nil {
		c.logger.Warn().Err(err).Msg("slot cache write failed")
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fmt.Sprint(duration), raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("slot cache write failed")
	}
}

// InvalidateDate drops every cached duration for one date.
func (c *SlotCache) InvalidateDate(ctx context.Context, date string) {
	key, err := c.key(ctx, date)
	if err == nil {
		err = c.client.Del(ctx, key).Err()
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("date", date).Msg("slot cache invalidation failed")
	}
}

// Reset abandons all cached slots by bumping the generation counter.
func (c *SlotCache) Reset(ctx context.Context) {
	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("slot cache reset failed")
	}
}
