package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateCache keeps per-challenge submission-rate snapshots in Redis for
// a short TTL. Gate predicates are never cached; only this derived
// statistic is.
type RateCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRateCache(rdb *redis.Client) *RateCache {
	return &RateCache{RDB: rdb, TTL: 30 * time.Second}
}

func (c *RateCache) key(challengeID uint) string {
	return fmt.Sprintf("completion:rates:%d", challengeID)
}

func (c *RateCache) Get(ctx context.Context, challengeID uint) ([]SlotRate, bool) {
	if c == nil || c.RDB == nil {
		return nil, false
	}
	raw, err := c.RDB.Get(ctx, c.key(challengeID)).Bytes()
	if err != nil {
		return nil, false
	}
	var rates []SlotRate
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, false
	}
	return rates, true
}

func (c *RateCache) Set(ctx context.Context, challengeID uint, rates []SlotRate) {
	if c == nil || c.RDB == nil {
		return
	}
	raw, err := json.Marshal(rates)
	if err != nil {
		return
	}
	c.RDB.Set(ctx, c.key(challengeID), raw, c.TTL)
}

func (c *RateCache) Invalidate(ctx context.Context, challengeID uint) {
	if c == nil || c.RDB == nil {
		return
	}
	c.RDB.Del(ctx, c.key(challengeID))
}
