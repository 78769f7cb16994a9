package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"displaydeck/internal/app"
)

const latestStateKey = "displaydeck:latest_state"

// LatestCache keeps the resolved latest session in Redis for the polling
// display clients. TTL is short; writers invalidate eagerly anyway.
type LatestCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewLatestCache(client *redisv9.Client, ttl time.Duration) *LatestCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &LatestCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *LatestCache) Get(ctx context.Context) (*app.LatestState, bool, error) {
	raw, err := c.client.Get(ctx, latestStateKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get latest state failed: %w", err)
	}

	var state app.LatestState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached latest state failed: %w", err)
	}
	return &state, true, nil
}

func (c *LatestCache) Set(ctx context.Context, state *app.LatestState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal latest state failed: %w", err)
	}
	if err := c.client.Set(ctx, latestStateKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set latest state failed: %w", err)
	}
	return nil
}

func (c *LatestCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, latestStateKey).Err(); err != nil {
		return fmt.Errorf("redis delete latest state failed: %w", err)
	}
	return nil
}
