package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/dimitrije/salesdesk/internal/models"
	"github.com/redis/go-redis/v9"
)

const teamKey = "salesdesk:team:listing"

// TeamCache keeps the rendered team listing in Redis. A nil *TeamCache, or one
// without a client, behaves as a cache that always misses.
type TeamCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewTeamCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *TeamCache {
	return &TeamCache{client: client, ttl: ttl, metrics: m}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Get returns the cached listing and whether it was present.
func (c *TeamCache) Get(ctx context.Context) ([]models.Profile, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}

	val, err := c.client.Get(ctx, teamKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.miss()
		return nil, false, nil
	}
	if err != nil {
		c.miss()
		return nil, false, err
	}

	var profiles []models.Profile
	if err := json.Unmarshal(val, &profiles); err != nil {
		c.miss()
		return nil, false, fmt.Errorf("failed to decode team listing: %w", err)
	}

	if c.metrics != nil {
		c.metrics.TeamCacheHits.Inc()
	}
	return profiles, true, nil
}

func (c *TeamCache) Set(ctx context.Context, profiles []models.Profile) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode team listing: %w", err)
	}
	return c.client.Set(ctx, teamKey, data, c.ttl).Err()
}

func (c *TeamCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, teamKey).Err()
}

func (c *TeamCache) miss() {
	if c.metrics != nil {
		c.metrics.TeamCacheMisses.Inc()
	}
}
