package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	weatherCachePrefix = "weather:"
	weatherCacheTTL    = 10 * time.Minute
)

// WeatherCache caches weather lookups per city so repeated questions inside
// a conversation don't hit the upstream API again.
type WeatherCache struct {
	client *Client
}

// NewWeatherCache creates a new weather cache
func NewWeatherCache(client *Client) *WeatherCache {
	return &WeatherCache{client: client}
}

// Get retrieves a cached weather payload for a city. A miss is (nil, nil).
func (c *WeatherCache) Get(ctx context.Context, city string) (map[string]any, error) {
	data, err := c.client.rdb.Get(ctx, c.key(city)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weather payload: %w", err)
	}
	return payload, nil
}

// Set caches a weather payload for a city
func (c *WeatherCache) Set(ctx context.Context, city string, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal weather payload: %w", err)
	}
	return c.client.rdb.Set(ctx, c.key(city), data, weatherCacheTTL).Err()
}

func (c *WeatherCache) key(city string) string {
	return weatherCachePrefix + strings.ToLower(strings.TrimSpace(city))
}
