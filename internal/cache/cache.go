package cache

import (
	"context"
	"encoding/json"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"weathertrack/internal/config"
	"weathertrack/internal/model"
)

const keyPrefix = "weather:"

// WeatherCache stores raw current-weather responses in Redis, keyed by
// coordinate pair, so repeated fetches within the TTL skip the API.
type WeatherCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

// New connects to Redis at addr. TTL comes from cache.expiration.
func New(addr string) *WeatherCache {
	return &WeatherCache{
		client: redisv9.NewClient(&redisv9.Options{Addr: addr}),
		ttl:    config.GetCacheExpiration(),
	}
}

// Get returns the cached response for a coordinate key, or ok=false on miss,
// decode failure or Redis being unreachable. Cache trouble is never an error
// the caller sees; it just means a fresh fetch.
func (c *WeatherCache) Get(ctx context.Context, key string) (*model.OpenWeatherMapResponse, bool) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return nil, false
	}

	var data model.OpenWeatherMapResponse
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, false
	}
	return &data, true
}

// Set stores a response under the coordinate key. Failures are dropped;
// caching is best-effort.
func (c *WeatherCache) Set(ctx context.Context, key string, data *model.OpenWeatherMapResponse) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, keyPrefix+key, b, c.ttl).Err()
}

func (c *WeatherCache) Close() error {
	return c.client.Close()
}
