package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// envelope is the stored form of a Redis entry. Expiry lives in the payload
// instead of a Redis TTL so stale entries stay in place until overwritten.
type envelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Redis is a TTL cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	clock  clockwork.Clock
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// NewRedis wraps an open client. Pass a nil clock to use real time.
func NewRedis(client *redis.Client, clock clockwork.Clock) *Redis {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Redis{client: client, clock: clock}
}

func (r *Redis) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return decodeEnvelope(data, r.clock.Now())
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := encodeEnvelope(value, r.clock.Now().Add(effectiveTTL(ttl)))
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func encodeEnvelope(value any, expiresAt time.Time) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Value: raw, ExpiresAt: expiresAt.UTC()})
}

func decodeEnvelope(data []byte, now time.Time) (json.RawMessage, bool, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if !now.Before(env.ExpiresAt) {
		return nil, false, nil
	}
	return env.Value, true, nil
}
