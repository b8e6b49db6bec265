package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sentinel/core"
)

// Redis delivers events onto a Redis list, for setups where a collector
// drains the list into the SIEM out of band.
type Redis struct {
	client *redis.Client
	key    string
	logger *zap.SugaredLogger
}

// NewRedis creates a Redis leaf sink pushing onto key.
func NewRedis(addr, password string, db int, key string, logger *zap.SugaredLogger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client, key: key, logger: logger}
}

// Ping tests the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Deliver appends the serialized event to the configured list.
func (r *Redis) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	start := time.Now()
	body, err := encodeEvent(event)
	if err != nil {
		return OutcomeDelivered, err
	}

	err = r.client.RPush(ctx, r.key, body).Err()
	observeDelivery("redis", start, err)
	if err != nil {
		return OutcomeDelivered, fmt.Errorf("failed to push event to redis list %s: %w", r.key, err)
	}

	r.logger.Debugw("Delivered event to Redis", "key", r.key, "event_id", event.EventID)
	return OutcomeDelivered, nil
}
