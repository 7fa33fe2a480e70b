// Package events announces match changes to other services over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TypeMatchCreated = "match.created"
	TypeMatchUpdated = "match.updated"

	DefaultChannelPrefix = "jobmatch"
)

type Event struct {
	Type          string    `json:"type"`
	UserID        string    `json:"userId"`
	JobID         string    `json:"jobId"`
	Score         int       `json:"score"`
	PreviousScore *int      `json:"previousScore,omitempty"`
	Status        string    `json:"status"`
	At            time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Redis publishes events as JSON on "<prefix>.<type>".
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	if err := r.rdb.Publish(ctx, Channel(r.prefix, e.Type), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func Channel(prefix, eventType string) string {
	return prefix + "." + eventType
}
