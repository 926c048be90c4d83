// Package cache stores generated article summaries in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "newsradar:summary:"

// SummaryCache stores generated summaries by article id
type SummaryCache interface {
	Get(ctx context.Context, articleID string) (string, bool, error)
	Set(ctx context.Context, articleID, summary string) error
	Delete(ctx context.Context, articleID string) error
}

// Config configures the Redis connection
type Config struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	TTL      time.Duration
}

// RedisSummaries is a Redis-backed SummaryCache with a per-entry TTL
type RedisSummaries struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaries connects to Redis and verifies connectivity
func NewRedisSummaries(ctx context.Context, cfg Config) (*RedisSummaries, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisSummaries{client: client, ttl: cfg.TTL}, nil
}

// Key returns the Redis key holding the summary for articleID
func Key(articleID string) string {
	return keyPrefix + articleID
}

func (r *RedisSummaries) Get(ctx context.Context, articleID string) (string, bool, error) {
	val, err := r.client.Get(ctx, Key(articleID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisSummaries) Set(ctx context.Context, articleID, summary string) error {
	return r.client.Set(ctx, Key(articleID), summary, r.ttl).Err()
}

func (r *RedisSummaries) Delete(ctx context.Context, articleID string) error {
	return r.client.Del(ctx, Key(articleID)).Err()
}

// Close closes the underlying Redis client
func (r *RedisSummaries) Close() error {
	return r.client.Close()
}
