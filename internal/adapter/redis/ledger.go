package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "emergilink:notify:"

type Config interface {
	GetAddr() string
	GetPassword() string
	GetDB() int
}

// Ledger records dispatched dedup keys so every notifier instance sees them.
type Ledger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient connects and pings the server.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.GetPassword(),
		DB:           cfg.GetDB(),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewLedger(client *redis.Client, ttl time.Duration) *Ledger {
	return &Ledger{client: client, ttl: ttl}
}

func (l *Ledger) IsDispatched(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis ledger: exists: %w", err)
	}
	return n > 0, nil
}

// MarkDispatched uses SETNX, so it reports false when another instance won.
func (l *Ledger) MarkDispatched(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, keyPrefix+key, time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis ledger: setnx: %w", err)
	}
	return ok, nil
}
