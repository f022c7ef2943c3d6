package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Ledger records dispatched dedup keys in a process-local TTL cache.
type Ledger struct {
	c *cache.Cache
}

func NewLedger(ttl time.Duration) *Ledger {
	return &Ledger{c: cache.New(ttl, 2*ttl)}
}

func (l *Ledger) IsDispatched(ctx context.Context, key string) (bool, error) {
	_, ok := l.c.Get(key)
	return ok, nil
}

// MarkDispatched reports false when key was already recorded.
func (l *Ledger) MarkDispatched(ctx context.Context, key string) (bool, error) {
	if err := l.c.Add(key, time.Now(), cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}
