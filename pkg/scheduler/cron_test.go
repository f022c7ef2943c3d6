package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

func TestCronRunsJob(t *testing.T) {
	c := NewCron(time.UTC, logger.NewNop())

	var runs atomic.Int32
	_, err := c.Add("tick", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	c.Start()
	defer c.Stop(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestCronRecoversPanicsAndErrors(t *testing.T) {
	c := NewCron(time.UTC, logger.NewNop())

	var runs atomic.Int32
	_, err := c.Add("panics", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		panic("boom")
	})
	require.NoError(t, err)
	_, err = c.Add("fails", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("nope")
	})
	require.NoError(t, err)

	c.Start()
	defer c.Stop(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 4*time.Second, 50*time.Millisecond)
}

func TestCronRejectsBadSpec(t *testing.T) {
	c := NewCron(nil, logger.NewNop())

	_, err := c.Add("bad", "not a spec", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, c.Entries())
}

func TestCronStopCancelsJobContext(t *testing.T) {
	c := NewCron(time.UTC, logger.NewNop())

	started := make(chan struct{})
	cancelled := make(chan struct{})
	_, err := c.Add("long", "@every 1s", func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})
	require.NoError(t, err)

	c.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.Stop(ctx)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}
}
