package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

// Job runs once per tick. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

type Cron struct {
	c      *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger
}

func NewCron(loc *time.Location, log logger.Logger) *Cron {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())

	return &Cron{
		c: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Add schedules job under name. Errors are logged with name as the action.
func (cr *Cron) Add(name, expr string, job Job) (cron.EntryID, error) {
	id, err := cr.c.AddFunc(expr, func() {
		ctx := wrap.WithAction(cr.ctx, name)
		if err := job(ctx); err != nil {
			cr.log.Error(ctx, "scheduled job failed", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, expr, err)
	}
	return id, nil
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop cancels running jobs and waits for them to return or for ctx to expire.
func (cr *Cron) Stop(ctx context.Context) {
	cr.cancel()
	done := cr.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (cr *Cron) Entries() []cron.Entry { return cr.c.Entries() }

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(wrap.WithAction(context.Background(), "cron"), msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(wrap.WithAction(context.Background(), "cron"), msg, err, keysAndValues...)
}
