package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/hasher"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
)

const defaultParallelism = 8

type Options struct {
	Retry RetryPolicy
	// Parallelism caps concurrent deliveries within one fan-out.
	Parallelism int
}

type Notifier struct {
	channel     Channel
	ledger      Ledger
	retry       RetryPolicy
	parallelism int
	inflight    singleflight.Group
	l           logger.Logger
}

func New(channel Channel, ledger Ledger, opts Options, l logger.Logger) *Notifier {
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}
	return &Notifier{
		channel:     channel,
		ledger:      ledger,
		retry:       opts.Retry.withDefaults(),
		parallelism: opts.Parallelism,
		l:           l,
	}
}

func DedupKey(eventID, contactID string) string {
	return eventID + ":" + contactID
}

// Notify delivers payload to every contact in parallel, at most once per
// (event, contact) as far as the ledger remembers. When nobody could be reached
// the result is returned together with types.ErrNoContactReached.
func (n *Notifier) Notify(ctx context.Context, contacts []models.EmergencyContact, payload models.NotificationPayload) (models.FanOutResult, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{
		Action:  types.ActionNotifyContacts,
		EventID: payload.EventID,
		UserID:  payload.RequesterID,
	})

	result := models.FanOutResult{EventID: payload.EventID}
	if len(contacts) == 0 {
		result.Outcomes = []models.ContactOutcome{}
		result.Warnings = []string{"no emergency contacts registered"}
		n.l.Warn(ctx, "no emergency contacts to notify")
		return result, nil
	}

	outcomes := make([]models.ContactOutcome, len(contacts))

	var g errgroup.Group
	g.SetLimit(n.parallelism)
	for i, c := range contacts {
		g.Go(func() error {
			outcomes[i] = n.notifyOne(ctx, c, payload)
			return nil
		})
	}
	_ = g.Wait()

	result.Outcomes = outcomes
	for _, o := range outcomes {
		if o.Outcome == types.OutcomeFailed {
			result.Warnings = append(result.Warnings, fmt.Sprintf("contact %s could not be reached: %s", o.Name, o.Error))
		}
	}

	n.l.Info(ctx, "contacts notified",
		"dispatched", result.Dispatched(),
		"failed", result.Failed(),
	)

	if result.Dispatched() == 0 {
		return result, wrap.Error(ctx, types.ErrNoContactReached)
	}
	return result, nil
}

func (n *Notifier) notifyOne(ctx context.Context, c models.EmergencyContact, payload models.NotificationPayload) models.ContactOutcome {
	key := DedupKey(payload.EventID, c.ID)

	// concurrent fan-outs for the same event share one delivery per contact
	v, _, _ := n.inflight.Do(key, func() (any, error) {
		return n.deliver(ctx, key, c, payload), nil
	})

	outcome := v.(models.ContactOutcome)
	switch {
	case outcome.Duplicate:
		metrics.NotificationsTotal.WithLabelValues("duplicate").Inc()
	case outcome.Outcome == types.OutcomeDispatched:
		metrics.NotificationsTotal.WithLabelValues("dispatched").Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
	}
	return outcome
}

func (n *Notifier) deliver(ctx context.Context, key string, c models.EmergencyContact, payload models.NotificationPayload) models.ContactOutcome {
	ctx = wrap.WithAction(ctx, types.ActionDeliverContact)
	outcome := models.ContactOutcome{ContactID: c.ID, Name: c.Name}

	done, err := n.ledger.IsDispatched(ctx, key)
	if err != nil {
		// an unreadable ledger must not block an emergency message
		n.l.Warn(ctx, "dedup ledger lookup failed, delivering anyway", "contact_id", c.ID, "error", err.Error())
	}
	if done {
		outcome.Outcome = types.OutcomeDispatched
		outcome.Duplicate = true
		return outcome
	}

	job := models.DeliveryJob{
		DedupKey:  key,
		Contact:   c,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	var lastErr error
	for attempt := 1; attempt <= n.retry.Attempts; attempt++ {
		job.Attempt = attempt
		outcome.Attempts = attempt

		lastErr = n.channel.Deliver(ctx, job)
		if lastErr == nil {
			break
		}

		n.l.Warn(ctx, "delivery attempt failed",
			"contact_id", c.ID,
			"phone", hasher.Fingerprint(c.Phone),
			"attempt", attempt,
			"error", lastErr.Error(),
		)

		if errors.Is(lastErr, types.ErrDeliveryRejected) || attempt == n.retry.Attempts {
			break
		}
		if err := sleep(ctx, n.retry.Backoff(attempt)); err != nil {
			lastErr = fmt.Errorf("%w: %w", types.ErrDeliveryFailed, err)
			break
		}
	}

	if lastErr != nil {
		outcome.Outcome = types.OutcomeFailed
		outcome.Error = lastErr.Error()
		return outcome
	}

	outcome.Outcome = types.OutcomeDispatched
	if fresh, err := n.ledger.MarkDispatched(ctx, key); err != nil {
		n.l.Warn(ctx, "failed to record dispatched contact", "contact_id", c.ID, "error", err.Error())
	} else if !fresh {
		n.l.Debug(ctx, "contact was dispatched concurrently by another worker", "contact_id", c.ID)
	}

	return outcome
}
