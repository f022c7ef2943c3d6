package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/rabbit"
)

type DeliveryHandler func(ctx context.Context, job models.DeliveryJob) error

const (
	retryHeader = "x-retry-count"
	// MaxDeliveryRetries bounds how often a transiently failing job is requeued
	// before it is parked on the dead queue.
	MaxDeliveryRetries = 5

	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

type NotificationConsumer struct {
	client   *rabbit.RabbitMQ
	queue    string
	prefetch int
	l        logger.Logger
}

func NewNotificationConsumer(client *rabbit.RabbitMQ, prefetch int, l logger.Logger) *NotificationConsumer {
	if prefetch <= 0 {
		prefetch = 16
	}
	return &NotificationConsumer{
		client:   client,
		queue:    types.QueueContactNotifications,
		prefetch: prefetch,
		l:        l,
	}
}

// Consume blocks until ctx is done, re-subscribing whenever the channel drops.
func (c *NotificationConsumer) Consume(ctx context.Context, fn DeliveryHandler) error {
	const op = "NotificationConsumer.Consume"
	ctx = wrap.WithAction(ctx, "rabbitmq_consume_notifications")

	for {
		if ctx.Err() != nil {
			c.l.Debug(ctx, "notification consumer stopped by context")
			return nil
		}

		ch, err := c.client.Channel(ctx)
		if err != nil {
			c.l.Error(ctx, "ensure connection failed", err, "op", op)
			sleep(ctx, 2*time.Second)
			continue
		}

		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			c.l.Error(ctx, "set qos failed", err, "op", op)
			sleep(ctx, 2*time.Second)
			continue
		}

		msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
		if err != nil {
			c.l.Error(ctx, "consume failed", err, "op", op)
			sleep(ctx, 2*time.Second)
			continue
		}

		c.l.Info(ctx, "start consuming contact notifications", "queue", c.queue)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				c.l.Info(ctx, "notification consumer shutting down", "op", op)
				return nil

			case msg, ok := <-msgs:
				if !ok {
					c.l.Warn(ctx, "message channel closed, reconnecting", "op", op)
					sleep(ctx, 2*time.Second)
					break consumeLoop
				}

				go c.handleMessage(ctx, fn, msg)
			}
		}
	}
}

func (c *NotificationConsumer) handleMessage(ctx context.Context, fn DeliveryHandler, msg amqp.Delivery) {
	const op = "NotificationConsumer.handleMessage"

	var job models.DeliveryJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		c.l.Error(ctx, "decode failed", err, "op", op)
		metrics.RecordRabbitMQConsume(c.queue, err)
		_ = msg.Nack(false, false)
		return
	}

	ctx = wrap.WithRequestID(wrap.WithEventID(ctx, job.Payload.EventID), msg.CorrelationId)

	err := fn(ctx, job)
	metrics.RecordRabbitMQConsume(c.queue, err)
	if err != nil {
		c.l.Error(wrap.ErrorCtx(ctx, err), "delivery handler failed", err, "op", op)

		if errors.Is(err, types.ErrDeliveryRejected) {
			_ = msg.Nack(false, false)
			return
		}
		c.retry(ctx, msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.l.Warn(ctx, "ack failed", "op", op, "error", err.Error())
	}
}

// retry waits out the backoff for this attempt and puts the job back on the
// queue with a bumped retry count. Past MaxDeliveryRetries the job goes to the dead queue.
func (c *NotificationConsumer) retry(ctx context.Context, msg amqp.Delivery) {
	const op = "NotificationConsumer.retry"

	n := retryCount(msg.Headers)
	exchange, key := "", c.queue
	if n >= MaxDeliveryRetries {
		exchange, key = types.NotificationExchange, types.RoutingDeadNotification
		c.l.Warn(ctx, "delivery retries exhausted, parking job", "op", op, "retries", n)
	} else {
		sleep(ctx, retryDelay(n))
		if ctx.Err() != nil {
			// shutting down; let the broker hand it to the next consumer
			_ = msg.Nack(false, true)
			return
		}
	}

	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryHeader] = int32(n + 1)

	if err := publishRaw(context.WithoutCancel(ctx), c.client, exchange, key, msg.CorrelationId, headers, msg.Body); err != nil {
		c.l.Error(ctx, "requeue failed, returning job to broker", err, "op", op)
		_ = msg.Nack(false, true)
		return
	}
	if err := msg.Ack(false); err != nil {
		c.l.Warn(ctx, "ack after requeue failed", "op", op, "error", err.Error())
	}
}

func retryCount(h amqp.Table) int {
	switch v := h[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// retryDelay doubles from retryBaseDelay per attempt, capped at retryMaxDelay.
func retryDelay(attempt int) time.Duration {
	d := retryBaseDelay
	for range attempt {
		d *= 2
		if d >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
