package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/rabbit"
)

var errNacked = errors.New("broker nacked the message")

// Topology lists every exchange and queue both service modes rely on.
func Topology() rabbit.Topology {
	return rabbit.Topology{
		Exchanges: []string{types.NotificationExchange, types.EmergencyExchange},
		Bindings: []rabbit.Binding{
			{Queue: types.QueueContactNotifications, Exchange: types.NotificationExchange, Key: types.BindingNotifyAll},
			{Queue: types.QueueDeadNotifications, Exchange: types.NotificationExchange, Key: types.RoutingDeadNotification},
		},
	}
}

// publish sends body as persistent JSON and waits for the broker confirm.
func publish(ctx context.Context, client *rabbit.RabbitMQ, exchange, key, correlationID string, v any) (err error) {
	defer func() { metrics.RecordRabbitMQPublish(exchange, err) }()

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return publishRaw(ctx, client, exchange, key, correlationID, nil, body)
}

// publishRaw sends an already encoded body with optional headers and waits for the confirm.
func publishRaw(ctx context.Context, client *rabbit.RabbitMQ, exchange, key, correlationID string, headers amqp.Table, body []byte) error {
	ch, err := client.Channel(ctx)
	if err != nil {
		return err
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			Headers:       headers,
			Body:          body,
			Timestamp:     time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", exchange, key, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait confirm: %w", err)
	}
	if !acked {
		return errNacked
	}
	return nil
}
