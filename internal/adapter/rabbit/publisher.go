package rabbit

import (
	"context"
	"fmt"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/rabbit"
)

// EventPublisher emits domain status changes on the emergency exchange.
type EventPublisher struct {
	client   *rabbit.RabbitMQ
	exchange string
}

func NewEventPublisher(client *rabbit.RabbitMQ) *EventPublisher {
	return &EventPublisher{client: client, exchange: types.EmergencyExchange}
}

// PublishBookingStatus sends to booking.status.{status}.
func (p *EventPublisher) PublishBookingStatus(ctx context.Context, msg models.BookingStatusMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_booking_status")

	key := fmt.Sprintf(types.RoutingBookingStatusFmt, msg.Status)
	if err := publish(ctx, p.client, p.exchange, key, msg.BookingID, msg); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrPublishFailed, err))
	}
	return nil
}

// PublishSOSStatus sends to sos.status.{status}.
func (p *EventPublisher) PublishSOSStatus(ctx context.Context, msg models.SOSStatusMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_sos_status")

	key := fmt.Sprintf(types.RoutingSOSStatusFmt, msg.Status)
	if err := publish(ctx, p.client, p.exchange, key, msg.EventID, msg); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrPublishFailed, err))
	}
	return nil
}

func (p *EventPublisher) PublishAlert(ctx context.Context, a models.DisasterAlert) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_alert")

	if err := publish(ctx, p.client, p.exchange, types.RoutingAlertPublished, a.ID, a); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrPublishFailed, err))
	}
	return nil
}
