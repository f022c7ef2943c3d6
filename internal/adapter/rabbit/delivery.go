package rabbit

import (
	"context"
	"fmt"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/rabbit"
)

// DeliveryChannel enqueues contact notifications for the notifier service.
// A job counts as delivered once the broker confirmed it.
type DeliveryChannel struct {
	client   *rabbit.RabbitMQ
	exchange string
}

func NewDeliveryChannel(client *rabbit.RabbitMQ) *DeliveryChannel {
	return &DeliveryChannel{client: client, exchange: types.NotificationExchange}
}

// Deliver publishes to notify.{contact_type}.
func (d *DeliveryChannel) Deliver(ctx context.Context, job models.DeliveryJob) error {
	ctx = wrap.WithAction(ctx, types.ActionDeliverContact)

	key := fmt.Sprintf(types.RoutingNotifyFmt, job.Contact.Type)
	if err := publish(ctx, d.client, d.exchange, key, job.DedupKey, job); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %w", types.ErrDeliveryFailed, err))
	}
	return nil
}
