package notifier

import (
	"context"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
)

// Channel hands one job to the external delivery path. An error wrapping
// types.ErrDeliveryRejected is permanent and is not retried.
type Channel interface {
	Deliver(ctx context.Context, job models.DeliveryJob) error
}

// Ledger remembers which dedup keys were already dispatched.
type Ledger interface {
	IsDispatched(ctx context.Context, key string) (bool, error)
	// MarkDispatched returns false when the key was already present.
	MarkDispatched(ctx context.Context, key string) (bool, error)
}
