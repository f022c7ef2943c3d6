package matcher

import (
	"context"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type Registry interface {
	List(ctx context.Context, loc models.Location, radiusKm float64) []models.AmbulanceDistance
	Reserve(ctx context.Context, ambulanceID, holder string) (models.Reservation, error)
	Confirm(ctx context.Context, ambulanceID, token string) error
	Release(ctx context.Context, ambulanceID, token string) error
	Restore(ctx context.Context, ambulanceID, token, holder string) error
}

type BookingRepo interface {
	Create(ctx context.Context, b *models.Booking) error
	Get(ctx context.Context, id string) (*models.Booking, error)
	// GetByIdempotencyKey returns types.ErrBookingNotFound when the key is unused.
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error)
	// Transition runs mutate on the stored booking only while its status equals from,
	// otherwise it returns types.ErrStaleState.
	Transition(ctx context.Context, id string, from types.BookingStatus, mutate func(b *models.Booking)) (*models.Booking, error)
	ListByStatus(ctx context.Context, statuses ...types.BookingStatus) ([]models.Booking, error)
}

type Publisher interface {
	PublishBookingStatus(ctx context.Context, msg models.BookingStatusMessage) error
}

// CutoffPolicy decides whether a Confirmed booking may still be cancelled.
type CutoffPolicy interface {
	CancelAllowed(b models.Booking, now time.Time) bool
}
