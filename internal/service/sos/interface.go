package sos

import (
	"context"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type EventRepo interface {
	Create(ctx context.Context, e *models.SOSEvent) error
	Get(ctx context.Context, id string) (*models.SOSEvent, error)
	// Transition applies mutate only while the stored status equals from, otherwise types.ErrStaleState.
	Transition(ctx context.Context, id string, from types.SOSStatus, mutate func(e *models.SOSEvent)) (*models.SOSEvent, error)
	ListByRequester(ctx context.Context, userID string, limit int) ([]models.SOSEvent, error)
	ListStalled(ctx context.Context, before time.Time) ([]models.SOSEvent, error)
}

type ContactSource interface {
	List(ctx context.Context, ownerID string) ([]models.EmergencyContact, error)
}

type Notifier interface {
	Notify(ctx context.Context, contacts []models.EmergencyContact, payload models.NotificationPayload) (models.FanOutResult, error)
}

type Booker interface {
	RequestBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

type Publisher interface {
	PublishSOSStatus(ctx context.Context, msg models.SOSStatusMessage) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, msg models.FeedMessage)
}
