package models

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type BookingInput struct {
	RequesterID          string
	Pickup               Location
	PreferredAmbulanceID string
	// IdempotencyKey makes repeated requests return the first booking.
	IdempotencyKey string
}

type Booking struct {
	ID                   string              `json:"booking_id"`
	RequesterID          string              `json:"user_id"`
	Pickup               Location            `json:"pickup"`
	PreferredAmbulanceID string              `json:"preferred_ambulance_id,omitempty"`
	IdempotencyKey       string              `json:"-"`
	Status               types.BookingStatus `json:"status"`
	AmbulanceID          string              `json:"ambulance_id,omitempty"`
	ReservationToken     string              `json:"-"`
	DistanceKm           float64             `json:"distance_km,omitempty"`
	ETAMinutes           float64             `json:"estimated_arrival_minutes,omitempty"`
	EstimatedArrival     *time.Time          `json:"estimated_arrival,omitempty"`
	FailureReason        string              `json:"failure_reason,omitempty"`
	RequestedAt          time.Time           `json:"requested_at"`
	MatchedAt            *time.Time          `json:"matched_at,omitempty"`
	ConfirmedAt          *time.Time          `json:"confirmed_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	FailedAt             *time.Time          `json:"failed_at,omitempty"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// BookingStatusMessage is published on booking.status.<status>.
type BookingStatusMessage struct {
	BookingID   string              `json:"booking_id"`
	RequesterID string              `json:"user_id"`
	AmbulanceID string              `json:"ambulance_id,omitempty"`
	Status      types.BookingStatus `json:"status"`
	Reason      string              `json:"reason,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}
