package dto

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type BookAmbulanceRequest struct {
	Pickup Location `json:"pickup"`
}

func (r *BookAmbulanceRequest) Validate(v *validator.Validator) {
	r.Pickup.Validate(v, "pickup")
}

type BookingResponse struct {
	BookingID        string              `json:"booking_id"`
	Status           types.BookingStatus `json:"status"`
	AmbulanceID      string              `json:"ambulance_id,omitempty"`
	DistanceKm       float64             `json:"distance_km,omitempty"`
	ETAMinutes       float64             `json:"estimated_arrival_minutes,omitempty"`
	EstimatedArrival *time.Time          `json:"estimated_arrival,omitempty"`
	FailureReason    string              `json:"failure_reason,omitempty"`
	RequestedAt      time.Time           `json:"requested_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		BookingID:        b.ID,
		Status:           b.Status,
		AmbulanceID:      b.AmbulanceID,
		DistanceKm:       b.DistanceKm,
		ETAMinutes:       b.ETAMinutes,
		EstimatedArrival: b.EstimatedArrival,
		FailureReason:    b.FailureReason,
		RequestedAt:      b.RequestedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
