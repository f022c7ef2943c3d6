package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type Ambulance struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Type      types.AmbulanceType `json:"type"`
	Location  Location            `json:"location"`
	Phone     string              `json:"phone"`
	Rating    float64             `json:"rating"`
	Available bool                `json:"availability"`
	Cost      *decimal.Decimal    `json:"cost,omitempty"`
	// DispatchDelayMin is how long the crew needs before leaving, in minutes.
	DispatchDelayMin float64   `json:"dispatch_delay_minutes"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

// ETAMinutes estimates arrival at a point distanceKm away.
func (a Ambulance) ETAMinutes(distanceKm, avgSpeedKmh float64) float64 {
	if avgSpeedKmh <= 0 {
		return a.DispatchDelayMin
	}
	return a.DispatchDelayMin + distanceKm/avgSpeedKmh*60
}

// CostValue returns cost as a float for scoring; zero when unpriced.
func (a Ambulance) CostValue() float64 {
	if a.Cost == nil {
		return 0
	}
	return a.Cost.InexactFloat64()
}

// AmbulanceDistance is a registry listing row.
type AmbulanceDistance struct {
	Ambulance
	DistanceKm float64 `json:"distance_km"`
	ETAMinutes float64 `json:"estimated_arrival_minutes"`
	// Available is false while the ambulance is offline or held by a booking.
	Available bool `json:"availability"`
}

type Reservation struct {
	AmbulanceID string    `json:"ambulance_id"`
	Token       string    `json:"token"`
	Holder      string    `json:"holder"`
	CreatedAt   time.Time `json:"created_at"`
	// ExpiresAt is zero once the hold is committed.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (r Reservation) Committed() bool {
	return r.ExpiresAt.IsZero()
}

func (r Reservation) Expired(now time.Time) bool {
	return !r.Committed() && !now.Before(r.ExpiresAt)
}
