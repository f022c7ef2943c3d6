package matcher

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
)

type Policy struct {
	InitialRadiusKm float64
	// RadiusSteps is how many radii are searched, doubling each time: 5, 10, 20.
	RadiusSteps int
	MaxAttempts int
	Budget      time.Duration
	AvgSpeedKmh float64
	// CostWeight adds minutes per currency unit to the ranking score.
	CostWeight float64
}

func DefaultPolicy() Policy {
	return Policy{
		InitialRadiusKm: 5,
		RadiusSteps:     3,
		MaxAttempts:     3,
		Budget:          3 * time.Second,
		AvgSpeedKmh:     40,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.InitialRadiusKm <= 0 {
		p.InitialRadiusKm = d.InitialRadiusKm
	}
	if p.RadiusSteps <= 0 {
		p.RadiusSteps = d.RadiusSteps
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.Budget <= 0 {
		p.Budget = d.Budget
	}
	if p.AvgSpeedKmh <= 0 {
		p.AvgSpeedKmh = d.AvgSpeedKmh
	}
	return p
}

// Radii lists the expansion schedule.
func (p Policy) Radii() []float64 {
	radii := make([]float64, 0, p.RadiusSteps)
	r := p.InitialRadiusKm
	for range p.RadiusSteps {
		radii = append(radii, r)
		r *= 2
	}
	return radii
}

// WindowCutoff allows cancelling a Confirmed booking for Window after confirmation.
type WindowCutoff struct {
	Window time.Duration
}

func (w WindowCutoff) CancelAllowed(b models.Booking, now time.Time) bool {
	if b.ConfirmedAt == nil {
		return true
	}
	return now.Sub(*b.ConfirmedAt) <= w.Window
}
