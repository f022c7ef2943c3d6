package models

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type DisasterAlert struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Type         string         `json:"alert_type"`
	Severity     types.Severity `json:"severity"`
	AffectedArea string         `json:"location_affected"`
	Coordinates  Location       `json:"coordinates"`
	RadiusKm     float64        `json:"radius_km"`
	Active       bool           `json:"active"`
	IssuedAt     time.Time      `json:"issued_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	SafetyTips   []string       `json:"safety_tips"`
}

// ActiveAt is the only source of the active flag.
func (a DisasterAlert) ActiveAt(now time.Time) bool {
	return a.ExpiresAt.After(now)
}

// WithActive returns a copy with Active derived for now.
func (a DisasterAlert) WithActive(now time.Time) DisasterAlert {
	a.Active = a.ActiveAt(now)
	a.SafetyTips = append([]string(nil), a.SafetyTips...)
	return a
}

type LocationFilter struct {
	Point    *Location
	RadiusKm float64
	Area     string
}

func (f LocationFilter) Empty() bool {
	return f.Point == nil && f.Area == ""
}
