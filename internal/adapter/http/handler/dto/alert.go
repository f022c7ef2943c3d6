package dto

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type PublishAlertRequest struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AlertType    string     `json:"alert_type"`
	Severity     string     `json:"severity"`
	AffectedArea string     `json:"location_affected"`
	Coordinates  Location   `json:"coordinates"`
	RadiusKm     float64    `json:"radius_km"`
	IssuedAt     *time.Time `json:"issued_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	SafetyTips   []string   `json:"safety_tips"`
}

func (r *PublishAlertRequest) Validate(v *validator.Validator) {
	v.Check(r.Title != "", "title", "must be provided")
	v.Check(len(r.Title) <= 200, "title", "must not be more than 200 characters long")
	v.Check(types.Severity(r.Severity).Valid(), "severity", "must be one of low, medium, high, critical")
	v.Check(r.RadiusKm >= 0, "radius_km", "must not be negative")
	v.Check(r.ExpiresAt != nil, "expires_at", "must be provided")
	r.Coordinates.Validate(v, "coordinates")
}

func (r *PublishAlertRequest) ToModel() models.DisasterAlert {
	a := models.DisasterAlert{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Type:         r.AlertType,
		Severity:     types.Severity(r.Severity),
		AffectedArea: r.AffectedArea,
		Coordinates:  r.Coordinates.ToModel(),
		RadiusKm:     r.RadiusKm,
		SafetyTips:   r.SafetyTips,
	}
	if r.IssuedAt != nil {
		a.IssuedAt = *r.IssuedAt
	}
	if r.ExpiresAt != nil {
		a.ExpiresAt = *r.ExpiresAt
	}
	return a
}
