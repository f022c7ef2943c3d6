package dto

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type TriggerSOSRequest struct {
	UserID        string     `json:"user_id"`
	EmergencyType string     `json:"emergency_type"`
	Location      Location   `json:"location"`
	Timestamp     *time.Time `json:"timestamp"`
}

func (r *TriggerSOSRequest) Validate(v *validator.Validator) {
	v.Check(r.UserID != "", "user_id", "must be provided")
	v.Check(len(r.UserID) <= 128, "user_id", "must not be more than 128 characters long")
	if r.EmergencyType != "" {
		v.Check(types.EmergencyType(r.EmergencyType).Valid(), "emergency_type", "must be one of general, medical, fire, police, accident")
	}
	r.Location.Validate(v, "location")
}

func (r *TriggerSOSRequest) ToModel() models.TriggerInput {
	in := models.TriggerInput{
		RequesterID:   r.UserID,
		Location:      r.Location.ToModel(),
		EmergencyType: types.EmergencyType(r.EmergencyType),
	}
	if r.Timestamp != nil {
		in.Timestamp = *r.Timestamp
	}
	return in
}

type SOSResponse struct {
	Event    *models.SOSEvent     `json:"event"`
	FanOut   *models.FanOutResult `json:"fan_out,omitempty"`
	Warnings []string             `json:"warnings"`
}

func NewSOSResponse(e *models.SOSEvent) SOSResponse {
	warnings := e.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return SOSResponse{Event: e, FanOut: e.FanOut, Warnings: warnings}
}
