package models

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type TriggerInput struct {
	RequesterID   string
	Location      Location
	EmergencyType types.EmergencyType
	Timestamp     time.Time
}

type SOSEvent struct {
	ID            string              `json:"id"`
	RequesterID   string              `json:"user_id"`
	Location      Location            `json:"location"`
	EmergencyType types.EmergencyType `json:"emergency_type"`
	Status        types.SOSStatus     `json:"status"`
	BookingID     string              `json:"booking_id,omitempty"`
	FanOut        *FanOutResult       `json:"fan_out,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
	UpdatedAt     time.Time           `json:"updated_at"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"`
}

// SOSStatusMessage is published on sos.status.<status>.
type SOSStatusMessage struct {
	EventID     string          `json:"event_id"`
	RequesterID string          `json:"user_id"`
	Status      types.SOSStatus `json:"status"`
	BookingID   string          `json:"booking_id,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}
