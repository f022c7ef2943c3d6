package models

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// NotificationPayload is what every contact of one event receives.
type NotificationPayload struct {
	EventID       string              `json:"event_id"`
	RequesterID   string              `json:"user_id"`
	EmergencyType types.EmergencyType `json:"emergency_type"`
	Location      Location            `json:"location"`
	Message       string              `json:"message"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// DeliveryJob is one contact's message on the broker.
type DeliveryJob struct {
	DedupKey  string              `json:"dedup_key"`
	Contact   EmergencyContact    `json:"contact"`
	Payload   NotificationPayload `json:"payload"`
	Attempt   int                 `json:"attempt"`
	CreatedAt time.Time           `json:"created_at"`
}

type ContactOutcome struct {
	ContactID string                `json:"contact_id"`
	Name      string                `json:"name"`
	Outcome   types.DeliveryOutcome `json:"outcome"`
	Attempts  int                   `json:"attempts"`
	Duplicate bool                  `json:"duplicate,omitempty"`
	Error     string                `json:"error,omitempty"`
}

type FanOutResult struct {
	EventID  string           `json:"event_id"`
	Outcomes []ContactOutcome `json:"outcomes"`
	Warnings []string         `json:"warnings,omitempty"`
}

func (r FanOutResult) Dispatched() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Outcome == types.OutcomeDispatched {
			n++
		}
	}
	return n
}

func (r FanOutResult) Failed() int {
	return len(r.Outcomes) - r.Dispatched()
}

// Outcome returns the outcome for a contact, if present.
func (r FanOutResult) Outcome(contactID string) (ContactOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.ContactID == contactID {
			return o, true
		}
	}
	return ContactOutcome{}, false
}
