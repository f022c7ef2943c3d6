package models

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type EmergencyContact struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"user_id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Type      types.ContactType `json:"type"`
	CreatedAt time.Time         `json:"created_at"`
}
