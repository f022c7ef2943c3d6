package dto

import (
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// AddContactRequest is validated by the contact book itself.
type AddContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}

func (r *AddContactRequest) ToModel() models.EmergencyContact {
	return models.EmergencyContact{
		Name:  r.Name,
		Phone: r.Phone,
		Type:  types.ContactType(r.Type),
	}
}
