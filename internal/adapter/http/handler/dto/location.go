package dto

import (
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/validator"
)

type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

func (l *Location) Validate(v *validator.Validator, prefix string) {
	v.Check(l.Latitude != nil, prefix+".latitude", "must be provided")
	v.Check(l.Longitude != nil, prefix+".longitude", "must be provided")
	if l.Latitude != nil && l.Longitude != nil {
		v.Check(*l.Latitude >= -90 && *l.Latitude <= 90, prefix+".latitude", "must be between -90 and 90")
		v.Check(*l.Longitude >= -180 && *l.Longitude <= 180, prefix+".longitude", "must be between -180 and 180")
	}
	v.Check(len(l.Address) <= 255, prefix+".address", "must not be more than 255 characters long")
}

// ToModel assumes Validate passed.
func (l *Location) ToModel() models.Location {
	return models.Location{Latitude: *l.Latitude, Longitude: *l.Longitude, Address: l.Address}
}
