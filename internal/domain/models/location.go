package models

import "github.com/Psychoriddler/Emergilink-prototype/pkg/geo"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// DistanceKm is the great-circle distance to other.
func (l Location) DistanceKm(other Location) float64 {
	return geo.HaversineKm(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}

func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}
