package models

import (
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type Hospital struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Address           string   `json:"address"`
	Location          Location `json:"location"`
	Phone             string   `json:"phone"`
	Specialties       []string `json:"specialties"`
	EmergencyServices bool     `json:"emergency_services"`
	Rating            float64  `json:"rating"`
	DistanceKm        *float64 `json:"distance_km,omitempty"`

	Departments      []string `json:"departments,omitempty"`
	CurrentWaitMin   int      `json:"current_wait_time_minutes,omitempty"`
	BedsAvailable    int      `json:"bed_availability,omitempty"`
	AcceptsInsurance bool     `json:"accepts_insurance"`
	EmergencyContact string   `json:"emergency_contact,omitempty"`
}

type NewsItem struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Summary     string             `json:"summary"`
	Content     string             `json:"content"`
	Category    string             `json:"category"`
	Location    string             `json:"location,omitempty"`
	PublishedAt time.Time          `json:"published_at"`
	ImageURL    string             `json:"image_url,omitempty"`
	Source      string             `json:"source"`
	Priority    types.NewsPriority `json:"priority"`
}

type NewsCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type NewsFilter struct {
	Category string
	Priority types.NewsPriority
	Limit    int
}

type SafeRoute struct {
	From        Location        `json:"from"`
	To          Location        `json:"to"`
	DistanceKm  float64         `json:"distance_km"`
	DurationMin float64         `json:"duration_minutes"`
	Waypoints   []Location      `json:"waypoints"`
	DangerZones []DisasterAlert `json:"danger_zones"`
	Warnings    []string        `json:"warnings,omitempty"`
	Safe        bool            `json:"safe"`
}
