// Package seed holds the demo data loaded by the memory driver and by an empty postgres schema.
package seed

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

func cost(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func Ambulances() []models.Ambulance {
	return []models.Ambulance{
		{
			ID:               "amb-city-emergency",
			Name:             "City Emergency Ambulance",
			Type:             types.AmbulancePublic,
			Location:         models.Location{Latitude: 37.7749, Longitude: -122.4194, Address: "San Francisco, CA"},
			Phone:            "+1-555-3674",
			Rating:           4.8,
			Available:        true,
			DispatchDelayMin: 8,
		},
		{
			ID:               "amb-quickcare",
			Name:             "QuickCare Ambulance Service",
			Type:             types.AmbulancePrivate,
			Location:         models.Location{Latitude: 37.7849, Longitude: -122.4094, Address: "Downtown SF, CA"},
			Phone:            "+1-555-7842",
			Rating:           4.6,
			Available:        true,
			Cost:             cost(150),
			DispatchDelayMin: 3,
		},
		{
			ID:               "amb-lifeline",
			Name:             "LifeLine Emergency Services",
			Type:             types.AmbulancePrivate,
			Location:         models.Location{Latitude: 37.7649, Longitude: -122.4294, Address: "Mission District, SF"},
			Phone:            "+1-555-5433",
			Rating:           4.4,
			Available:        true,
			Cost:             cost(120),
			DispatchDelayMin: 10,
		},
	}
}

func Hospitals() []models.Hospital {
	return []models.Hospital{
		{
			ID:                "hosp-sf-general",
			Name:              "San Francisco General Hospital",
			Address:           "1001 Potrero Ave, San Francisco, CA 94110",
			Location:          models.Location{Latitude: 37.7576, Longitude: -122.4086, Address: "1001 Potrero Ave, SF"},
			Phone:             "+1-415-206-8000",
			Specialties:       []string{"Emergency Medicine", "Trauma", "Cardiology", "Surgery"},
			EmergencyServices: true,
			Rating:            4.5,
			Departments:       []string{"Emergency", "Trauma Center", "ICU", "Cardiology", "Surgery"},
			CurrentWaitMin:    25,
			BedsAvailable:     12,
			AcceptsInsurance:  true,
			EmergencyContact:  "+1-415-206-8111",
		},
		{
			ID:                "hosp-ucsf",
			Name:              "UCSF Medical Center",
			Address:           "505 Parnassus Ave, San Francisco, CA 94143",
			Location:          models.Location{Latitude: 37.7631, Longitude: -122.4583, Address: "505 Parnassus Ave, SF"},
			Phone:             "+1-415-476-1000",
			Specialties:       []string{"Neurology", "Oncology", "Pediatrics", "Emergency Medicine"},
			EmergencyServices: true,
			Rating:            4.8,
			Departments:       []string{"Emergency", "Neurology", "Oncology", "Pediatrics"},
			CurrentWaitMin:    40,
			BedsAvailable:     7,
			AcceptsInsurance:  true,
			EmergencyContact:  "+1-415-353-1238",
		},
		{
			ID:                "hosp-st-marys",
			Name:              "St. Mary's Medical Center",
			Address:           "450 Stanyan St, San Francisco, CA 94117",
			Location:          models.Location{Latitude: 37.7686, Longitude: -122.4536, Address: "450 Stanyan St, SF"},
			Phone:             "+1-415-668-1000",
			Specialties:       []string{"Emergency Medicine", "Orthopedics", "Cardiology"},
			EmergencyServices: true,
			Rating:            4.2,
			Departments:       []string{"Emergency", "Orthopedics", "Cardiology"},
			CurrentWaitMin:    15,
			BedsAvailable:     4,
			AcceptsInsurance:  true,
			EmergencyContact:  "+1-415-750-5800",
		},
	}
}

// Alerts returns the demo alerts issued at now.
func Alerts(now time.Time) []models.DisasterAlert {
	return []models.DisasterAlert{
		{
			ID:           "alert-mission-flood",
			Title:        "Flood Warning - Mission District",
			Description:  "Heavy rainfall has caused flooding in low-lying areas of Mission District. Avoid driving through flooded streets.",
			Type:         "flood",
			Severity:     types.SeverityMedium,
			AffectedArea: "Mission District, San Francisco",
			Coordinates:  models.Location{Latitude: 37.7599, Longitude: -122.4148, Address: "Mission District, SF"},
			RadiusKm:     2,
			IssuedAt:     now,
			ExpiresAt:    now.Add(6 * time.Hour),
			SafetyTips: []string{
				"Avoid driving through flooded roads",
				"Stay on higher ground",
				"Monitor local emergency broadcasts",
				"Keep emergency supplies ready",
			},
		},
		{
			ID:           "alert-bay-fire-risk",
			Title:        "High Fire Risk - Bay Area",
			Description:  "Dry conditions and high winds create elevated fire risk. Avoid outdoor burning and report smoke immediately.",
			Type:         "fire",
			Severity:     types.SeverityHigh,
			AffectedArea: "San Francisco Bay Area",
			Coordinates:  models.Location{Latitude: 37.7749, Longitude: -122.4194, Address: "San Francisco Bay Area"},
			RadiusKm:     25,
			IssuedAt:     now.Add(-time.Minute),
			ExpiresAt:    now.Add(24 * time.Hour),
			SafetyTips: []string{
				"Avoid outdoor burning",
				"Clear vegetation around homes",
				"Prepare evacuation kit",
				"Monitor emergency alerts",
			},
		},
	}
}

func News(now time.Time) []models.NewsItem {
	return []models.NewsItem{
		{
			ID:          "news-downtown-fire",
			Title:       "San Francisco Emergency Response Team Saves Lives in Downtown Fire",
			Summary:     "Quick response by SF Fire Department and paramedics resulted in successful evacuation of 50+ people from office building.",
			Content:     "San Francisco's emergency response teams evacuated over 50 people from a downtown office building following an electrical fire on the 12th floor. Firefighters, paramedics and police worked together and nobody was hurt.",
			Category:    types.NewsEmergencyResponse,
			Location:    "Downtown San Francisco",
			PublishedAt: now.Add(-8 * time.Hour),
			ImageURL:    "https://images.unsplash.com/photo-1554734867-bf3c00a49371",
			Source:      "EmergiLink News",
			Priority:    types.PriorityHigh,
		},
		{
			ID:          "news-dispatch-times",
			Title:       "New Emergency Alert System Reduces Response Times by 40%",
			Summary:     "City-wide implementation of advanced emergency dispatch technology shows significant improvement in response efficiency.",
			Content:     "The new dispatch system integrates real-time traffic data, resource availability and incident severity scoring. Average emergency response times dropped by 40% in its first quarter of operation.",
			Category:    types.NewsSafetyUpdate,
			Location:    "San Francisco Bay Area",
			PublishedAt: now.Add(-16 * time.Hour),
			ImageURL:    "https://images.unsplash.com/photo-1599152097274-5da4c5979b9b",
			Source:      "EmergiLink News",
			Priority:    types.PriorityNormal,
		},
		{
			ID:          "news-preparedness-workshop",
			Title:       "Community Emergency Preparedness Workshop This Weekend",
			Summary:     "Free disaster preparedness training available for all Bay Area residents at Civic Center.",
			Content:     "The Department of Emergency Management hosts a preparedness workshop this Saturday at the Civic Center covering earthquake safety, fire evacuation, emergency kits and family communication plans. Registration is free.",
			Category:    types.NewsCommunityAlert,
			Location:    "San Francisco Civic Center",
			PublishedAt: now.Add(-24 * time.Hour),
			ImageURL:    "https://images.unsplash.com/photo-1619025873875-59dfdd2bbbd6",
			Source:      "EmergiLink News",
			Priority:    types.PriorityNormal,
		},
		{
			ID:          "news-quake-early-warning",
			Title:       "Earthquake Early Warning System Successfully Alerts Residents",
			Summary:     "Recent 4.2 magnitude earthquake triggered automated alerts 15 seconds before shaking began.",
			Content:     "The Bay Area's earthquake early warning system alerted residents 15 seconds before shaking from a 4.2 magnitude earthquake near Hayward, leaving time to take protective action.",
			Category:    types.NewsDisasterRelief,
			Location:    "Bay Area",
			PublishedAt: now.Add(-48 * time.Hour),
			ImageURL:    "https://images.unsplash.com/photo-1554734867-bf3c00a49371",
			Source:      "EmergiLink News",
			Priority:    types.PriorityHigh,
		},
	}
}
