package route

import (
	"context"
	"fmt"
	"math"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/geo"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

type AlertSource interface {
	ListActive(ctx context.Context, filter models.LocationFilter) ([]models.DisasterAlert, error)
}

// Planner estimates a straight-line route and flags active alert zones on it.
type Planner struct {
	alerts   AlertSource
	avgSpeed float64
	l        logger.Logger
}

func New(alerts AlertSource, avgSpeedKmh float64, l logger.Logger) *Planner {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = 40
	}
	return &Planner{alerts: alerts, avgSpeed: avgSpeedKmh, l: l}
}

func (p *Planner) SafeRoute(ctx context.Context, from, to models.Location) (*models.SafeRoute, error) {
	if !from.Valid() || !to.Valid() {
		return nil, types.Invalid("route coordinates are out of range")
	}

	midLat, midLng := geo.Midpoint(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	waypoints := []models.Location{
		from,
		{Latitude: midLat, Longitude: midLng},
		to,
	}

	distance := from.DistanceKm(to)
	route := &models.SafeRoute{
		From:        from,
		To:          to,
		DistanceKm:  round2(distance),
		DurationMin: round2(geo.TravelMinutes(distance, p.avgSpeed)),
		Waypoints:   waypoints,
		DangerZones: []models.DisasterAlert{},
	}

	active, err := p.alerts.ListActive(ctx, models.LocationFilter{})
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("load active alerts: %w", err))
	}

	for _, a := range active {
		if !crosses(a, waypoints) {
			continue
		}
		route.DangerZones = append(route.DangerZones, a)
		route.Warnings = append(route.Warnings, fmt.Sprintf("route passes through %s (%s severity)", a.Title, a.Severity))
	}
	route.Safe = len(route.DangerZones) == 0

	return route, nil
}

func crosses(a models.DisasterAlert, waypoints []models.Location) bool {
	for _, w := range waypoints {
		if w.DistanceKm(a.Coordinates) <= a.RadiusKm {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
