package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// San Francisco -> Los Angeles
	d := HaversineKm(37.7749, -122.4194, 34.0522, -118.2437)
	assert.InDelta(t, 559, d, 2)

	assert.InDelta(t, 0, HaversineKm(1, 1, 1, 1), 1e-9)
}

func TestOffsetNorthKm(t *testing.T) {
	lat := OffsetNorthKm(37.7749, 2)
	assert.InDelta(t, 2, HaversineKm(37.7749, -122.4194, lat, -122.4194), 1e-6)
}

func TestTravelMinutes(t *testing.T) {
	assert.InDelta(t, 3, TravelMinutes(2, 40), 1e-9)
	assert.Zero(t, TravelMinutes(2, 0))
}
