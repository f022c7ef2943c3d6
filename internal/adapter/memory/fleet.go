package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
)

// Fleet is an upstream ambulance feed held in memory.
type Fleet struct {
	mu         sync.RWMutex
	ambulances []models.Ambulance
}

func NewFleet(ambulances []models.Ambulance) *Fleet {
	return &Fleet{ambulances: slices.Clone(ambulances)}
}

func (f *Fleet) ListAmbulances(ctx context.Context) ([]models.Ambulance, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Clone(f.ambulances), nil
}

// Set replaces the feed content.
func (f *Fleet) Set(ambulances []models.Ambulance) {
	f.mu.Lock()
	f.ambulances = slices.Clone(ambulances)
	f.mu.Unlock()
}
