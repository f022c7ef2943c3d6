package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type AlertRepo struct {
	mu     sync.RWMutex
	alerts map[string]models.DisasterAlert
}

func NewAlertRepo() *AlertRepo {
	return &AlertRepo{alerts: make(map[string]models.DisasterAlert)}
}

// Upsert stores a by id, replacing any previous version.
func (r *AlertRepo) Upsert(ctx context.Context, a *models.DisasterAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *a
	stored.SafetyTips = slices.Clone(a.SafetyTips)
	r.alerts[a.ID] = stored
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id string) (*models.DisasterAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, types.ErrAlertNotFound
	}
	a.SafetyTips = slices.Clone(a.SafetyTips)
	return &a, nil
}

// List returns every stored alert, newest first.
func (r *AlertRepo) List(ctx context.Context) ([]models.DisasterAlert, error) {
	r.mu.RLock()
	out := make([]models.DisasterAlert, 0, len(r.alerts))
	for _, a := range r.alerts {
		a.SafetyTips = slices.Clone(a.SafetyTips)
		out = append(out, a)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.DisasterAlert) int {
		if c := b.IssuedAt.Compare(a.IssuedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
