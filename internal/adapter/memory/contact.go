package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// ContactRepo keeps contacts per owner in insertion order.
type ContactRepo struct {
	mu      sync.RWMutex
	byOwner map[string][]models.EmergencyContact
}

func NewContactRepo() *ContactRepo {
	return &ContactRepo{byOwner: make(map[string][]models.EmergencyContact)}
}

func (r *ContactRepo) Create(ctx context.Context, c *models.EmergencyContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byOwner[c.OwnerID] = append(r.byOwner[c.OwnerID], *c)
	return nil
}

func (r *ContactRepo) List(ctx context.Context, ownerID string) ([]models.EmergencyContact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.byOwner[ownerID]), nil
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, contactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOwner[ownerID]
	i := slices.IndexFunc(list, func(c models.EmergencyContact) bool { return c.ID == contactID })
	if i < 0 {
		return types.ErrContactNotFound
	}
	r.byOwner[ownerID] = slices.Delete(list, i, i+1)
	return nil
}
