package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type SOSRepo struct {
	mu     sync.Mutex
	events map[string]models.SOSEvent
}

func NewSOSRepo() *SOSRepo {
	return &SOSRepo{events: make(map[string]models.SOSEvent)}
}

func (r *SOSRepo) Create(ctx context.Context, e *models.SOSEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[e.ID]; ok {
		return types.ErrStaleState
	}
	r.events[e.ID] = *e
	return nil
}

func (r *SOSRepo) Get(ctx context.Context, id string) (*models.SOSEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, types.ErrEventNotFound
	}
	return &e, nil
}

func (r *SOSRepo) Transition(ctx context.Context, id string, from types.SOSStatus, mutate func(e *models.SOSEvent)) (*models.SOSEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.events[id]
	if !ok {
		return nil, types.ErrEventNotFound
	}
	if e.Status != from {
		return nil, types.ErrStaleState
	}

	mutate(&e)
	if e.Status != from && !from.CanTransition(e.Status) {
		return nil, types.ErrConflict
	}
	r.events[id] = e

	return &e, nil
}

// ListByRequester returns a user's events, newest first.
func (r *SOSRepo) ListByRequester(ctx context.Context, userID string, limit int) ([]models.SOSEvent, error) {
	r.mu.Lock()
	out := make([]models.SOSEvent, 0)
	for _, e := range r.events {
		if e.RequesterID == userID {
			out = append(out, e)
		}
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b models.SOSEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListStalled returns non-terminal events not touched since before.
func (r *SOSRepo) ListStalled(ctx context.Context, before time.Time) ([]models.SOSEvent, error) {
	r.mu.Lock()
	out := make([]models.SOSEvent, 0)
	for _, e := range r.events {
		if !e.Status.IsTerminal() && e.UpdatedAt.Before(before) {
			out = append(out, e)
		}
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b models.SOSEvent) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
