package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type BookingRepo struct {
	mu    sync.Mutex
	byID  map[string]models.Booking
	byKey map[string]string
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{
		byID:  make(map[string]models.Booking),
		byKey: make(map[string]string),
	}
}

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[b.ID]; ok {
		return types.ErrStaleState
	}
	if b.IdempotencyKey != "" {
		if _, ok := r.byKey[b.IdempotencyKey]; ok {
			return types.ErrIdempotencyKeyUsed
		}
		r.byKey[b.IdempotencyKey] = b.ID
	}
	r.byID[b.ID] = *b
	return nil
}

func (r *BookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byKey[key]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	b := r.byID[id]
	return &b, nil
}

func (r *BookingRepo) Transition(ctx context.Context, id string, from types.BookingStatus, mutate func(b *models.Booking)) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, types.ErrBookingNotFound
	}
	if b.Status != from {
		return nil, types.ErrStaleState
	}

	mutate(&b)
	if b.Status != from && !from.CanTransition(b.Status) {
		return nil, types.ErrConflict
	}
	r.byID[id] = b

	return &b, nil
}

// ListByStatus returns bookings in any of statuses, oldest request first.
func (r *BookingRepo) ListByStatus(ctx context.Context, statuses ...types.BookingStatus) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range r.byID {
		if slices.Contains(statuses, b.Status) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b models.Booking) int {
		if c := a.RequestedAt.Compare(b.RequestedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
