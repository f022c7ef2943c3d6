package registry

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
)

// Feed is the upstream source of ambulance positions and availability.
type Feed interface {
	ListAmbulances(ctx context.Context) ([]models.Ambulance, error)
}

type Options struct {
	// HoldTTL bounds an uncommitted reservation.
	HoldTTL     time.Duration
	AvgSpeedKmh float64
	Now         func() time.Time
}

/*
Registry keeps the live view of the fleet. Every ambulance owns one
reservation slot guarded by its own mutex, so reserve on one ambulance never
waits on another.
*/
type Registry struct {
	mu    sync.RWMutex
	units map[string]*unit

	holdTTL  time.Duration
	avgSpeed float64
	now      func() time.Time
	l        logger.Logger
}

type unit struct {
	mu   sync.Mutex
	amb  models.Ambulance
	hold *models.Reservation
}

func New(opts Options, l logger.Logger) *Registry {
	if opts.HoldTTL <= 0 {
		opts.HoldTTL = 30 * time.Second
	}
	if opts.AvgSpeedKmh <= 0 {
		opts.AvgSpeedKmh = 40
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Registry{
		units:    make(map[string]*unit),
		holdTTL:  opts.HoldTTL,
		avgSpeed: opts.AvgSpeedKmh,
		now:      opts.Now,
		l:        l,
	}
}

// Upsert applies a feed update. The reservation slot is left untouched.
func (r *Registry) Upsert(amb models.Ambulance) {
	r.mu.Lock()
	u, ok := r.units[amb.ID]
	if !ok {
		r.units[amb.ID] = &unit{amb: amb}
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	u.mu.Lock()
	u.amb = amb
	u.mu.Unlock()
}

// Sync pulls the whole fleet from feed. Ambulances missing from the feed are marked unavailable.
func (r *Registry) Sync(ctx context.Context, feed Feed) error {
	ctx = wrap.WithAction(ctx, types.ActionRegistrySync)

	fleet, err := feed.ListAmbulances(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("list ambulances from feed: %w", err))
	}

	seen := make(map[string]struct{}, len(fleet))
	for _, amb := range fleet {
		seen[amb.ID] = struct{}{}
		r.Upsert(amb)
	}

	for _, u := range r.snapshot() {
		u.mu.Lock()
		if _, ok := seen[u.amb.ID]; !ok && u.amb.Available {
			u.amb.Available = false
			r.l.Warn(ctx, "ambulance dropped from feed, marked unavailable", "ambulance_id", u.amb.ID)
		}
		u.mu.Unlock()
	}

	r.l.Debug(ctx, "registry synced", "ambulances", len(fleet))
	return nil
}

// List returns ambulances within radiusKm of loc, nearest first, ties by id.
func (r *Registry) List(ctx context.Context, loc models.Location, radiusKm float64) []models.AmbulanceDistance {
	now := r.now()

	out := make([]models.AmbulanceDistance, 0)
	for _, u := range r.snapshot() {
		u.mu.Lock()
		amb := u.amb
		held := u.hold != nil && !u.hold.Expired(now)
		u.mu.Unlock()

		d := loc.DistanceKm(amb.Location)
		if d > radiusKm {
			continue
		}
		out = append(out, models.AmbulanceDistance{
			Ambulance:  amb,
			DistanceKm: d,
			ETAMinutes: amb.ETAMinutes(d, r.avgSpeed),
			Available:  amb.Available && !held,
		})
	}

	slices.SortFunc(out, func(a, b models.AmbulanceDistance) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out
}

// Reserve places a time-bounded hold on the ambulance for holder.
// Exactly one of several concurrent callers succeeds; the rest get ErrAlreadyReserved.
func (r *Registry) Reserve(ctx context.Context, ambulanceID, holder string) (models.Reservation, error) {
	ctx = wrap.WithAction(ctx, types.ActionReserve)

	u, ok := r.get(ambulanceID)
	if !ok {
		return models.Reservation{}, wrap.Error(ctx, types.ErrAmbulanceNotFound)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	now := r.now()
	if u.hold != nil && !u.hold.Expired(now) {
		metrics.ReservationConflicts.Inc()
		return models.Reservation{}, wrap.Error(ctx, types.ErrAlreadyReserved)
	}
	if !u.amb.Available {
		return models.Reservation{}, wrap.Error(ctx, types.ErrResourceUnavailable)
	}

	if u.hold == nil {
		metrics.ReservationHoldsGauge.Inc()
	}
	res := models.Reservation{
		AmbulanceID: ambulanceID,
		Token:       uuid.NewString(),
		Holder:      holder,
		CreatedAt:   now,
		ExpiresAt:   now.Add(r.holdTTL),
	}
	u.hold = &res

	return res, nil
}

// Confirm commits the hold identified by token so it no longer expires.
func (r *Registry) Confirm(ctx context.Context, ambulanceID, token string) error {
	u, ok := r.get(ambulanceID)
	if !ok {
		return wrap.Error(ctx, types.ErrAmbulanceNotFound)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.hold == nil || u.hold.Token != token || u.hold.Expired(r.now()) {
		return wrap.Error(ctx, types.ErrReservationMismatch)
	}
	u.hold.ExpiresAt = time.Time{}

	return nil
}

// Release frees the ambulance if token still owns it. A stale token changes nothing.
func (r *Registry) Release(ctx context.Context, ambulanceID, token string) error {
	u, ok := r.get(ambulanceID)
	if !ok {
		return wrap.Error(ctx, types.ErrAmbulanceNotFound)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.hold == nil || u.hold.Token != token {
		return wrap.Error(ctx, types.ErrReservationMismatch)
	}
	u.hold = nil
	metrics.ReservationHoldsGauge.Dec()

	return nil
}

// Restore puts back a committed hold recorded by a Confirmed booking, e.g. after a restart.
// Restoring the same token twice is a no-op; a different live holder is ErrAlreadyReserved.
func (r *Registry) Restore(ctx context.Context, ambulanceID, token, holder string) error {
	u, ok := r.get(ambulanceID)
	if !ok {
		return wrap.Error(ctx, types.ErrAmbulanceNotFound)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.hold != nil && !u.hold.Expired(r.now()) {
		if u.hold.Token == token {
			u.hold.ExpiresAt = time.Time{}
			return nil
		}
		return wrap.Error(ctx, types.ErrAlreadyReserved)
	}

	if u.hold == nil {
		metrics.ReservationHoldsGauge.Inc()
	}
	u.hold = &models.Reservation{
		AmbulanceID: ambulanceID,
		Token:       token,
		Holder:      holder,
		CreatedAt:   r.now(),
	}
	return nil
}

// Reservation reports the live hold on an ambulance, if any.
func (r *Registry) Reservation(ambulanceID string) (models.Reservation, bool) {
	u, ok := r.get(ambulanceID)
	if !ok {
		return models.Reservation{}, false
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.hold == nil || u.hold.Expired(r.now()) {
		return models.Reservation{}, false
	}
	return *u.hold, true
}

// SweepExpired drops uncommitted holds past their TTL and returns how many were freed.
func (r *Registry) SweepExpired(ctx context.Context) int {
	ctx = wrap.WithAction(ctx, types.ActionSweepHolds)
	now := r.now()

	freed := 0
	for _, u := range r.snapshot() {
		u.mu.Lock()
		if u.hold != nil && u.hold.Expired(now) {
			r.l.Warn(ctx, "reservation hold expired", "ambulance_id", u.amb.ID, "holder", u.hold.Holder)
			u.hold = nil
			metrics.ReservationHoldsGauge.Dec()
			freed++
		}
		u.mu.Unlock()
	}

	return freed
}

func (r *Registry) get(id string) (*unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[id]
	return u, ok
}

func (r *Registry) snapshot() []*unit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]*unit, 0, len(r.units))
	for _, u := range r.units {
		units = append(units, u)
	}
	return units
}
