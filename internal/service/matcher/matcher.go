package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
)

/*
Matcher assigns an ambulance to a booking request. Booking state only moves
through BookingRepo.Transition, which is a compare-and-set on the status, so a
concurrent cancel and the matcher's own progress never both win.
*/
type Matcher struct {
	registry  Registry
	repo      BookingRepo
	publisher Publisher
	cutoff    CutoffPolicy
	policy    Policy
	now       func() time.Time
	l         logger.Logger
}

type Option func(*Matcher)

func WithPublisher(p Publisher) Option {
	return func(m *Matcher) {
		if p != nil {
			m.publisher = p
		}
	}
}

func WithCutoff(c CutoffPolicy) Option {
	return func(m *Matcher) {
		if c != nil {
			m.cutoff = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

func New(registry Registry, repo BookingRepo, policy Policy, l logger.Logger, opts ...Option) *Matcher {
	m := &Matcher{
		registry:  registry,
		repo:      repo,
		publisher: nopPublisher{},
		cutoff:    WindowCutoff{Window: 2 * time.Minute},
		policy:    policy.withDefaults(),
		now:       time.Now,
		l:         l,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type hold struct {
	candidate   models.AmbulanceDistance
	reservation models.Reservation
}

// RequestBooking creates a booking and drives it to Confirmed or Failed.
// On NoAvailableResource and MatchTimeout the Failed booking is returned along with the error.
func (m *Matcher) RequestBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionRequestBooking, UserID: in.RequesterID})

	if err := validateInput(in); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if in.IdempotencyKey != "" {
		existing, err := m.repo.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil {
			m.l.Debug(ctx, "booking already exists for idempotency key", "booking_id", existing.ID)
			return existing, nil
		}
		if !errors.Is(err, types.ErrNotFound) {
			return nil, wrap.Error(ctx, fmt.Errorf("lookup idempotency key: %w", err))
		}
	}

	now := m.now()
	booking := &models.Booking{
		ID:                   uuid.NewString(),
		RequesterID:          in.RequesterID,
		Pickup:               in.Pickup,
		PreferredAmbulanceID: in.PreferredAmbulanceID,
		IdempotencyKey:       in.IdempotencyKey,
		Status:               types.BookingPending,
		RequestedAt:          now,
		UpdatedAt:            now,
	}
	if err := m.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, types.ErrIdempotencyKeyUsed) {
			// a concurrent request with the same key created it first
			existing, gerr := m.repo.GetByIdempotencyKey(ctx, in.IdempotencyKey)
			if gerr == nil {
				return existing, nil
			}
			err = fmt.Errorf("%w: reload: %w", err, gerr)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("create booking: %w", err))
	}
	ctx = wrap.WithBookingID(ctx, booking.ID)
	metrics.BookingsTotal.WithLabelValues(types.BookingPending.String()).Inc()

	start := time.Now()
	matchCtx, cancel := context.WithTimeout(ctx, m.policy.Budget)
	h, err := m.match(matchCtx, booking)
	cancel()

	// the match deadline must not abort the bookkeeping that follows
	ctx = context.WithoutCancel(ctx)

	if err != nil {
		metrics.RecordMatch(types.KindOf(err).String(), time.Since(start))
		m.l.Warn(ctx, "matching failed", "reason", err.Error())
		failed, ferr := m.fail(ctx, booking.ID, types.BookingPending, err)
		if ferr != nil {
			return nil, ferr
		}
		if failed.Status == types.BookingCancelled {
			return failed, nil
		}
		return failed, wrap.Error(ctx, err)
	}
	metrics.RecordMatch("matched", time.Since(start))

	return m.confirm(ctx, booking.ID, h)
}

// match walks the radius schedule and reserves the best candidate, spending at most MaxAttempts reserve calls.
func (m *Matcher) match(ctx context.Context, b *models.Booking) (hold, error) {
	tried := make(map[string]struct{})
	attempts := 0

	for _, radius := range m.policy.Radii() {
		if ctx.Err() != nil {
			return hold{}, types.ErrMatchTimeout
		}

		candidates := rank(m.registry.List(ctx, b.Pickup, radius), tried, b.PreferredAmbulanceID, m.policy.CostWeight)
		m.l.Debug(ctx, "searching ambulances", "radius_km", radius, "candidates", len(candidates))

		for _, c := range candidates {
			if attempts >= m.policy.MaxAttempts {
				return hold{}, types.ErrNoAvailableResource
			}
			if ctx.Err() != nil {
				return hold{}, types.ErrMatchTimeout
			}
			attempts++
			tried[c.ID] = struct{}{}

			res, err := m.registry.Reserve(ctx, c.ID, b.ID)
			if err == nil {
				return hold{candidate: c, reservation: res}, nil
			}
			if errors.Is(err, types.ErrAlreadyReserved) || errors.Is(err, types.ErrResourceUnavailable) {
				m.l.Debug(ctx, "candidate taken, trying next", "ambulance_id", c.ID, "attempt", attempts)
				continue
			}
			return hold{}, err
		}
	}

	if ctx.Err() != nil {
		return hold{}, types.ErrMatchTimeout
	}
	return hold{}, types.ErrNoAvailableResource
}

// confirm moves Pending -> Matched -> Confirmed around committing the hold.
func (m *Matcher) confirm(ctx context.Context, bookingID string, h hold) (*models.Booking, error) {
	c, res := h.candidate, h.reservation

	matched, err := m.repo.Transition(ctx, bookingID, types.BookingPending, func(b *models.Booking) {
		now := m.now()
		arrival := now.Add(time.Duration(c.ETAMinutes * float64(time.Minute)))
		b.Status = types.BookingMatched
		b.AmbulanceID = c.ID
		b.ReservationToken = res.Token
		b.DistanceKm = c.DistanceKm
		b.ETAMinutes = c.ETAMinutes
		b.EstimatedArrival = &arrival
		b.MatchedAt = &now
		b.UpdatedAt = now
	})
	if err != nil {
		m.release(ctx, c.ID, res.Token)
		if errors.Is(err, types.ErrStaleState) {
			m.l.Info(ctx, "booking changed while matching, hold released", "ambulance_id", c.ID)
			return m.current(ctx, bookingID)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("mark booking matched: %w", err))
	}
	m.publish(ctx, matched, "")

	if err := m.registry.Confirm(ctx, c.ID, res.Token); err != nil {
		m.l.Error(wrap.ErrorCtx(ctx, err), "reservation hold lost before confirmation", err, "ambulance_id", c.ID)
		failed, ferr := m.fail(ctx, bookingID, types.BookingMatched, types.ErrNoAvailableResource)
		if ferr != nil {
			return nil, ferr
		}
		if failed.Status == types.BookingCancelled {
			return failed, nil
		}
		return failed, wrap.Error(ctx, types.ErrNoAvailableResource)
	}

	confirmed, err := m.repo.Transition(ctx, bookingID, types.BookingMatched, func(b *models.Booking) {
		now := m.now()
		b.Status = types.BookingConfirmed
		b.ConfirmedAt = &now
		b.UpdatedAt = now
	})
	if err != nil {
		if errors.Is(err, types.ErrStaleState) {
			// a cancel landed between Matched and Confirmed and already released the hold
			return m.current(ctx, bookingID)
		}
		m.release(ctx, c.ID, res.Token)
		return nil, wrap.Error(ctx, fmt.Errorf("mark booking confirmed: %w", err))
	}

	metrics.BookingsTotal.WithLabelValues(types.BookingConfirmed.String()).Inc()
	m.publish(ctx, confirmed, "")
	m.l.Info(ctx, "ambulance booked",
		"ambulance_id", confirmed.AmbulanceID,
		"distance_km", confirmed.DistanceKm,
		"eta_minutes", confirmed.ETAMinutes,
	)

	return confirmed, nil
}

// fail marks the booking Failed with the error kind as reason. A booking that was
// cancelled in the meantime is returned unchanged.
func (m *Matcher) fail(ctx context.Context, bookingID string, from types.BookingStatus, cause error) (*models.Booking, error) {
	failed, err := m.repo.Transition(ctx, bookingID, from, func(b *models.Booking) {
		now := m.now()
		b.Status = types.BookingFailed
		b.FailureReason = types.KindOf(cause).String()
		b.FailedAt = &now
		b.UpdatedAt = now
	})
	if err != nil {
		if errors.Is(err, types.ErrStaleState) {
			return m.current(ctx, bookingID)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("mark booking failed: %w", err))
	}

	metrics.BookingsTotal.WithLabelValues(types.BookingFailed.String()).Inc()
	m.publish(ctx, failed, failed.FailureReason)
	return failed, nil
}

// CancelBooking cancels a live booking and frees its ambulance.
func (m *Matcher) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionCancelBooking, BookingID: bookingID})

	// the matcher may advance the booking between our read and write; re-read and retry
	for range 3 {
		b, err := m.repo.Get(ctx, bookingID)
		if err != nil {
			return nil, wrap.Error(ctx, err)
		}

		if b.Status.IsTerminal() {
			return nil, wrap.Error(ctx, types.ErrBookingTerminal)
		}
		if b.Status == types.BookingConfirmed && !m.cutoff.CancelAllowed(*b, m.now()) {
			return nil, wrap.Error(ctx, types.ErrCancelCutoffPassed)
		}

		cancelled, err := m.repo.Transition(ctx, bookingID, b.Status, func(b *models.Booking) {
			now := m.now()
			b.Status = types.BookingCancelled
			b.CancelledAt = &now
			b.UpdatedAt = now
		})
		if errors.Is(err, types.ErrStaleState) {
			continue
		}
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("mark booking cancelled: %w", err))
		}

		if cancelled.AmbulanceID != "" && cancelled.ReservationToken != "" {
			m.release(ctx, cancelled.AmbulanceID, cancelled.ReservationToken)
		}

		metrics.BookingsTotal.WithLabelValues(types.BookingCancelled.String()).Inc()
		m.publish(ctx, cancelled, "cancelled by requester")
		m.l.Info(ctx, "booking cancelled", "previous_status", b.Status.String())

		return cancelled, nil
	}

	return nil, wrap.Error(ctx, types.ErrStaleState)
}

// CompleteBooking closes a Confirmed booking once the ambulance is done and frees it
// for the next request. Completing an already Completed booking returns it unchanged.
func (m *Matcher) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionCompleteBooking, BookingID: bookingID})

	b, err := m.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	switch {
	case b.Status == types.BookingCompleted:
		return b, nil
	case b.Status.IsTerminal():
		return nil, wrap.Error(ctx, types.ErrBookingTerminal)
	case b.Status != types.BookingConfirmed:
		return nil, wrap.Error(ctx, types.ErrBookingNotActive)
	}

	completed, err := m.repo.Transition(ctx, bookingID, types.BookingConfirmed, func(b *models.Booking) {
		now := m.now()
		b.Status = types.BookingCompleted
		b.CompletedAt = &now
		b.UpdatedAt = now
	})
	if errors.Is(err, types.ErrStaleState) {
		cur, cerr := m.current(ctx, bookingID)
		if cerr != nil {
			return nil, cerr
		}
		if cur.Status == types.BookingCompleted {
			return cur, nil
		}
		return nil, wrap.Error(ctx, types.ErrBookingTerminal)
	}
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("mark booking completed: %w", err))
	}

	m.release(ctx, completed.AmbulanceID, completed.ReservationToken)
	metrics.BookingsTotal.WithLabelValues(types.BookingCompleted.String()).Inc()
	m.publish(ctx, completed, "")
	m.l.Info(ctx, "booking completed", "ambulance_id", completed.AmbulanceID)

	return completed, nil
}

// CompleteStale completes Confirmed bookings older than maxAge, so an ambulance
// whose crew never reported back returns to the pool.
func (m *Matcher) CompleteStale(ctx context.Context, maxAge time.Duration) (int, error) {
	ctx = wrap.WithAction(ctx, types.ActionCompleteBooking)

	confirmed, err := m.repo.ListByStatus(ctx, types.BookingConfirmed)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("list confirmed bookings: %w", err))
	}

	cutoff := m.now().Add(-maxAge)
	done := 0
	for _, b := range confirmed {
		if b.ConfirmedAt == nil || b.ConfirmedAt.After(cutoff) {
			continue
		}
		if _, err := m.CompleteBooking(ctx, b.ID); err != nil {
			m.l.Warn(wrap.WithBookingID(ctx, b.ID), "failed to complete stale booking", "error", err.Error())
			continue
		}
		done++
	}
	if done > 0 {
		m.l.Info(ctx, "stale bookings completed", "count", done, "max_age", maxAge.String())
	}
	return done, nil
}

// RestoreHolds rebuilds the registry's reservation slots from stored bookings.
// Confirmed bookings get their committed hold back. Pending and Matched bookings
// lost their matcher with the previous process and are failed with MatchTimeout.
func (m *Matcher) RestoreHolds(ctx context.Context) (int, error) {
	ctx = wrap.WithAction(ctx, types.ActionRestoreHolds)

	live, err := m.repo.ListByStatus(ctx, types.BookingPending, types.BookingMatched, types.BookingConfirmed)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("list live bookings: %w", err))
	}

	restored := 0
	for _, b := range live {
		bctx := wrap.WithBookingID(ctx, b.ID)

		if b.Status != types.BookingConfirmed {
			if _, err := m.fail(bctx, b.ID, b.Status, types.ErrMatchTimeout); err != nil {
				m.l.Warn(bctx, "failed to close orphaned booking", "status", b.Status.String(), "error", err.Error())
			}
			continue
		}

		if err := m.registry.Restore(bctx, b.AmbulanceID, b.ReservationToken, b.ID); err != nil {
			m.l.Error(wrap.ErrorCtx(bctx, err), "failed to restore reservation hold", err, "ambulance_id", b.AmbulanceID)
			continue
		}
		restored++
	}

	m.l.Info(ctx, "reservation holds restored", "holds", restored, "live_bookings", len(live))
	return restored, nil
}

func (m *Matcher) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := m.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(wrap.WithBookingID(ctx, bookingID), err)
	}
	return b, nil
}

func (m *Matcher) current(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := m.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("reload booking: %w", err))
	}
	return b, nil
}

func (m *Matcher) release(ctx context.Context, ambulanceID, token string) {
	if err := m.registry.Release(ctx, ambulanceID, token); err != nil && !errors.Is(err, types.ErrReservationMismatch) {
		m.l.Error(wrap.ErrorCtx(ctx, err), "failed to release ambulance", err, "ambulance_id", ambulanceID)
	}
}

func (m *Matcher) publish(ctx context.Context, b *models.Booking, reason string) {
	msg := models.BookingStatusMessage{
		BookingID:   b.ID,
		RequesterID: b.RequesterID,
		AmbulanceID: b.AmbulanceID,
		Status:      b.Status,
		Reason:      reason,
		Timestamp:   b.UpdatedAt,
	}
	if err := m.publisher.PublishBookingStatus(ctx, msg); err != nil {
		m.l.Warn(ctx, "failed to publish booking status", "status", b.Status.String(), "error", err.Error())
	}
}

func validateInput(in models.BookingInput) error {
	switch {
	case strings.TrimSpace(in.RequesterID) == "":
		return types.Invalid("user_id must be provided")
	case !in.Pickup.Valid():
		return types.Invalid("pickup location is out of range")
	case in.Pickup.Latitude == 0 && in.Pickup.Longitude == 0:
		return types.Invalid("pickup location must be provided")
	}
	return nil
}

type nopPublisher struct{}

func (nopPublisher) PublishBookingStatus(context.Context, models.BookingStatusMessage) error {
	return nil
}
