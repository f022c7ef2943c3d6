package sos

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

const (
	historyLimit    = 100
	geocodeTimeout  = 2 * time.Second
	idempotencyPref = "sos:"
)

type Options struct {
	Geocoder    Geocoder
	Publisher   Publisher
	Broadcaster Broadcaster
	// StallAfter is how long a non-terminal event may sit untouched before ResumeStalled picks it up.
	StallAfter time.Duration
	Now        func() time.Time
}

// Dispatcher drives an SOS event through
// Triggered -> ContactsNotified -> ServicesDispatched -> Resolved.
// Every step is persisted before the next starts, so Resume can continue from
// whatever state was last recorded.
type Dispatcher struct {
	events   EventRepo
	contacts ContactSource
	notifier Notifier
	booker   Booker

	geocoder    Geocoder
	publisher   Publisher
	broadcaster Broadcaster
	stallAfter  time.Duration
	now         func() time.Time
	l           logger.Logger
}

func New(events EventRepo, contacts ContactSource, notifier Notifier, booker Booker, opts Options, l logger.Logger) *Dispatcher {
	if opts.StallAfter <= 0 {
		opts.StallAfter = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{
		events:      events,
		contacts:    contacts,
		notifier:    notifier,
		booker:      booker,
		geocoder:    opts.Geocoder,
		publisher:   opts.Publisher,
		broadcaster: opts.Broadcaster,
		stallAfter:  opts.StallAfter,
		now:         opts.Now,
		l:           l,
	}
}

func (d *Dispatcher) Trigger(ctx context.Context, in models.TriggerInput) (*models.SOSEvent, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionTriggerSOS, UserID: in.RequesterID})

	if in.EmergencyType == "" {
		in.EmergencyType = types.EmergencyGeneral
	}
	if err := validateTrigger(in); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	// the flow must finish even if the caller hangs up
	ctx = context.WithoutCancel(ctx)

	now := d.now()
	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}
	if in.Location.Address == "" {
		in.Location.Address = d.reverseGeocode(ctx, in.Location)
	}

	event := &models.SOSEvent{
		ID:            uuid.NewString(),
		RequesterID:   in.RequesterID,
		Location:      in.Location,
		EmergencyType: in.EmergencyType,
		Status:        types.SOSTriggered,
		Timestamp:     in.Timestamp,
		UpdatedAt:     now,
	}
	if err := d.events.Create(ctx, event); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("create sos event: %w", err))
	}
	ctx = wrap.WithEventID(ctx, event.ID)

	d.l.Info(ctx, "sos triggered",
		"emergency_type", string(event.EmergencyType),
		"address", event.Location.Address,
	)
	d.statusChanged(ctx, event)

	return d.advance(ctx, event)
}

// Resume continues a non-terminal event from its recorded state.
func (d *Dispatcher) Resume(ctx context.Context, eventID string) (*models.SOSEvent, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionResumeSOS, EventID: eventID})

	e, err := d.events.Get(ctx, eventID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if e.Status.IsTerminal() {
		return e, nil
	}

	d.l.Info(ctx, "resuming sos event", "status", e.Status.String())
	return d.advance(ctx, e)
}

// ResumeStalled resumes every event left non-terminal for longer than StallAfter.
func (d *Dispatcher) ResumeStalled(ctx context.Context) (int, error) {
	ctx = wrap.WithAction(ctx, types.ActionResumeSOS)

	stalled, err := d.events.ListStalled(ctx, d.now().Add(-d.stallAfter))
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("list stalled events: %w", err))
	}

	resumed := 0
	for _, e := range stalled {
		// ContactsNotified without transport is a resting state until resolved
		if e.Status == types.SOSContactsNotified && !e.EmergencyType.NeedsTransport() {
			continue
		}
		if _, err := d.Resume(ctx, e.ID); err != nil {
			d.l.Error(wrap.ErrorCtx(ctx, err), "failed to resume sos event", err, "event_id", e.ID)
			continue
		}
		resumed++
	}

	return resumed, nil
}

// Resolve closes the event and completes its booking, which returns the ambulance
// to the pool. Resolving a Resolved event changes nothing.
func (d *Dispatcher) Resolve(ctx context.Context, eventID string) (*models.SOSEvent, error) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionResolveSOS, EventID: eventID})

	for range 3 {
		e, err := d.events.Get(ctx, eventID)
		if err != nil {
			return nil, wrap.Error(ctx, err)
		}

		switch e.Status {
		case types.SOSResolved:
			return e, nil
		case types.SOSFailed:
			return nil, wrap.Error(ctx, types.ErrEventTerminal)
		}

		if e.BookingID != "" {
			if err := d.completeBooking(ctx, e.BookingID); err != nil {
				return nil, err
			}
		}

		resolved, err := d.events.Transition(ctx, eventID, e.Status, func(e *models.SOSEvent) {
			now := d.now()
			e.Status = types.SOSResolved
			e.ResolvedAt = &now
			e.UpdatedAt = now
		})
		if errors.Is(err, types.ErrStaleState) {
			continue
		}
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("mark sos resolved: %w", err))
		}

		d.l.Info(ctx, "sos resolved", "previous_status", e.Status.String())
		d.statusChanged(ctx, resolved)
		return resolved, nil
	}

	return nil, wrap.Error(ctx, types.ErrStaleState)
}

// completeBooking tolerates bookings that were already closed some other way.
func (d *Dispatcher) completeBooking(ctx context.Context, bookingID string) error {
	_, err := d.booker.CompleteBooking(ctx, bookingID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrBookingTerminal), errors.Is(err, types.ErrBookingNotActive):
		d.l.Debug(ctx, "booking already closed", "booking_id", bookingID)
		return nil
	default:
		return wrap.Error(ctx, fmt.Errorf("complete booking: %w", err))
	}
}

func (d *Dispatcher) Get(ctx context.Context, eventID string) (*models.SOSEvent, error) {
	e, err := d.events.Get(ctx, eventID)
	if err != nil {
		return nil, wrap.Error(wrap.WithEventID(ctx, eventID), err)
	}
	return e, nil
}

// History lists a requester's events, newest first.
func (d *Dispatcher) History(ctx context.Context, requesterID string) ([]models.SOSEvent, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, types.Invalid("user_id must be provided")
	}

	events, err := d.events.ListByRequester(ctx, requesterID, historyLimit)
	if err != nil {
		return nil, wrap.Error(wrap.WithUserID(ctx, requesterID), fmt.Errorf("list sos history: %w", err))
	}
	return events, nil
}

func (d *Dispatcher) advance(ctx context.Context, e *models.SOSEvent) (*models.SOSEvent, error) {
	var err error
	for {
		switch e.Status {
		case types.SOSTriggered:
			e, err = d.notifyContacts(ctx, e)
		case types.SOSContactsNotified:
			if !e.EmergencyType.NeedsTransport() {
				return e, nil
			}
			e, err = d.dispatchServices(ctx, e)
			if err == nil && e.Status == types.SOSContactsNotified {
				// booking still in flight elsewhere; the scheduler picks it up later
				return e, nil
			}
		default:
			return e, nil
		}
		if err != nil {
			return e, err
		}
	}
}

func (d *Dispatcher) notifyContacts(ctx context.Context, e *models.SOSEvent) (*models.SOSEvent, error) {
	contacts, err := d.contacts.List(ctx, e.RequesterID)
	if err != nil {
		err = wrap.Error(ctx, fmt.Errorf("load emergency contacts: %w", err))
		return d.failWith(ctx, e, types.SOSTriggered, types.KindInternal.String(), err)
	}

	payload := models.NotificationPayload{
		EventID:       e.ID,
		RequesterID:   e.RequesterID,
		EmergencyType: e.EmergencyType,
		Location:      e.Location,
		Message:       message(e),
		OccurredAt:    e.Timestamp,
	}

	res, err := d.notifier.Notify(ctx, contacts, payload)
	if err != nil && !errors.Is(err, types.ErrNoContactReached) {
		return d.failWith(ctx, e, types.SOSTriggered, types.KindInternal.String(), wrap.Error(ctx, err))
	}

	notified, err := d.events.Transition(ctx, e.ID, types.SOSTriggered, func(e *models.SOSEvent) {
		e.Status = types.SOSContactsNotified
		e.FanOut = &res
		e.Warnings = append(e.Warnings, res.Warnings...)
		e.UpdatedAt = d.now()
	})
	if errors.Is(err, types.ErrStaleState) {
		return d.current(ctx, e.ID)
	}
	if err != nil {
		err = wrap.Error(ctx, fmt.Errorf("mark contacts notified: %w", err))
		return d.failWith(ctx, e, types.SOSTriggered, types.KindInternal.String(), err)
	}

	if len(res.Warnings) > 0 {
		d.l.Warn(ctx, "some contacts were not reached", "warnings", len(res.Warnings))
	}
	d.statusChanged(ctx, notified)
	return notified, nil
}

func (d *Dispatcher) dispatchServices(ctx context.Context, e *models.SOSEvent) (*models.SOSEvent, error) {
	booking, err := d.booker.RequestBooking(ctx, models.BookingInput{
		RequesterID:    e.RequesterID,
		Pickup:         e.Location,
		IdempotencyKey: idempotencyPref + e.ID,
	})
	if err != nil {
		switch kind := types.KindOf(err); kind {
		case types.KindNoAvailableResource, types.KindMatchTimeout:
			return d.failWith(ctx, e, types.SOSContactsNotified, kind.String(), nil)
		default:
			return d.failWith(ctx, e, types.SOSContactsNotified, kind.String(), wrap.Error(ctx, err))
		}
	}

	switch booking.Status {
	case types.BookingConfirmed, types.BookingCompleted:
	case types.BookingFailed, types.BookingCancelled:
		// an earlier attempt already settled the booking
		reason := booking.FailureReason
		if reason == "" {
			reason = booking.Status.String()
		}
		return d.failWith(ctx, e, types.SOSContactsNotified, reason, nil)
	default:
		return e, nil
	}

	dispatched, err := d.events.Transition(ctx, e.ID, types.SOSContactsNotified, func(e *models.SOSEvent) {
		e.Status = types.SOSServicesDispatched
		e.BookingID = booking.ID
		e.UpdatedAt = d.now()
	})
	if errors.Is(err, types.ErrStaleState) {
		return d.current(ctx, e.ID)
	}
	if err != nil {
		return e, wrap.Error(ctx, fmt.Errorf("mark services dispatched: %w", err))
	}

	d.l.Info(ctx, "ambulance dispatched", "booking_id", booking.ID, "ambulance_id", booking.AmbulanceID)
	d.statusChanged(ctx, dispatched)
	return dispatched, nil
}

// failWith moves the event to Failed and returns cause unchanged, so a nil
// cause yields a Failed event without an error.
func (d *Dispatcher) failWith(ctx context.Context, e *models.SOSEvent, from types.SOSStatus, reason string, cause error) (*models.SOSEvent, error) {
	failed, err := d.events.Transition(ctx, e.ID, from, func(e *models.SOSEvent) {
		e.Status = types.SOSFailed
		e.FailureReason = reason
		e.UpdatedAt = d.now()
	})
	if errors.Is(err, types.ErrStaleState) {
		cur, cerr := d.current(ctx, e.ID)
		if cerr != nil {
			return e, cerr
		}
		return cur, cause
	}
	if err != nil {
		d.l.Error(ctx, "failed to mark sos event failed", err)
		if cause == nil {
			cause = wrap.Error(ctx, fmt.Errorf("mark sos failed: %w", err))
		}
		return e, cause
	}

	d.l.Warn(ctx, "sos event failed", "reason", reason)
	d.statusChanged(ctx, failed)
	return failed, cause
}

func (d *Dispatcher) current(ctx context.Context, id string) (*models.SOSEvent, error) {
	e, err := d.events.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("reload sos event: %w", err))
	}
	return e, nil
}

func (d *Dispatcher) statusChanged(ctx context.Context, e *models.SOSEvent) {
	metrics.SOSEventsTotal.WithLabelValues(e.Status.String()).Inc()

	msg := models.SOSStatusMessage{
		EventID:     e.ID,
		RequesterID: e.RequesterID,
		Status:      e.Status,
		BookingID:   e.BookingID,
		Reason:      e.FailureReason,
		Timestamp:   e.UpdatedAt,
	}
	if d.publisher != nil {
		if err := d.publisher.PublishSOSStatus(ctx, msg); err != nil {
			d.l.Warn(ctx, "failed to publish sos status", "status", e.Status.String(), "error", err.Error())
		}
	}
	if d.broadcaster != nil {
		d.broadcaster.Broadcast(ctx, models.FeedMessage{Type: types.FeedSOSStatus, Data: msg})
	}
}

func (d *Dispatcher) reverseGeocode(ctx context.Context, loc models.Location) string {
	if d.geocoder == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	addr, err := d.geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		d.l.Warn(ctx, "reverse geocoding failed", "error", err.Error())
		return ""
	}
	return addr
}

func message(e *models.SOSEvent) string {
	where := e.Location.Address
	if where == "" {
		where = fmt.Sprintf("%.5f, %.5f", e.Location.Latitude, e.Location.Longitude)
	}
	return fmt.Sprintf("EMERGENCY: %s SOS raised at %s (%s UTC). Location: %s",
		e.EmergencyType, e.Timestamp.UTC().Format("15:04"), e.Timestamp.UTC().Format("2006-01-02"), where)
}

func validateTrigger(in models.TriggerInput) error {
	switch {
	case strings.TrimSpace(in.RequesterID) == "":
		return types.Invalid("user_id must be provided")
	case !in.EmergencyType.Valid():
		return types.Invalid("emergency_type must be one of general, medical, fire, police, accident")
	case !in.Location.Valid():
		return types.Invalid("location is out of range")
	case in.Location.Latitude == 0 && in.Location.Longitude == 0:
		return types.Invalid("location must be provided")
	}
	return nil
}
