package sos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/memory"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/matcher"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/notifier"
	"github.com/Psychoriddler/Emergilink-prototype/internal/service/registry"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

var here = models.Location{Latitude: 37.7749, Longitude: -122.4194, Address: "Market St, SF"}

// countingChannel counts deliveries per contact and fails those listed.
type countingChannel struct {
	mu      sync.Mutex
	sent    map[string]int
	failing map[string]bool
}

func (c *countingChannel) Deliver(ctx context.Context, job models.DeliveryJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent == nil {
		c.sent = map[string]int{}
	}
	c.sent[job.Contact.ID]++
	if c.failing[job.Contact.ID] {
		return types.ErrDeliveryFailed
	}
	return nil
}

func (c *countingChannel) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.sent {
		n += v
	}
	return n
}

// stubBooker returns a fixed booking status.
type stubBooker struct {
	mu          sync.Mutex
	status      types.BookingStatus
	err         error
	completeErr error
	keys        []string
	completed   []string
}

func (b *stubBooker) RequestBooking(ctx context.Context, in models.BookingInput) (*models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, in.IdempotencyKey)
	if b.err != nil {
		return nil, b.err
	}
	return &models.Booking{ID: "booking-1", Status: b.status, AmbulanceID: "amb-1"}, nil
}

func (b *stubBooker) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completed = append(b.completed, bookingID)
	if b.completeErr != nil {
		return nil, b.completeErr
	}
	return &models.Booking{ID: bookingID, Status: types.BookingCompleted, AmbulanceID: "amb-1"}, nil
}

type failingContacts struct{}

func (failingContacts) List(context.Context, string) ([]models.EmergencyContact, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	dispatcher *Dispatcher
	events     *memory.SOSRepo
	channel    *countingChannel
}

func newFixture(t *testing.T, booker Booker, contactIDs ...string) fixture {
	t.Helper()

	contacts := memory.NewContactRepo()
	for _, id := range contactIDs {
		require.NoError(t, contacts.Create(context.Background(), &models.EmergencyContact{
			ID: id, OwnerID: "user-1", Name: "contact " + id, Phone: "+1-555-0100", Type: types.ContactFamily,
		}))
	}

	ch := &countingChannel{failing: map[string]bool{}}
	n := notifier.New(ch, memory.NewLedger(time.Hour), notifier.Options{
		Retry: notifier.RetryPolicy{Attempts: 3, Base: time.Millisecond, Cap: time.Millisecond},
	}, logger.NewNop())

	events := memory.NewSOSRepo()
	d := New(events, contacts, n, booker, Options{}, logger.NewNop())

	return fixture{dispatcher: d, events: events, channel: ch}
}

func trigger(kind types.EmergencyType) models.TriggerInput {
	return models.TriggerInput{RequesterID: "user-1", Location: here, EmergencyType: kind}
}

func TestTrigger_MedicalDispatchesAmbulance(t *testing.T) {
	reg := registry.New(registry.Options{}, logger.NewNop())
	reg.Upsert(models.Ambulance{ID: "amb-1", Location: here, Available: true, Rating: 4.5, DispatchDelayMin: 2})
	m := matcher.New(reg, memory.NewBookingRepo(), matcher.DefaultPolicy(), logger.NewNop())

	f := newFixture(t, m, "c1", "c2")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyMedical))
	require.NoError(t, err)
	assert.Equal(t, types.SOSServicesDispatched, e.Status)
	assert.NotEmpty(t, e.BookingID)
	require.NotNil(t, e.FanOut)
	assert.Equal(t, 2, e.FanOut.Dispatched())
	assert.Empty(t, e.Warnings)
}

func TestTrigger_NoAmbulanceFailsWithoutError(t *testing.T) {
	reg := registry.New(registry.Options{}, logger.NewNop())
	m := matcher.New(reg, memory.NewBookingRepo(), matcher.DefaultPolicy(), logger.NewNop())

	f := newFixture(t, m, "c1")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyAccident))
	require.NoError(t, err)
	assert.Equal(t, types.SOSFailed, e.Status)
	assert.Equal(t, types.KindNoAvailableResource.String(), e.FailureReason)
	assert.Equal(t, 1, e.FanOut.Dispatched(), "contacts are notified before the booking step")
}

func TestTrigger_NonMedicalStopsAtContactsNotified(t *testing.T) {
	booker := &stubBooker{status: types.BookingConfirmed}
	f := newFixture(t, booker, "c1")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyFire))
	require.NoError(t, err)
	assert.Equal(t, types.SOSContactsNotified, e.Status)
	assert.Empty(t, booker.keys)
}

func TestTrigger_PartialNotificationWarns(t *testing.T) {
	f := newFixture(t, &stubBooker{status: types.BookingConfirmed}, "c1", "c2", "c3")
	f.channel.failing["c2"] = true

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyGeneral))
	require.NoError(t, err)
	assert.Equal(t, types.SOSContactsNotified, e.Status)
	require.Len(t, e.Warnings, 1)
	assert.Contains(t, e.Warnings[0], "contact c2")

	o, ok := e.FanOut.Outcome("c2")
	require.True(t, ok)
	assert.Equal(t, types.OutcomeFailed, o.Outcome)
	assert.Equal(t, 3, o.Attempts)
}

func TestTrigger_ContactLookupFailureFailsEvent(t *testing.T) {
	events := memory.NewSOSRepo()
	n := notifier.New(&countingChannel{}, memory.NewLedger(time.Hour), notifier.Options{}, logger.NewNop())
	d := New(events, failingContacts{}, n, &stubBooker{}, Options{}, logger.NewNop())

	e, err := d.Trigger(context.Background(), trigger(types.EmergencyMedical))
	require.Error(t, err)
	require.NotNil(t, e)
	assert.Equal(t, types.SOSFailed, e.Status)

	stored, err := events.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SOSFailed, stored.Status)
}

func TestTrigger_Validation(t *testing.T) {
	f := newFixture(t, &stubBooker{})

	tests := []struct {
		name string
		in   models.TriggerInput
	}{
		{"missing user", models.TriggerInput{Location: here}},
		{"bad type", models.TriggerInput{RequesterID: "u", Location: here, EmergencyType: "flood"}},
		{"missing location", models.TriggerInput{RequesterID: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.dispatcher.Trigger(context.Background(), tt.in)
			assert.ErrorIs(t, err, types.ErrInvalidRequest)
		})
	}
}

func TestResume_DoesNotRenotify(t *testing.T) {
	booker := &stubBooker{status: types.BookingPending}
	f := newFixture(t, booker, "c1", "c2")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyMedical))
	require.NoError(t, err)
	assert.Equal(t, types.SOSContactsNotified, e.Status, "booking still in flight")
	assert.Equal(t, 2, f.channel.total())

	booker.status = types.BookingConfirmed
	resumed, err := f.dispatcher.Resume(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SOSServicesDispatched, resumed.Status)
	assert.Equal(t, "booking-1", resumed.BookingID)

	assert.Equal(t, 2, f.channel.total(), "contacts must not be notified again")
	assert.Equal(t, []string{"sos:" + e.ID, "sos:" + e.ID}, booker.keys)
}

func TestResume_FromTriggeredDeduplicatesDeliveries(t *testing.T) {
	f := newFixture(t, &stubBooker{status: types.BookingConfirmed}, "c1")
	ctx := context.Background()

	// first delivery went out but the process died before recording ContactsNotified
	e := &models.SOSEvent{ID: "evt-1", RequesterID: "user-1", Location: here, EmergencyType: types.EmergencyPolice, Status: types.SOSTriggered}
	require.NoError(t, f.events.Create(ctx, e))
	_, err := f.dispatcher.notifier.Notify(ctx, []models.EmergencyContact{{ID: "c1", Name: "contact c1"}}, models.NotificationPayload{EventID: "evt-1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.channel.total())

	resumed, err := f.dispatcher.Resume(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, types.SOSContactsNotified, resumed.Status)
	assert.Equal(t, 1, f.channel.total())

	o, ok := resumed.FanOut.Outcome("c1")
	require.True(t, ok)
	assert.True(t, o.Duplicate)
}

func TestResumeStalled(t *testing.T) {
	booker := &stubBooker{status: types.BookingPending}
	f := newFixture(t, booker, "c1")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyMedical))
	require.NoError(t, err)
	require.Equal(t, types.SOSContactsNotified, e.Status)

	f.dispatcher.now = func() time.Time { return time.Now().Add(time.Hour) }
	booker.status = types.BookingConfirmed

	n, err := f.dispatcher.ResumeStalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.events.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SOSServicesDispatched, stored.Status)
}

func TestResolve_Twice(t *testing.T) {
	f := newFixture(t, &stubBooker{status: types.BookingConfirmed}, "c1")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyGeneral))
	require.NoError(t, err)

	first, err := f.dispatcher.Resolve(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SOSResolved, first.Status)
	require.NotNil(t, first.ResolvedAt)

	second, err := f.dispatcher.Resolve(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SOSResolved, second.Status)
	assert.Equal(t, first.ResolvedAt, second.ResolvedAt)
	assert.Equal(t, 1, f.channel.total())
}

func TestResolve_CompletesBookingAndFreesAmbulance(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(registry.Options{}, logger.NewNop())
	reg.Upsert(models.Ambulance{ID: "amb-1", Location: here, Available: true, Rating: 4.5, DispatchDelayMin: 2})
	bookings := memory.NewBookingRepo()
	m := matcher.New(reg, bookings, matcher.DefaultPolicy(), logger.NewNop())

	f := newFixture(t, m, "c1")

	first, err := f.dispatcher.Trigger(ctx, trigger(types.EmergencyMedical))
	require.NoError(t, err)
	require.Equal(t, types.SOSServicesDispatched, first.Status)

	blocked, err := f.dispatcher.Trigger(ctx, trigger(types.EmergencyMedical))
	require.NoError(t, err)
	assert.Equal(t, types.SOSFailed, blocked.Status, "the only ambulance is still committed")

	resolved, err := f.dispatcher.Resolve(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SOSResolved, resolved.Status)

	b, err := bookings.Get(ctx, first.BookingID)
	require.NoError(t, err)
	assert.Equal(t, types.BookingCompleted, b.Status)
	_, held := reg.Reservation("amb-1")
	assert.False(t, held)

	next, err := f.dispatcher.Trigger(ctx, trigger(types.EmergencyMedical))
	require.NoError(t, err)
	assert.Equal(t, types.SOSServicesDispatched, next.Status)
}

func TestResolve_BookingCompletion(t *testing.T) {
	t.Run("already closed booking still resolves", func(t *testing.T) {
		booker := &stubBooker{status: types.BookingConfirmed, completeErr: types.ErrBookingTerminal}
		f := newFixture(t, booker, "c1")

		e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyMedical))
		require.NoError(t, err)

		resolved, err := f.dispatcher.Resolve(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Equal(t, types.SOSResolved, resolved.Status)
		assert.Equal(t, []string{"booking-1"}, booker.completed)
	})

	t.Run("store failure keeps the event open", func(t *testing.T) {
		booker := &stubBooker{status: types.BookingConfirmed, completeErr: errors.New("connection reset")}
		f := newFixture(t, booker, "c1")

		e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyMedical))
		require.NoError(t, err)

		_, err = f.dispatcher.Resolve(context.Background(), e.ID)
		require.Error(t, err)

		stored, err := f.events.Get(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Equal(t, types.SOSServicesDispatched, stored.Status)
	})

	t.Run("no booking, nothing to complete", func(t *testing.T) {
		booker := &stubBooker{status: types.BookingConfirmed}
		f := newFixture(t, booker, "c1")

		e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyFire))
		require.NoError(t, err)

		_, err = f.dispatcher.Resolve(context.Background(), e.ID)
		require.NoError(t, err)
		assert.Empty(t, booker.completed)
	})
}

func TestResolve_FailedIsConflict(t *testing.T) {
	f := newFixture(t, &stubBooker{err: types.ErrNoAvailableResource}, "c1")

	e, err := f.dispatcher.Trigger(context.Background(), trigger(types.EmergencyMedical))
	require.NoError(t, err)
	require.Equal(t, types.SOSFailed, e.Status)

	_, err = f.dispatcher.Resolve(context.Background(), e.ID)
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestResolve_Unknown(t *testing.T) {
	f := newFixture(t, &stubBooker{})

	_, err := f.dispatcher.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestHistory_NewestFirst(t *testing.T) {
	f := newFixture(t, &stubBooker{})
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	offsets := map[string]time.Duration{"old": 0, "new": 2 * time.Hour, "mid": time.Hour}
	for id, offset := range offsets {
		require.NoError(t, f.events.Create(ctx, &models.SOSEvent{ID: id, RequesterID: "user-1", Status: types.SOSResolved, Timestamp: base.Add(offset)}))
	}
	require.NoError(t, f.events.Create(ctx, &models.SOSEvent{ID: "other", RequesterID: "user-2", Timestamp: base}))

	got, err := f.dispatcher.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
