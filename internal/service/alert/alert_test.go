package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/memory"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs []models.FeedMessage
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, msg models.FeedMessage) {
	b.mu.Lock()
	b.msgs = append(b.msgs, msg)
	b.mu.Unlock()
}

var (
	mission = models.Location{Latitude: 37.7599, Longitude: -122.4148}
	oakland = models.Location{Latitude: 37.8044, Longitude: -122.2712}
)

func newManager(t *testing.T) (*Manager, *clock, *recordingBroadcaster) {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	b := &recordingBroadcaster{}
	m := New(memory.NewAlertRepo(), b, nil, Options{Now: c.Now, SnapshotTTL: time.Minute}, logger.NewNop())
	return m, c, b
}

func floodAlert(issued time.Time, ttl time.Duration) models.DisasterAlert {
	return models.DisasterAlert{
		Title:        "Flood Warning",
		Severity:     types.SeverityMedium,
		AffectedArea: "Mission District, San Francisco",
		Coordinates:  mission,
		RadiusKm:     2,
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(ttl),
		SafetyTips:   []string{"Stay on higher ground"},
	}
}

func TestQueryActive_ExcludesExpired(t *testing.T) {
	m, c, _ := newManager(t)
	ctx := context.Background()

	published, err := m.Publish(ctx, floodAlert(c.Now(), 24*time.Hour))
	require.NoError(t, err)
	assert.True(t, published.Active)

	active, err := m.ListActive(ctx, models.LocationFilter{})
	require.NoError(t, err)
	require.Len(t, active, 1)

	c.Advance(25 * time.Hour)

	active, err = m.ListActive(ctx, models.LocationFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := m.Get(ctx, published.ID)
	require.NoError(t, err)
	assert.False(t, got.Active, "expired alerts stay readable by id")
}

func TestQueryActive_SequenceIsRestartable(t *testing.T) {
	m, c, _ := newManager(t)
	ctx := context.Background()

	_, err := m.Publish(ctx, floodAlert(c.Now(), time.Hour))
	require.NoError(t, err)

	seq := m.QueryActive(ctx, models.LocationFilter{})
	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}

	assert.Equal(t, 1, count())
	c.Advance(2 * time.Hour)
	assert.Equal(t, 0, count(), "a second range must see the new time")
}

func TestQueryActive_LocationFilter(t *testing.T) {
	m, c, _ := newManager(t)
	ctx := context.Background()

	_, err := m.Publish(ctx, floodAlert(c.Now(), time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter models.LocationFilter
		want   int
	}{
		{"empty filter", models.LocationFilter{}, 1},
		{"point inside radius", models.LocationFilter{Point: &mission}, 1},
		{"point outside radius", models.LocationFilter{Point: &oakland, RadiusKm: 1}, 0},
		{"point reached through filter radius", models.LocationFilter{Point: &oakland, RadiusKm: 20}, 1},
		{"area substring any case", models.LocationFilter{Area: "mission district"}, 1},
		{"area mismatch", models.LocationFilter{Area: "Oakland"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ListActive(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestQueryActive_NewestFirst(t *testing.T) {
	m, c, _ := newManager(t)
	ctx := context.Background()

	older := floodAlert(c.Now().Add(-time.Hour), 6*time.Hour)
	older.Title = "older"
	newer := floodAlert(c.Now(), 6*time.Hour)
	newer.Title = "newer"

	_, err := m.Publish(ctx, newer)
	require.NoError(t, err)
	_, err = m.Publish(ctx, older)
	require.NoError(t, err)

	got, err := m.ListActive(ctx, models.LocationFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Title)
	assert.Equal(t, "older", got[1].Title)
}

func TestPublish_InvalidatesSnapshotAndBroadcasts(t *testing.T) {
	m, c, b := newManager(t)
	ctx := context.Background()

	active, err := m.ListActive(ctx, models.LocationFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = m.Publish(ctx, floodAlert(c.Now(), time.Hour))
	require.NoError(t, err)

	active, err = m.ListActive(ctx, models.LocationFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.Len(t, b.msgs, 1)
	assert.Equal(t, types.FeedAlertPublished, b.msgs[0].Type)
}

func TestPublish_UpsertByID(t *testing.T) {
	m, c, _ := newManager(t)
	ctx := context.Background()

	a := floodAlert(c.Now(), time.Hour)
	a.ID = "alert-1"
	_, err := m.Publish(ctx, a)
	require.NoError(t, err)

	a.Severity = types.SeverityCritical
	_, err = m.Publish(ctx, a)
	require.NoError(t, err)

	history, err := m.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, types.SeverityCritical, history[0].Severity)
}

func TestPublish_Validation(t *testing.T) {
	m, c, _ := newManager(t)
	now := c.Now()

	tests := []struct {
		name   string
		mutate func(a *models.DisasterAlert)
	}{
		{"missing title", func(a *models.DisasterAlert) { a.Title = "" }},
		{"bad severity", func(a *models.DisasterAlert) { a.Severity = "extreme" }},
		{"expires before issued", func(a *models.DisasterAlert) { a.ExpiresAt = now.Add(-time.Minute) }},
		{"bad coordinates", func(a *models.DisasterAlert) { a.Coordinates = models.Location{Latitude: 120} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := floodAlert(now, time.Hour)
			tt.mutate(&a)
			_, err := m.Publish(context.Background(), a)
			assert.ErrorIs(t, err, types.ErrInvalidRequest)
		})
	}
}

func TestPublish_Defaults(t *testing.T) {
	m, c, _ := newManager(t)

	a := floodAlert(time.Time{}, 0)
	a.RadiusKm = 0
	a.ExpiresAt = c.Now().Add(time.Hour)

	got, err := m.Publish(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, c.Now(), got.IssuedAt)
	assert.Equal(t, 10.0, got.RadiusKm)
}

func TestGet_Unknown(t *testing.T) {
	m, _, _ := newManager(t)

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
