package alert

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/metrics"
)

const snapshotKey = "active"

type Repo interface {
	Upsert(ctx context.Context, a *models.DisasterAlert) error
	Get(ctx context.Context, id string) (*models.DisasterAlert, error)
	// List returns all alerts, issued_at descending.
	List(ctx context.Context) ([]models.DisasterAlert, error)
}

type Broadcaster interface {
	Broadcast(ctx context.Context, msg models.FeedMessage)
}

type Publisher interface {
	PublishAlert(ctx context.Context, a models.DisasterAlert) error
}

type Options struct {
	DefaultRadiusKm float64
	// SnapshotTTL bounds how long the candidate list is reused between reads.
	SnapshotTTL time.Duration
	Now         func() time.Time
}

type Manager struct {
	repo          Repo
	snapshots     *cache.Cache
	broadcaster   Broadcaster
	publisher     Publisher
	defaultRadius float64
	now           func() time.Time
	l             logger.Logger
}

func New(repo Repo, broadcaster Broadcaster, publisher Publisher, opts Options, l logger.Logger) *Manager {
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = 10
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		repo:          repo,
		snapshots:     cache.New(opts.SnapshotTTL, 2*opts.SnapshotTTL),
		broadcaster:   broadcaster,
		publisher:     publisher,
		defaultRadius: opts.DefaultRadiusKm,
		now:           opts.Now,
		l:             l,
	}
}

// Publish validates and stores a, replacing an alert with the same id.
func (m *Manager) Publish(ctx context.Context, a models.DisasterAlert) (*models.DisasterAlert, error) {
	ctx = wrap.WithAction(ctx, types.ActionPublishAlert)

	now := m.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.IssuedAt.IsZero() {
		a.IssuedAt = now
	}
	if a.RadiusKm <= 0 {
		a.RadiusKm = m.defaultRadius
	}
	if a.SafetyTips == nil {
		a.SafetyTips = []string{}
	}

	if err := validate(a); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	if err := m.repo.Upsert(ctx, &a); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("store alert: %w", err))
	}
	m.snapshots.Delete(snapshotKey)

	published := a.WithActive(now)
	metrics.AlertsPublishedTotal.WithLabelValues(string(a.Severity)).Inc()
	m.l.Info(ctx, "alert published", "alert_id", a.ID, "severity", string(a.Severity), "expires_at", a.ExpiresAt)

	if m.broadcaster != nil {
		m.broadcaster.Broadcast(ctx, models.FeedMessage{Type: types.FeedAlertPublished, Data: published})
	}
	if m.publisher != nil {
		if err := m.publisher.PublishAlert(ctx, published); err != nil {
			m.l.Warn(ctx, "failed to publish alert event", "alert_id", a.ID, "error", err.Error())
		}
	}

	return &published, nil
}

// QueryActive yields alerts that are active and match filter, newest first.
// Every range over the sequence reads the clock again, and each alert is
// re-checked right before it is yielded.
func (m *Manager) QueryActive(ctx context.Context, filter models.LocationFilter) iter.Seq2[models.DisasterAlert, error] {
	return func(yield func(models.DisasterAlert, error) bool) {
		candidates, err := m.snapshot(ctx)
		if err != nil {
			yield(models.DisasterAlert{}, wrap.Error(wrap.WithAction(ctx, types.ActionQueryAlerts), err))
			return
		}

		for _, a := range candidates {
			if ctx.Err() != nil {
				yield(models.DisasterAlert{}, ctx.Err())
				return
			}
			now := m.now()
			if !a.ActiveAt(now) || !matches(a, filter) {
				continue
			}
			if !yield(a.WithActive(now), nil) {
				return
			}
		}
	}
}

// ListActive drains QueryActive.
func (m *Manager) ListActive(ctx context.Context, filter models.LocationFilter) ([]models.DisasterAlert, error) {
	out := make([]models.DisasterAlert, 0)
	for a, err := range m.QueryActive(ctx, filter) {
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Get returns any alert, expired or not, with its active flag derived now.
func (m *Manager) Get(ctx context.Context, id string) (*models.DisasterAlert, error) {
	a, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	out := a.WithActive(m.now())
	return &out, nil
}

func (m *Manager) History(ctx context.Context) ([]models.DisasterAlert, error) {
	all, err := m.repo.List(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("list alerts: %w", err))
	}

	now := m.now()
	for i := range all {
		all[i] = all[i].WithActive(now)
	}
	return all, nil
}

// snapshot returns alerts that were unexpired when the snapshot was taken.
func (m *Manager) snapshot(ctx context.Context) ([]models.DisasterAlert, error) {
	if v, ok := m.snapshots.Get(snapshotKey); ok {
		return v.([]models.DisasterAlert), nil
	}

	all, err := m.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}

	now := m.now()
	candidates := make([]models.DisasterAlert, 0, len(all))
	for _, a := range all {
		if a.ActiveAt(now) {
			candidates = append(candidates, a)
		}
	}
	m.snapshots.SetDefault(snapshotKey, candidates)

	return candidates, nil
}

func matches(a models.DisasterAlert, f models.LocationFilter) bool {
	if f.Point != nil {
		if f.Point.DistanceKm(a.Coordinates) > a.RadiusKm+f.RadiusKm {
			return false
		}
	}
	if f.Area != "" {
		if !strings.Contains(strings.ToLower(a.AffectedArea), strings.ToLower(f.Area)) {
			return false
		}
	}
	return true
}

func validate(a models.DisasterAlert) error {
	switch {
	case strings.TrimSpace(a.Title) == "":
		return types.Invalid("title must be provided")
	case !a.Severity.Valid():
		return types.Invalid("severity must be one of low, medium, high, critical")
	case !a.ExpiresAt.After(a.IssuedAt):
		return types.Invalid("expires_at must be after issued_at")
	case !a.Coordinates.Valid():
		return types.Invalid("coordinates are out of range")
	}
	return nil
}
