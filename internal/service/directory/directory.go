package directory

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
	wrap "github.com/Psychoriddler/Emergilink-prototype/pkg/logger/wrapper"
)

const (
	defaultNewsLimit     = 20
	maxNewsLimit         = 100
	defaultHospitalLimit = 10

	keyHospitals = "hospitals"
	keyNews      = "news"
)

var categories = []models.NewsCategory{
	{ID: types.NewsEmergencyResponse, Name: "Emergency Response", Icon: "medical"},
	{ID: types.NewsDisasterRelief, Name: "Disaster Relief", Icon: "warning"},
	{ID: types.NewsSafetyUpdate, Name: "Safety Updates", Icon: "shield-checkmark"},
	{ID: types.NewsCommunityAlert, Name: "Community Alerts", Icon: "people"},
}

type Repo interface {
	ListHospitals(ctx context.Context) ([]models.Hospital, error)
	GetHospital(ctx context.Context, id string) (*models.Hospital, error)
	ListNews(ctx context.Context) ([]models.NewsItem, error)
	GetNews(ctx context.Context, id string) (*models.NewsItem, error)
}

// Service reads hospitals and news through a TTL cache.
type Service struct {
	repo  Repo
	cache *cache.Cache
	l     logger.Logger
}

func New(repo Repo, ttl time.Duration, l logger.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
		l:     l,
	}
}

// NearbyHospitals lists hospitals nearest first with their distance to point.
func (s *Service) NearbyHospitals(ctx context.Context, point models.Location, limit int) ([]models.Hospital, error) {
	if !point.Valid() {
		return nil, types.Invalid("coordinates are out of range")
	}
	if limit <= 0 {
		limit = defaultHospitalLimit
	}

	all, err := s.hospitals(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Hospital, 0, len(all))
	for _, h := range all {
		d := point.DistanceKm(h.Location)
		d = math.Round(d*100) / 100
		h.DistanceKm = &d
		out = append(out, h)
	}

	slices.SortFunc(out, func(a, b models.Hospital) int {
		if c := cmp.Compare(*a.DistanceKm, *b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Service) Hospital(ctx context.Context, id string) (*models.Hospital, error) {
	key := "hospital:" + id
	if v, ok := s.cache.Get(key); ok {
		h := v.(models.Hospital)
		return &h, nil
	}

	h, err := s.repo.GetHospital(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	s.cache.SetDefault(key, *h)

	return h, nil
}

// News returns items ordered by priority, then newest first.
func (s *Service) News(ctx context.Context, f models.NewsFilter) ([]models.NewsItem, error) {
	switch {
	case f.Limit < 0:
		return nil, types.Invalid("limit must not be negative")
	case f.Limit == 0:
		f.Limit = defaultNewsLimit
	case f.Limit > maxNewsLimit:
		f.Limit = maxNewsLimit
	}
	if f.Category != "" && !knownCategory(f.Category) {
		return nil, types.Invalid(fmt.Sprintf("unknown news category %q", f.Category))
	}
	if f.Priority != "" && f.Priority.Rank() > types.PriorityLow.Rank() {
		return nil, types.Invalid(fmt.Sprintf("unknown news priority %q", f.Priority))
	}

	all, err := s.news(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.NewsItem, 0, len(all))
	for _, n := range all {
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		out = append(out, n)
	}

	slices.SortStableFunc(out, func(a, b models.NewsItem) int {
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Service) NewsItem(ctx context.Context, id string) (*models.NewsItem, error) {
	n, err := s.repo.GetNews(ctx, id)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return n, nil
}

func (s *Service) NewsCategories() []models.NewsCategory {
	return slices.Clone(categories)
}

func (s *Service) hospitals(ctx context.Context) ([]models.Hospital, error) {
	if v, ok := s.cache.Get(keyHospitals); ok {
		return slices.Clone(v.([]models.Hospital)), nil
	}

	list, err := s.repo.ListHospitals(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("list hospitals: %w", err))
	}
	s.cache.SetDefault(keyHospitals, list)
	s.l.Debug(ctx, "hospital cache refreshed", "count", len(list))

	return slices.Clone(list), nil
}

func (s *Service) news(ctx context.Context) ([]models.NewsItem, error) {
	if v, ok := s.cache.Get(keyNews); ok {
		return slices.Clone(v.([]models.NewsItem)), nil
	}

	list, err := s.repo.ListNews(ctx)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("list news: %w", err))
	}
	s.cache.SetDefault(keyNews, list)

	return slices.Clone(list), nil
}

func knownCategory(id string) bool {
	return slices.ContainsFunc(categories, func(c models.NewsCategory) bool { return c.ID == id })
}
