package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/memory"
	"github.com/Psychoriddler/Emergilink-prototype/internal/adapter/seed"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newService() *Service {
	repo := memory.NewDirectoryRepo(seed.Hospitals(), seed.News(now))
	return New(repo, time.Minute, logger.NewNop())
}

func TestNearbyHospitals_SortedByDistance(t *testing.T) {
	s := newService()

	// next to St. Mary's
	got, err := s.NearbyHospitals(context.Background(), models.Location{Latitude: 37.7690, Longitude: -122.4530}, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "hosp-st-marys", got[0].ID)
	for i := 1; i < len(got); i++ {
		require.NotNil(t, got[i].DistanceKm)
		assert.LessOrEqual(t, *got[i-1].DistanceKm, *got[i].DistanceKm)
	}

	limited, err := s.NearbyHospitals(context.Background(), models.Location{Latitude: 37.7690, Longitude: -122.4530}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHospital(t *testing.T) {
	s := newService()

	h, err := s.Hospital(context.Background(), "hosp-ucsf")
	require.NoError(t, err)
	assert.Equal(t, "UCSF Medical Center", h.Name)
	assert.NotEmpty(t, h.Departments)

	_, err = s.Hospital(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestNews_PriorityThenNewest(t *testing.T) {
	s := newService()

	got, err := s.News(context.Background(), models.NewsFilter{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	// two high items first, newest first, then the two normal ones
	assert.Equal(t, []string{
		"news-downtown-fire",
		"news-quake-early-warning",
		"news-dispatch-times",
		"news-preparedness-workshop",
	}, []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestNews_Filters(t *testing.T) {
	s := newService()
	ctx := context.Background()

	got, err := s.News(ctx, models.NewsFilter{Category: types.NewsCommunityAlert})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "news-preparedness-workshop", got[0].ID)

	got, err = s.News(ctx, models.NewsFilter{Priority: types.PriorityHigh, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "news-downtown-fire", got[0].ID)

	_, err = s.News(ctx, models.NewsFilter{Category: "gossip"})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = s.News(ctx, models.NewsFilter{Priority: "whenever"})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	_, err = s.News(ctx, models.NewsFilter{Limit: -1})
	assert.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestNewsItemAndCategories(t *testing.T) {
	s := newService()

	n, err := s.NewsItem(context.Background(), "news-dispatch-times")
	require.NoError(t, err)
	assert.Equal(t, types.NewsSafetyUpdate, n.Category)

	_, err = s.NewsItem(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.Len(t, s.NewsCategories(), 4)
}
