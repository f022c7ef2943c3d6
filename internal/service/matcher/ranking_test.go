package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
)

func candidate(id string, eta, rating float64, available bool) models.AmbulanceDistance {
	return models.AmbulanceDistance{
		Ambulance:  models.Ambulance{ID: id, Rating: rating},
		ETAMinutes: eta,
		Available:  available,
	}
}

func ids(list []models.AmbulanceDistance) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	list := []models.AmbulanceDistance{
		candidate("c", 9, 4.2, true),
		candidate("b", 6, 4.1, true),
		candidate("a", 6, 4.8, true),
		candidate("d", 6, 4.8, true),
		candidate("off", 1, 5, false),
	}

	t.Run("score then rating then id", func(t *testing.T) {
		assert.Equal(t, []string{"a", "d", "b", "c"}, ids(rank(list, nil, "", 0)))
	})

	t.Run("preferred first", func(t *testing.T) {
		assert.Equal(t, []string{"c", "a", "d", "b"}, ids(rank(list, nil, "c", 0)))
	})

	t.Run("tried skipped", func(t *testing.T) {
		tried := map[string]struct{}{"a": {}, "b": {}}
		assert.Equal(t, []string{"d", "c"}, ids(rank(list, tried, "", 0)))
	})

	t.Run("unavailable preferred ignored", func(t *testing.T) {
		assert.Equal(t, []string{"a", "d", "b", "c"}, ids(rank(list, nil, "off", 0)))
	})
}

func TestRank_CostWeight(t *testing.T) {
	cheap := decimal.NewFromInt(10)
	pricey := decimal.NewFromInt(200)

	fast := candidate("fast", 5, 4, true)
	fast.Cost = &pricey
	slow := candidate("slow", 8, 4, true)
	slow.Cost = &cheap

	list := []models.AmbulanceDistance{fast, slow}

	assert.Equal(t, []string{"fast", "slow"}, ids(rank(list, nil, "", 0)))
	assert.Equal(t, []string{"slow", "fast"}, ids(rank(list, nil, "", 0.1)))
}

func TestPolicyRadii(t *testing.T) {
	assert.Equal(t, []float64{5, 10, 20}, DefaultPolicy().Radii())
	assert.Equal(t, []float64{2, 4}, Policy{InitialRadiusKm: 2, RadiusSteps: 2}.Radii())
}
