package matcher

import (
	"cmp"
	"math"
	"slices"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/models"
)

// score is the primary ranking key, rounded so near-equal ETAs fall through to rating.
func score(c models.AmbulanceDistance, costWeight float64) float64 {
	s := c.ETAMinutes + costWeight*c.CostValue()
	return math.Round(s*100) / 100
}

// rank drops unavailable and already tried candidates and orders the rest:
// preferred ambulance first, then score ascending, rating descending, id ascending.
func rank(list []models.AmbulanceDistance, tried map[string]struct{}, preferred string, costWeight float64) []models.AmbulanceDistance {
	out := make([]models.AmbulanceDistance, 0, len(list))
	for _, c := range list {
		if !c.Available {
			continue
		}
		if _, ok := tried[c.ID]; ok {
			continue
		}
		out = append(out, c)
	}

	slices.SortFunc(out, func(a, b models.AmbulanceDistance) int {
		if preferred != "" && (a.ID == preferred) != (b.ID == preferred) {
			if a.ID == preferred {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(score(a, costWeight), score(b, costWeight)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out
}
