package autopick

import (
	"math/rand"
	"time"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Random picks uniformly from the pool. Configurable fallback for leagues
// that do not want quality weighting.
type Random struct {
	rng *rand.Rand
}

// NewRandom constructs a Random strategy with its own seed.
func NewRandom() *Random {
	return &Random{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *Random) Select(available []models.PlayerSummary, _ []models.Pick) (models.PlayerSummary, error) {
	if len(available) == 0 {
		return models.PlayerSummary{}, draft.ErrNoAvailablePlayers
	}
	return available[s.rng.Intn(len(available))], nil
}
