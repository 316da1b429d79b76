// Package autopick chooses a player for a participant who missed their turn.
package autopick

import (
	"hash/fnv"
	"sort"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

// Strategy selects one player from the remaining pool. Implementations must
// treat both slices as read-only.
type Strategy interface {
	Select(available []models.PlayerSummary, picksSoFar []models.Pick) (models.PlayerSummary, error)
}

// Position baselines for estimated value. Unlisted positions fall back to
// baselineDefault.
var positionBaseline = map[string]float64{
	"QB": 85,
	"RB": 88,
	"WR": 86,
	"TE": 78,
	"SP": 84,
	"CP": 80,
	"PG": 83,
	"SG": 81,
	"C":  76,
	"K":  60,
}

const baselineDefault = 70

// Positions that anchor a roster get a flat bonus on top of estimated value.
var positionBonus = map[string]float64{
	"QB": 10,
	"RB": 10,
	"WR": 10,
	"SP": 10,
	"PG": 10,
	"TE": 5,
	"SG": 5,
	"CP": 5,
}

const maxBalanceBonus = 30

// BestAvailable is the default strategy: a quality-weighted score over the
// pool, deterministic for a given pool and pick history. Ties keep the
// earlier pool entry.
type BestAvailable struct{}

func NewBestAvailable() *BestAvailable { return &BestAvailable{} }

func (s *BestAvailable) Select(available []models.PlayerSummary, picksSoFar []models.Pick) (models.PlayerSummary, error) {
	if len(available) == 0 {
		return models.PlayerSummary{}, draft.ErrNoAvailablePlayers
	}

	balance := subLeagueBalance(available, picksSoFar)

	best := available[0]
	bestScore := score(best, balance)
	for _, p := range available[1:] {
		if s := score(p, balance); s > bestScore {
			best, bestScore = p, s
		}
	}
	return best, nil
}

func score(p models.PlayerSummary, balance map[string]float64) float64 {
	return estimatedValue(p)*100 + positionBonus[p.Position] + balance[p.SubLeague]
}

// estimatedValue perturbs the position baseline by a factor in [0.85, 1.15)
// derived from the player id, so repeated evaluation of the same player is
// stable without a shared ranking service.
func estimatedValue(p models.PlayerSummary) float64 {
	base, ok := positionBaseline[p.Position]
	if !ok {
		base = baselineDefault
	}

	h := fnv.New32a()
	h.Write([]byte(p.ID))
	factor := 0.85 + 0.30*float64(h.Sum32()%1000)/1000.0
	return base * factor
}

// subLeagueBalance rewards sub-leagues under-represented in the pick history
// relative to an equal share across the sub-leagues still in the pool. The
// bonus is floored at zero and capped at maxBalanceBonus.
func subLeagueBalance(available []models.PlayerSummary, picksSoFar []models.Pick) map[string]float64 {
	subLeagues := make(map[string]struct{})
	for _, p := range available {
		subLeagues[p.SubLeague] = struct{}{}
	}
	if len(subLeagues) == 0 {
		return nil
	}

	picked := make(map[string]int)
	for _, pk := range picksSoFar {
		picked[pk.Player.SubLeague]++
	}

	target := float64(len(picksSoFar)) / float64(len(subLeagues))

	keys := make([]string, 0, len(subLeagues))
	for sl := range subLeagues {
		keys = append(keys, sl)
	}
	sort.Strings(keys)

	bonus := make(map[string]float64, len(keys))
	for _, sl := range keys {
		deficit := target - float64(picked[sl])
		b := deficit * 10
		if b < 0 {
			b = 0
		}
		if b > maxBalanceBonus {
			b = maxBalanceBonus
		}
		bonus[sl] = b
	}
	return bonus
}
