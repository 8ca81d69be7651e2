package portfolio

import (
	"math/rand"
	"sort"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// RankSignals orders entry candidates by method and keeps at most slots of them.
// The input slice is never reordered.
func RankSignals(entries []*types.Trade, method types.SelectionMethod, slots int, rng *rand.Rand) ([]*types.Trade, error) {
	ranked := make([]*types.Trade, len(entries))
	copy(ranked, entries)

	switch method {
	case types.SelectionRandom:
		rng.Shuffle(len(ranked), func(i, j int) {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		})
	case types.SelectionBest:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].ResultPercent() > ranked[j].ResultPercent()
		})
	case types.SelectionWorst:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].ResultPercent() < ranked[j].ResultPercent()
		})
	case types.SelectionNone, "":
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidSelectionMethod, "unknown selection method: %s", method)
	}

	if slots < 0 {
		slots = 0
	}

	if len(ranked) > slots {
		ranked = ranked[:slots]
	}

	return ranked, nil
}
