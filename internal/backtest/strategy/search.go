package strategy

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// SearchForDate returns the index of the bar dated target within series[lower:upper+1].
// Without an exact match it returns the first bar dated after target.
// Bars are compared by day key.
func SearchForDate(series []types.Bar, target time.Time, lower int, upper int) (int, error) {
	if len(series) == 0 {
		return 0, errors.New(errors.ErrCodeDateOutOfRange, "cannot search an empty price series")
	}

	if lower < 0 {
		lower = 0
	}

	if upper >= len(series) || upper < 0 {
		upper = len(series) - 1
	}

	key := types.DateKey(target)

	if lower > upper {
		return 0, errors.Newf(errors.ErrCodeDateOutOfRange, "date %s: search range [%d, %d] is empty", key, lower, upper)
	}

	first, last := series[lower].Key(), series[upper].Key()
	if key < first || key > last {
		return 0, errors.Newf(errors.ErrCodeDateOutOfRange, "date %s is outside [%s, %s]", key, first, last)
	}

	offset := sort.Search(upper-lower+1, func(i int) bool {
		return series[lower+i].Key() >= key
	})

	return lower + offset, nil
}
