package strategy

import (
	"time"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

var seriesStart = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

// barsFromCloses builds one bar per day opening half a unit below its close.
func barsFromCloses(closes ...float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Date:  seriesStart.AddDate(0, 0, i),
			Open:  c - 0.5,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}

	return bars
}

func day(offset int) time.Time {
	return seriesStart.AddDate(0, 0, offset)
}
