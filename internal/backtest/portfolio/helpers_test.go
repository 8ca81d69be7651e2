package portfolio

import (
	"testing"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// newTestTrade builds a trade from day keys. It fails the test on invalid input.
func newTestTrade(t *testing.T, stockID string, entryKey string, exitKey string, entryPrice float64, exitPrice float64) *types.Trade {
	t.Helper()

	stock := types.Stock{ID: stockID, Name: stockID, List: "Large Cap Stockholm"}

	entryDate, err := types.ParseDateKey(entryKey)
	if err != nil {
		t.Fatalf("invalid entry date %s: %v", entryKey, err)
	}

	exitDate, err := types.ParseDateKey(exitKey)
	if err != nil {
		t.Fatalf("invalid exit date %s: %v", exitKey, err)
	}

	entry, err := types.NewSignal(stock, entryPrice, entryDate, "buy", "enter")
	if err != nil {
		t.Fatalf("invalid entry signal: %v", err)
	}

	exit, err := types.NewSignal(stock, exitPrice, exitDate, "sell", "exit")
	if err != nil {
		t.Fatalf("invalid exit signal: %v", err)
	}

	trade, err := types.NewTrade(entry, exit, stock, nil)
	if err != nil {
		t.Fatalf("invalid trade: %v", err)
	}

	return trade
}

func timelineKeys(timeline *Timeline) []string {
	keys := make([]string, 0, timeline.Len())
	for pair := timeline.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}
