package portfolio

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// SignalGroup holds the trades entering and exiting on one day.
type SignalGroup struct {
	Entry []*types.Trade
	Exit  []*types.Trade
}

type SignalMap = orderedmap.OrderedMap[string, *SignalGroup]

// GenerateSignalMaps registers every trade under its entry day and its exit day.
// Keys are day keys in ascending order.
func GenerateSignalMaps(trades []*types.Trade) *SignalMap {
	groups := make(map[string]*SignalGroup)

	group := func(key string) *SignalGroup {
		g, ok := groups[key]
		if !ok {
			g = &SignalGroup{
				Entry: []*types.Trade{},
				Exit:  []*types.Trade{},
			}
			groups[key] = g
		}

		return g
	}

	for _, trade := range trades {
		entry := group(types.DateKey(trade.Entry.Date))
		entry.Entry = append(entry.Entry, trade)

		exit := group(types.DateKey(trade.Exit.Date))
		exit.Exit = append(exit.Exit, trade)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	signalMap := orderedmap.New[string, *SignalGroup](len(keys))
	for _, key := range keys {
		signalMap.Set(key, groups[key])
	}

	return signalMap
}
