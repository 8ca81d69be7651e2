package portfolio

import (
	"context"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// contribution is the open position value one stock adds to each day.
type contribution struct {
	values map[string]float64
	counts map[string]int
}

// fetched is the price history of one stock, or the reason it could not be fetched.
type fetched struct {
	bars []types.Bar
	err  error
}

// GenerateTimeline rebuilds Timeline as a dense daily equity curve.
// The calendar is the price history of the first historical trade's stock plus every cash event day.
// Each stock's history is fetched once; a failed fetch is recorded as a warning and its trades add no value.
// When the calendar stock itself cannot be fetched, the dates of the other fetched stocks are used instead.
func (p *Portfolio) GenerateTimeline(ctx context.Context) error {
	if len(p.HistoricalTrades) == 0 {
		return nil
	}

	if p.dataSource == nil {
		p.warn("no price data source configured, timeline only covers cash events")

		return nil
	}

	byStock := make(map[string][]*types.Trade)
	for _, trade := range p.HistoricalTrades {
		byStock[trade.Stock.ID] = append(byStock[trade.Stock.ID], trade)
	}

	stockIDs := make([]string, 0, len(byStock))
	for id := range byStock {
		stockIDs = append(stockIDs, id)
	}

	sort.Strings(stockIDs)

	// each task writes only its own slot
	histories := make([]fetched, len(stockIDs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.workerLimit)

	for i, id := range stockIDs {
		i, id := i, id // per-iteration copies for the closure (go 1.21 loop semantics)
		group.Go(func() error {
			stock, err := p.dataSource.FetchStock(groupCtx, id, types.DefaultStockFields)
			histories[i] = fetched{bars: stock.PriceData, err: err}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return errors.Wrap(errors.ErrCodeTimelineFailed, "failed to build timeline", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	calendarID := p.HistoricalTrades[0].Stock.ID
	keys := p.calendarKeys(p.calendarBars(calendarID, stockIDs, histories))
	timeline := p.seedCash(keys)

	for i, id := range stockIDs {
		history := histories[i]
		if history.err != nil {
			if id != calendarID {
				p.warn(fmt.Sprintf("failed to fetch price data for stock %s: %v", id, history.err))
			}

			continue
		}

		result := positionValues(history.bars, byStock[id], keys)

		for key, value := range result.values {
			entry, _ := timeline.Get(key)
			entry.TotalPositionValue += value
			entry.NumberOfPositionsOpen += result.counts[key]
			timeline.Set(key, entry)
		}
	}

	for pair := timeline.Oldest(); pair != nil; pair = pair.Next() {
		entry := pair.Value
		entry.TotalPositionValue = types.RoundNumber(entry.TotalPositionValue)
		entry.Total = types.RoundNumber(entry.CashAvailable + entry.TotalPositionValue)
		pair.Value = entry
	}

	p.Timeline = timeline

	return nil
}

// calendarBars returns the history of the calendar stock. If it failed to fetch,
// the histories of every other fetched stock stand in for it.
func (p *Portfolio) calendarBars(calendarID string, stockIDs []string, histories []fetched) []types.Bar {
	index := sort.SearchStrings(stockIDs, calendarID)
	if histories[index].err == nil {
		return histories[index].bars
	}

	p.warn(fmt.Sprintf("failed to fetch calendar stock %s: %v, using the dates of the other stocks", calendarID, histories[index].err))

	var bars []types.Bar

	for i, history := range histories {
		if i != index && history.err == nil {
			bars = append(bars, history.bars...)
		}
	}

	return bars
}

// calendarKeys merges the calendar bars with the cash event days, sorted and unique.
func (p *Portfolio) calendarKeys(bars []types.Bar) []string {
	seen := make(map[string]struct{}, len(bars)+p.Timeline.Len())
	keys := make([]string, 0, len(bars)+p.Timeline.Len())

	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	for _, bar := range bars {
		add(bar.Key())
	}

	for pair := p.Timeline.Oldest(); pair != nil; pair = pair.Next() {
		add(pair.Key)
	}

	sort.Strings(keys)

	return keys
}

// seedCash carries the last known cash balance forward over keys.
func (p *Portfolio) seedCash(keys []string) *Timeline {
	timeline := orderedmap.New[string, types.TimelineEntry](len(keys))
	cash := p.StartCapital

	for _, key := range keys {
		if event, ok := p.Timeline.Get(key); ok {
			cash = event.CashAvailable
		}

		timeline.Set(key, types.TimelineEntry{
			CashAvailable:         cash,
			TotalPositionValue:    0,
			NumberOfPositionsOpen: 0,
			Total:                 cash,
		})
	}

	return timeline
}

// positionValues values every trade at the last known close for each day it is held.
// Days before the first close in the history use the entry price.
func positionValues(bars []types.Bar, trades []*types.Trade, keys []string) contribution {
	closes := make(map[string]float64, len(bars))
	for _, bar := range bars {
		closes[bar.Key()] = bar.Close
	}

	result := contribution{
		values: make(map[string]float64),
		counts: make(map[string]int),
	}

	for _, trade := range trades {
		exitKey := types.DateKey(trade.Exit.Date)
		lastClose := trade.Entry.Price

		for _, key := range keys {
			if key >= exitKey {
				break
			}

			if price, ok := closes[key]; ok {
				lastClose = price
			}

			if !trade.IsOpenOn(key) {
				continue
			}

			result.values[key] += trade.Quantity() * lastClose
			result.counts[key]++
		}
	}

	return result
}

func (p *Portfolio) warn(message string) {
	p.logger.Warn("Timeline", zap.String("warning", message))
	p.Warnings = append(p.Warnings, message)
}
