package portfolio

import (
	"context"
	"math/rand"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/datasource"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/types"
)

type Timeline = orderedmap.OrderedMap[string, types.TimelineEntry]

// Portfolio simulates capital constrained execution of a flat list of trades.
// CashAvailable is reset by every Backtest call. HistoricalTrades, Timeline,
// SignalsNotTaken and Warnings accumulate until a new Portfolio is created.
type Portfolio struct {
	StartCapital      float64
	MaxNumberOfStocks int
	AvailableSlots    int
	SelectionMethod   types.SelectionMethod
	CashAvailable     float64
	HistoricalTrades  []*types.Trade
	Timeline          *Timeline
	SignalsNotTaken   int
	Warnings          []string

	workerLimit int
	dataSource  datasource.PriceDataSource
	logger      *logger.Logger
	rng         *rand.Rand
}

// Result is what a portfolio run hands to the presentation layer.
type Result struct {
	HistoricalTrades []*types.Trade
	Timeline         *Timeline
	SignalsNotTaken  int
	CashAvailable    float64
	Warnings         []string
}

// NewPortfolio creates a portfolio. dataSource may be nil, in which case the
// timeline only holds the days with a cash event.
func NewPortfolio(config Config, dataSource datasource.PriceDataSource, log *logger.Logger) *Portfolio {
	if log == nil {
		log = logger.NewNopLogger()
	}

	workerLimit := config.WorkerLimit
	if workerLimit <= 0 {
		workerLimit = DefaultWorkerLimit
	}

	selectionMethod := config.SelectionMethod
	if selectionMethod == "" {
		selectionMethod = types.SelectionRandom
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Portfolio{
		StartCapital:      config.StartCapital,
		MaxNumberOfStocks: config.MaxNumberOfStocks,
		AvailableSlots:    config.MaxNumberOfStocks,
		SelectionMethod:   selectionMethod,
		CashAvailable:     config.StartCapital,
		HistoricalTrades:  []*types.Trade{},
		Timeline:          orderedmap.New[string, types.TimelineEntry](),
		SignalsNotTaken:   0,
		Warnings:          []string{},
		workerLimit:       workerLimit,
		dataSource:        dataSource,
		logger:            log,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

// Backtest walks the entry and exit days of trades in order. Exits are closed
// before entries are opened, and each opened trade gets its quantity and fee set.
func (p *Portfolio) Backtest(ctx context.Context, trades []*types.Trade, fee types.FeeModel) (Result, error) {
	p.CashAvailable = p.StartCapital

	// open positions keyed by the day they close
	holding := make(map[string][]*types.Trade)
	taken := 0

	signalMap := GenerateSignalMaps(trades)

	for pair := signalMap.Oldest(); pair != nil; pair = pair.Next() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		date := pair.Key
		group := pair.Value

		if closing, ok := holding[date]; ok {
			p.closeTrades(closing)
			delete(holding, date)
		}

		sameDay, opened, err := p.openTrades(date, group.Entry, fee)
		if err != nil {
			return Result{}, err
		}

		for _, trade := range opened {
			exitKey := types.DateKey(trade.Exit.Date)
			holding[exitKey] = append(holding[exitKey], trade)
		}

		p.closeTrades(sameDay)

		taken += len(opened) + len(sameDay)

		p.Timeline.Set(date, types.TimelineEntry{
			CashAvailable:         p.CashAvailable,
			TotalPositionValue:    0,
			NumberOfPositionsOpen: 0,
			Total:                 p.CashAvailable,
		})
	}

	p.logger.Info("Portfolio backtest finished",
		zap.Int("trades", len(trades)),
		zap.Int("taken", taken),
		zap.Int("signals_not_taken", p.SignalsNotTaken),
		zap.Float64("cash_available", p.CashAvailable),
	)

	if taken > 0 {
		if err := p.GenerateTimeline(ctx); err != nil {
			return Result{}, err
		}
	}

	return p.Result(), nil
}

// openTrades sizes and opens the ranked candidates of one day.
// Trades that also exit on date are returned separately so they close after every open of the day.
func (p *Portfolio) openTrades(date string, entries []*types.Trade, fee types.FeeModel) ([]*types.Trade, []*types.Trade, error) {
	if len(entries) == 0 {
		return nil, nil, nil
	}

	candidates, err := RankSignals(entries, p.SelectionMethod, p.AvailableSlots, p.rng)
	if err != nil {
		return nil, nil, err
	}

	// candidates beyond the free slots are never offered
	p.SignalsNotTaken += len(entries) - len(candidates)

	var sameDay, opened []*types.Trade

	for _, trade := range candidates {
		if p.AvailableSlots <= 0 {
			p.SignalsNotTaken++

			continue
		}

		maxPositionValue := (p.CashAvailable - feeOn(fee, p.CashAvailable)) / float64(p.AvailableSlots)

		quantity := trade.CalculateQuantity(maxPositionValue)
		if quantity <= 0 {
			p.SignalsNotTaken++
			p.logger.Debug("Skipping signal, position too expensive",
				zap.String("date", date),
				zap.String("stock", trade.Stock.ID),
				zap.Float64("price", trade.Entry.Price),
				zap.Float64("max_position_value", maxPositionValue),
			)

			continue
		}

		trade.SetQuantity(quantity).SetFee(fee)
		p.CashAvailable = types.RoundNumber(p.CashAvailable - trade.InitialValue())
		p.AvailableSlots--

		if types.DateKey(trade.Exit.Date) == date {
			sameDay = append(sameDay, trade)
		} else {
			opened = append(opened, trade)
		}
	}

	return sameDay, opened, nil
}

func (p *Portfolio) closeTrades(trades []*types.Trade) {
	for _, trade := range trades {
		p.CashAvailable = types.RoundNumber(p.CashAvailable + trade.FinalValue())
		p.AvailableSlots++
		p.HistoricalTrades = append(p.HistoricalTrades, trade)
	}
}

func (p *Portfolio) Result() Result {
	return Result{
		HistoricalTrades: p.HistoricalTrades,
		Timeline:         p.Timeline,
		SignalsNotTaken:  p.SignalsNotTaken,
		CashAvailable:    p.CashAvailable,
		Warnings:         p.Warnings,
	}
}

func feeOn(fee types.FeeModel, amount float64) float64 {
	if fee == nil {
		return 0
	}

	return fee.Calculate(amount)
}

// EquitySeries returns the timeline totals as chart points.
func (r Result) EquitySeries() []types.EquityPoint {
	points := make([]types.EquityPoint, 0, r.Timeline.Len())
	for pair := r.Timeline.Oldest(); pair != nil; pair = pair.Next() {
		points = append(points, types.EquityPoint{
			Time:  pair.Key,
			Value: pair.Value.Total,
		})
	}

	return points
}

// FinalEquity is the total of the last timeline day, or the cash when the timeline is empty.
func (r Result) FinalEquity() float64 {
	if newest := r.Timeline.Newest(); newest != nil {
		return newest.Value.Total
	}

	return r.CashAvailable
}

func (r Result) TotalFees() float64 {
	total := 0.0
	for _, trade := range r.HistoricalTrades {
		total += trade.TotalFees()
	}

	return types.RoundNumber(total)
}

// ResultsInCash returns the realized cash result of every historical trade.
func (r Result) ResultsInCash() []float64 {
	results := make([]float64, len(r.HistoricalTrades))
	for i, trade := range r.HistoricalTrades {
		results[i] = trade.ResultInCash()
	}

	return results
}
