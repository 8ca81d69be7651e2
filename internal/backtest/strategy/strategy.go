package strategy

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
	"go.uber.org/zap"
)

// Result is everything a replay of one stock produces.
type Result struct {
	Signals []types.Signal
	// ContextHistory starts with the initial context and has one entry per replayed bar after it
	ContextHistory []types.Context
	// Context is the context after the last observed bar. A live run resumes from it.
	Context       types.Context
	PendingSignal optional.Option[types.PendingSignal]
	// CloseOpenPosition is the synthetic exit for a position still open at the end of the series
	CloseOpenPosition optional.Option[types.Signal]
	Trades            []*types.Trade
}

// Strategy replays a price series through a Rule.
type Strategy struct {
	rule   Rule
	policy types.OpenPositionPolicy
	logger *logger.Logger
}

func NewStrategy(rule Rule, policy types.OpenPositionPolicy, log *logger.Logger) *Strategy {
	if policy == "" {
		policy = types.OpenPositionConservative
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Strategy{
		rule:   rule,
		policy: policy,
		logger: log,
	}
}

func (s *Strategy) Rule() Rule {
	return s.rule
}

func (s *Strategy) Policy() types.OpenPositionPolicy {
	return s.policy
}

// Test replays the whole price history of stock.
func (s *Strategy) Test(stock types.Stock) (Result, error) {
	return s.TestRange(stock, optional.None[time.Time](), optional.None[time.Time]())
}

// TestRange replays the bars of stock dated within the optional start and end bounds.
func (s *Strategy) TestRange(stock types.Stock, start optional.Option[time.Time], end optional.Option[time.Time]) (Result, error) {
	series := ExtractData(stock.PriceData, start, end)
	summary := stock.Summary()

	state := s.rule.InitialContext()
	result := Result{
		Signals:           []types.Signal{},
		ContextHistory:    []types.Context{state},
		PendingSignal:     optional.None[types.PendingSignal](),
		CloseOpenPosition: optional.None[types.Signal](),
		Trades:            []*types.Trade{},
	}

	for i := 1; i < len(series); i++ {
		output, err := s.rule.ProcessBar(BarInput{
			SignalBar:  series[i-1],
			CurrentBar: optional.Some(series[i]),
			Stock:      summary,
			Context:    state,
		})
		if err != nil {
			return Result{}, err
		}

		if output.Signal.IsSome() {
			signal := output.Signal.Unwrap()
			result.Signals = append(result.Signals, signal)
			s.logger.Debug("Signal",
				zap.String("stock", summary.ID),
				zap.String("type", string(signal.Type)),
				zap.String("date", types.DateKey(signal.Date)),
				zap.Float64("price", signal.Price),
			)
		}

		state = output.Context
		result.ContextHistory = append(result.ContextHistory, state)
	}

	result.Context = state

	if len(series) == 0 {
		return result, nil
	}

	// the bar after the last one is not observed yet, so a trigger here is pending
	lastBar := series[len(series)-1]

	pending, err := s.rule.ProcessBar(BarInput{
		SignalBar:  lastBar,
		CurrentBar: optional.None[types.Bar](),
		Stock:      summary,
		Context:    state,
	})
	if err != nil {
		return Result{}, err
	}

	result.PendingSignal = pending.PendingSignal

	closeSignal, err := s.HandleOpenPositions(result.Signals, lastBar, state, summary)
	if err != nil {
		return Result{}, err
	}

	result.CloseOpenPosition = closeSignal

	trades, err := s.SummarizeSignals(result.Signals, closeSignal, series, summary)
	if err != nil {
		return Result{}, err
	}

	result.Trades = trades

	return result, nil
}

// HandleOpenPositions returns a synthetic exit when signals end with an open position.
// The exit is dated at the last bar and priced according to the open position policy.
func (s *Strategy) HandleOpenPositions(signals []types.Signal, lastBar types.Bar, state types.Context, stock types.Stock) (optional.Option[types.Signal], error) {
	if len(signals)%2 == 0 {
		return optional.None[types.Signal](), nil
	}

	last := signals[len(signals)-1]
	if !last.IsEnter() {
		return optional.None[types.Signal](), errors.Newf(errors.ErrCodeLogicError,
			"odd number of signals (%d) ending with %q for stock %s", len(signals), last.Type, stock.ID)
	}

	var price float64

	switch s.policy {
	case types.OpenPositionOptimistic:
		price = lastBar.Close
	case types.OpenPositionConservative, types.OpenPositionExclude:
		price = state.TriggerPrice
	default:
		return optional.None[types.Signal](), errors.Newf(errors.ErrCodeInvalidParameter, "unknown open position policy: %s", s.policy)
	}

	signal, err := types.NewSignal(stock, price, lastBar.Date, string(types.SignalActionSell), string(types.SignalTypeExit))
	if err != nil {
		return optional.None[types.Signal](), err
	}

	s.logger.Debug("Closing open position",
		zap.String("stock", stock.ID),
		zap.String("policy", string(s.policy)),
		zap.Float64("price", price),
	)

	return optional.Some(signal), nil
}

// SummarizeSignals pairs signals into trades, appending closeSignal when present.
// With the exclude policy the trade closed by closeSignal is dropped.
func (s *Strategy) SummarizeSignals(signals []types.Signal, closeSignal optional.Option[types.Signal], series []types.Bar, stock types.Stock) ([]*types.Trade, error) {
	all := make([]types.Signal, 0, len(signals)+1)
	all = append(all, signals...)

	if closeSignal.IsSome() {
		all = append(all, closeSignal.Unwrap())
	}

	pairs, err := GroupSignals(all)
	if err != nil {
		return nil, err
	}

	trades, err := AssignPriceData(pairs, series, stock)
	if err != nil {
		return nil, err
	}

	if s.policy == types.OpenPositionExclude && closeSignal.IsSome() {
		trades = trades[:len(trades)-1]
	}

	return trades, nil
}

// GroupSignals splits signals into consecutive [enter, exit] pairs.
func GroupSignals(signals []types.Signal) ([][2]types.Signal, error) {
	if len(signals)%2 != 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidSignalSequence, "cannot pair an odd number of signals (%d)", len(signals))
	}

	pairs := make([][2]types.Signal, 0, len(signals)/2)

	for i := 0; i < len(signals); i += 2 {
		entry, exit := signals[i], signals[i+1]
		if !entry.IsEnter() || !exit.IsExit() {
			return nil, errors.Newf(errors.ErrCodeInvalidSignalSequence,
				"signals %d and %d are [%s, %s], expected [enter, exit]", i, i+1, entry.Type, exit.Type)
		}

		pairs = append(pairs, [2]types.Signal{entry, exit})
	}

	return pairs, nil
}

// AssignPriceData turns pairs into trades carrying the bars from entry to exit.
// Each search starts where the previous pair ended.
func AssignPriceData(pairs [][2]types.Signal, series []types.Bar, stock types.Stock) ([]*types.Trade, error) {
	trades := make([]*types.Trade, 0, len(pairs))
	lower := 0
	upper := len(series) - 1

	for _, pair := range pairs {
		entryIndex, err := SearchForDate(series, pair[0].Date, lower, upper)
		if err != nil {
			return nil, err
		}

		exitIndex, err := SearchForDate(series, pair[1].Date, entryIndex, upper)
		if err != nil {
			return nil, err
		}

		trade, err := types.NewTrade(pair[0], pair[1], stock, series[entryIndex:exitIndex+1])
		if err != nil {
			return nil, err
		}

		trades = append(trades, trade)
		lower = exitIndex
	}

	return trades, nil
}

// ExtractData returns the bars dated within the optional bounds, both inclusive.
func ExtractData(series []types.Bar, start optional.Option[time.Time], end optional.Option[time.Time]) []types.Bar {
	if start.IsNone() && end.IsNone() {
		return series
	}

	extracted := make([]types.Bar, 0, len(series))

	for _, bar := range series {
		if start.IsSome() && bar.Key() < types.DateKey(start.Unwrap()) {
			continue
		}

		if end.IsSome() && bar.Key() > types.DateKey(end.Unwrap()) {
			continue
		}

		extracted = append(extracted, bar)
	}

	return extracted
}
