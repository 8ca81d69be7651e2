package strategy

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// replayCloses produces two round trips and a position left open on the last bar.
var replayCloses = []float64{100, 90, 80, 85, 97, 100, 110, 120, 100, 95, 90, 100, 110, 90, 80, 70, 75, 85, 90}

// scriptedRule emits a fixed signal on selected bars.
type scriptedRule struct {
	signals map[int]types.SignalType
	step    int
}

func (r *scriptedRule) Name() string { return "scripted" }

func (r *scriptedRule) InitialContext() types.Context {
	return types.Context{Bias: types.BiasNeutral, Regime: types.RegimeBull}
}

func (r *scriptedRule) ProcessBar(input BarInput) (BarOutput, error) {
	r.step++
	output := BarOutput{Context: input.Context}

	signalType, ok := r.signals[r.step]
	if !ok || input.CurrentBar.IsNone() {
		return output, nil
	}

	action := types.SignalActionBuy
	if signalType == types.SignalTypeExit {
		action = types.SignalActionSell
	}

	current := input.CurrentBar.Unwrap()

	signal, err := types.NewSignal(input.Stock, current.Open, current.Date, string(action), string(signalType))
	if err != nil {
		return BarOutput{}, err
	}

	output.Signal = optional.Some(signal)

	return output, nil
}

type StrategyTestSuite struct {
	suite.Suite
	stock types.Stock
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.stock = types.Stock{
		ID:        "ATCO-A",
		Name:      "Atlas Copco A",
		List:      "Large Cap Stockholm",
		PriceData: barsFromCloses(replayCloses...),
	}
}

func (suite *StrategyTestSuite) newStrategy(policy types.OpenPositionPolicy) *Strategy {
	return NewStrategy(NewFlipper(types.DefaultRules()), policy, nil)
}

func (suite *StrategyTestSuite) TestReplaySignals() {
	result, err := suite.newStrategy(types.OpenPositionConservative).Test(suite.stock)
	suite.Require().NoError(err)

	expected := []struct {
		signalType types.SignalType
		date       time.Time
		price      float64
	}{
		{types.SignalTypeEnter, day(5), 99.5},
		{types.SignalTypeExit, day(9), 94.5},
		{types.SignalTypeEnter, day(13), 89.5},
		{types.SignalTypeExit, day(14), 79.5},
		{types.SignalTypeEnter, day(18), 89.5},
	}

	suite.Require().Len(result.Signals, len(expected))

	for i, want := range expected {
		suite.Equal(want.signalType, result.Signals[i].Type, "signal %d", i)
		suite.Equal(want.date, result.Signals[i].Date, "signal %d", i)
		suite.Equal(want.price, result.Signals[i].Price, "signal %d", i)
		suite.Nil(result.Signals[i].Stock.PriceData)
	}
}

func (suite *StrategyTestSuite) TestContextHistory() {
	result, err := suite.newStrategy(types.OpenPositionConservative).Test(suite.stock)
	suite.Require().NoError(err)

	suite.Len(result.ContextHistory, len(replayCloses))
	suite.Equal(NewFlipper(types.DefaultRules()).InitialContext(), result.ContextHistory[0])
	suite.Equal(result.ContextHistory[len(result.ContextHistory)-1], result.Context)

	suite.Equal(types.BiasBull, result.Context.Bias)
	suite.Equal(85.0, result.Context.HighPrice)
	suite.Equal(70.0, result.Context.LowPrice)
	suite.InDelta(85.0*5.0/6.0, result.Context.TriggerPrice, 1e-9)
}

func (suite *StrategyTestSuite) TestOpenPositionPolicies() {
	tests := []struct {
		name           string
		policy         types.OpenPositionPolicy
		closePrice     float64
		expectedTrades int
	}{
		{"conservative closes at trigger price", types.OpenPositionConservative, 85.0 * 5.0 / 6.0, 3},
		{"optimistic closes at last close", types.OpenPositionOptimistic, 90, 3},
		{"exclude drops the closing trade", types.OpenPositionExclude, 85.0 * 5.0 / 6.0, 2},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result, err := suite.newStrategy(tc.policy).Test(suite.stock)
			suite.Require().NoError(err)

			suite.Require().True(result.CloseOpenPosition.IsSome())
			closeSignal := result.CloseOpenPosition.Unwrap()
			suite.InDelta(tc.closePrice, closeSignal.Price, 1e-9)
			suite.Equal(day(18), closeSignal.Date)
			suite.Equal(types.SignalActionSell, closeSignal.Action)
			suite.Equal(types.SignalTypeExit, closeSignal.Type)

			suite.Len(result.Trades, tc.expectedTrades)
			// the synthetic exit is reported but never added to the signal list
			suite.Len(result.Signals, 5)
		})
	}
}

func (suite *StrategyTestSuite) TestTradesCarryPriceData() {
	result, err := suite.newStrategy(types.OpenPositionConservative).Test(suite.stock)
	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 3)

	first := result.Trades[0]
	suite.Equal(1.0, first.Quantity())
	suite.Require().Len(first.PriceData, 5)
	suite.Equal(day(5), first.PriceData[0].Date)
	suite.Equal(day(9), first.PriceData[4].Date)
	suite.InDelta(94.5-99.5, first.ResultPerStock(), 1e-9)

	suite.Len(result.Trades[1].PriceData, 2)

	// opened and closed on the last bar
	last := result.Trades[2]
	suite.Len(last.PriceData, 1)
	suite.Equal(last.Entry.Date, last.Exit.Date)
}

func (suite *StrategyTestSuite) TestPendingSignal() {
	stock := types.Stock{ID: "INVE-B", PriceData: barsFromCloses(100, 80, 97)}

	result, err := suite.newStrategy(types.OpenPositionConservative).Test(stock)
	suite.Require().NoError(err)

	suite.Empty(result.Signals)
	suite.Empty(result.Trades)
	suite.True(result.CloseOpenPosition.IsNone())
	suite.Require().True(result.PendingSignal.IsSome())

	pending := result.PendingSignal.Unwrap()
	suite.Equal(types.SignalTypeEnter, pending.Type)
	suite.Equal(day(2), pending.SignalDate)
	suite.Equal(97.0, pending.ReferencePrice)

	// the pending evaluation does not leak into the carried context
	suite.Equal(types.BiasNeutral, result.Context.Bias)
	suite.Len(result.ContextHistory, 3)
}

func (suite *StrategyTestSuite) TestEmptyAndSingleBarSeries() {
	strategy := suite.newStrategy(types.OpenPositionConservative)

	result, err := strategy.Test(types.Stock{ID: "EMPTY"})
	suite.Require().NoError(err)
	suite.Empty(result.Signals)
	suite.Empty(result.Trades)
	suite.Len(result.ContextHistory, 1)
	suite.True(result.PendingSignal.IsNone())

	result, err = strategy.Test(types.Stock{ID: "ONE", PriceData: barsFromCloses(100)})
	suite.Require().NoError(err)
	suite.Empty(result.Signals)
	suite.Len(result.ContextHistory, 1)
	suite.True(result.PendingSignal.IsNone())
	suite.Zero(result.Context.HighPrice)
}

func (suite *StrategyTestSuite) TestTestRange() {
	strategy := suite.newStrategy(types.OpenPositionConservative)

	result, err := strategy.TestRange(suite.stock, optional.Some(day(2)), optional.Some(day(12)))
	suite.Require().NoError(err)

	suite.Len(result.ContextHistory, 11)
	suite.Require().Len(result.Signals, 2)
	suite.Equal(day(5), result.Signals[0].Date)
	suite.Equal(day(9), result.Signals[1].Date)
	suite.True(result.CloseOpenPosition.IsNone())
	suite.Len(result.Trades, 1)
}

func (suite *StrategyTestSuite) TestHandleOpenPositionsLogicError() {
	bars := barsFromCloses(100, 101, 102, 103)
	rule := &scriptedRule{signals: map[int]types.SignalType{
		1: types.SignalTypeEnter,
		2: types.SignalTypeExit,
		3: types.SignalTypeExit,
	}}

	_, err := NewStrategy(rule, types.OpenPositionConservative, nil).Test(types.Stock{ID: "X", PriceData: bars})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeLogicError))
	suite.True(errors.IsStrategyDefect(err))
}

func (suite *StrategyTestSuite) TestMalformedSequenceFromRule() {
	bars := barsFromCloses(100, 101, 102, 103, 104)
	rule := &scriptedRule{signals: map[int]types.SignalType{
		1: types.SignalTypeExit,
		2: types.SignalTypeEnter,
	}}

	_, err := NewStrategy(rule, types.OpenPositionConservative, nil).Test(types.Stock{ID: "X", PriceData: bars})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSignalSequence))
}

func (suite *StrategyTestSuite) TestHandleOpenPositionsEvenCount() {
	strategy := suite.newStrategy(types.OpenPositionConservative)

	closeSignal, err := strategy.HandleOpenPositions(nil, suite.stock.PriceData[0], types.Context{}, suite.stock)
	suite.NoError(err)
	suite.True(closeSignal.IsNone())
}

func (suite *StrategyTestSuite) TestConservativeWithoutTriggerPrice() {
	strategy := suite.newStrategy(types.OpenPositionConservative)
	enter, err := types.NewSignal(suite.stock, 10, day(0), "buy", "enter")
	suite.Require().NoError(err)

	_, err = strategy.HandleOpenPositions([]types.Signal{enter}, suite.stock.PriceData[1], types.Context{}, suite.stock)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSignal))
}

func (suite *StrategyTestSuite) TestGroupSignals() {
	enter, err := types.NewSignal(suite.stock, 10, day(0), "buy", "enter")
	suite.Require().NoError(err)
	exit, err := types.NewSignal(suite.stock, 11, day(3), "sell", "exit")
	suite.Require().NoError(err)

	tests := []struct {
		name          string
		signals       []types.Signal
		expectedPairs int
		expectError   bool
	}{
		{"empty", nil, 0, false},
		{"one round trip", []types.Signal{enter, exit}, 1, false},
		{"two round trips", []types.Signal{enter, exit, enter, exit}, 2, false},
		{"odd count", []types.Signal{enter}, 0, true},
		{"exit first", []types.Signal{exit, enter}, 0, true},
		{"two entries", []types.Signal{enter, enter}, 0, true},
		{"broken second pair", []types.Signal{enter, exit, exit, enter}, 0, true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			pairs, err := GroupSignals(tc.signals)
			if tc.expectError {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidSignalSequence))

				return
			}

			suite.NoError(err)
			suite.Len(pairs, tc.expectedPairs)

			for _, pair := range pairs {
				suite.True(pair[0].IsEnter())
				suite.True(pair[1].IsExit())
			}
		})
	}
}

func (suite *StrategyTestSuite) TestAssignPriceDataAcrossGaps() {
	// weekdays only: the 9th and 10th of January 2021 are missing
	series := []types.Bar{
		{Date: time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC), Open: 10, Close: 10},
		{Date: time.Date(2021, 1, 8, 0, 0, 0, 0, time.UTC), Open: 11, Close: 11},
		{Date: time.Date(2021, 1, 11, 0, 0, 0, 0, time.UTC), Open: 12, Close: 12},
		{Date: time.Date(2021, 1, 12, 0, 0, 0, 0, time.UTC), Open: 13, Close: 13},
		{Date: time.Date(2021, 1, 13, 0, 0, 0, 0, time.UTC), Open: 14, Close: 14},
	}

	enter, err := types.NewSignal(suite.stock, 11, series[1].Date, "buy", "enter")
	suite.Require().NoError(err)
	exit, err := types.NewSignal(suite.stock, 12, time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC), "sell", "exit")
	suite.Require().NoError(err)
	enter2, err := types.NewSignal(suite.stock, 13, series[3].Date, "buy", "enter")
	suite.Require().NoError(err)
	exit2, err := types.NewSignal(suite.stock, 14, series[4].Date, "sell", "exit")
	suite.Require().NoError(err)

	trades, err := AssignPriceData([][2]types.Signal{{enter, exit}, {enter2, exit2}}, series, suite.stock)
	suite.Require().NoError(err)
	suite.Require().Len(trades, 2)

	suite.Equal(series[1:3], trades[0].PriceData)
	suite.Equal(series[3:5], trades[1].PriceData)
}

func (suite *StrategyTestSuite) TestAssignPriceDataOutOfRange() {
	series := barsFromCloses(10, 11, 12)
	enter, err := types.NewSignal(suite.stock, 11, day(1), "buy", "enter")
	suite.Require().NoError(err)
	exit, err := types.NewSignal(suite.stock, 12, day(10), "sell", "exit")
	suite.Require().NoError(err)

	_, err = AssignPriceData([][2]types.Signal{{enter, exit}}, series, suite.stock)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDateOutOfRange))
}

func (suite *StrategyTestSuite) TestExtractData() {
	series := barsFromCloses(1, 2, 3, 4, 5)

	suite.Equal(series, ExtractData(series, optional.None[time.Time](), optional.None[time.Time]()))
	suite.Equal(series[1:], ExtractData(series, optional.Some(day(1)), optional.None[time.Time]()))
	suite.Equal(series[:3], ExtractData(series, optional.None[time.Time](), optional.Some(day(2))))
	suite.Equal(series[2:4], ExtractData(series, optional.Some(day(2)), optional.Some(day(3))))
	suite.Empty(ExtractData(series, optional.Some(day(9)), optional.None[time.Time]()))
}

func (suite *StrategyTestSuite) TestDefaultPolicy() {
	strategy := NewStrategy(NewFlipper(types.DefaultRules()), "", nil)

	suite.Equal(types.OpenPositionConservative, strategy.Policy())
	suite.Equal("flipper", strategy.Rule().Name())
}
