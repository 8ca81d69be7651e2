package strategy

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// Flipper buys when the close has risen EntryFactor above the trailing low
// and sells when it has fallen to ExitFactor of the trailing high.
type Flipper struct {
	rules types.Rules
}

func NewFlipper(rules types.Rules) *Flipper {
	return &Flipper{
		rules: rules,
	}
}

func (f *Flipper) Name() string {
	return string(RuleFlipper)
}

func (f *Flipper) Rules() types.Rules {
	return f.rules
}

func (f *Flipper) InitialContext() types.Context {
	return types.Context{
		Bias:         types.BiasNeutral,
		HighPrice:    0,
		LowPrice:     0,
		TriggerPrice: 0,
		Regime:       types.RegimeBull,
	}
}

func (f *Flipper) ProcessBar(input BarInput) (BarOutput, error) {
	previous := input.Context
	high, low := f.trailingLevels(previous.HighPrice, previous.LowPrice, input.SignalBar)

	next := types.Context{
		Bias:         previous.Bias,
		HighPrice:    high,
		LowPrice:     low,
		TriggerPrice: previous.TriggerPrice,
		Regime:       f.updateRegime(),
	}

	output := BarOutput{
		Signal:        optional.None[types.Signal](),
		PendingSignal: optional.None[types.PendingSignal](),
		Context:       next,
	}

	closePrice := input.SignalBar.Close

	switch previous.Bias {
	case types.BiasBear, types.BiasNeutral:
		entryLevel := next.LowPrice * f.rules.EntryFactor
		if closePrice < entryLevel || !f.entryAllowed(next.Regime) {
			output.Context.TriggerPrice = entryLevel

			return output, nil
		}

		output.Context.Bias = types.BiasBull
		output.Context.HighPrice = closePrice
		output.Context.TriggerPrice = closePrice * f.exitFactor(next.Regime)

		signal, pending, err := emit(input, types.SignalActionBuy, types.SignalTypeEnter)
		if err != nil {
			return BarOutput{}, err
		}

		output.Signal = signal
		output.PendingSignal = pending
	case types.BiasBull:
		exitLevel := next.HighPrice * f.exitFactor(next.Regime)
		if closePrice > exitLevel {
			output.Context.TriggerPrice = exitLevel

			return output, nil
		}

		output.Context.Bias = types.BiasBear
		output.Context.LowPrice = closePrice
		output.Context.TriggerPrice = closePrice * f.rules.EntryFactor

		signal, pending, err := emit(input, types.SignalActionSell, types.SignalTypeExit)
		if err != nil {
			return BarOutput{}, err
		}

		output.Signal = signal
		output.PendingSignal = pending
	default:
		return BarOutput{}, errors.Newf(errors.ErrCodeInvalidBias, "invalid bias: %q", previous.Bias)
	}

	return output, nil
}

// trailingLevels folds the signal bar into the trailing high and low.
// A zero level has not been set yet and takes the bar's value.
func (f *Flipper) trailingLevels(high float64, low float64, bar types.Bar) (float64, float64) {
	barHigh, barLow := bar.Close, bar.Close
	if f.rules.UseHighAndLow {
		barHigh, barLow = bar.High, bar.Low
	}

	if high == 0 {
		high = barHigh
	} else {
		high = math.Max(high, barHigh)
	}

	if low == 0 {
		low = barLow
	} else {
		low = math.Min(low, barLow)
	}

	return high, low
}

// updateRegime is the hook for a market regime filter. No filter is wired yet.
func (f *Flipper) updateRegime() types.Regime {
	return types.RegimeBull
}

func (f *Flipper) exitFactor(regime types.Regime) float64 {
	if regime == types.RegimeBear {
		return f.rules.BearishRegimeExitFactor
	}

	return f.rules.ExitFactor
}

func (f *Flipper) entryAllowed(regime types.Regime) bool {
	return regime != types.RegimeBear || f.rules.EntryInBearishRegime
}
