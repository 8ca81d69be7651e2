package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// BarInput is what a rule sees for one step of the replay.
type BarInput struct {
	// SignalBar is the last completed bar. Triggers are evaluated on it.
	SignalBar types.Bar
	// CurrentBar is the bar a triggered signal executes on, at its open.
	// None means the bar has not been observed yet and any trigger is pending.
	CurrentBar optional.Option[types.Bar]
	// Stock is the summary of the stock under test
	Stock   types.Stock
	Context types.Context
}

// BarOutput is the result of one step of the replay.
type BarOutput struct {
	Signal        optional.Option[types.Signal]
	PendingSignal optional.Option[types.PendingSignal]
	Context       types.Context
}

// Rule turns one bar of a price series into at most one signal.
type Rule interface {
	// Name returns the name of the rule
	Name() string
	// InitialContext returns the context the replay starts from
	InitialContext() types.Context
	// ProcessBar derives the next context and checks for a trigger
	ProcessBar(input BarInput) (BarOutput, error)
}

type RuleName string

const (
	RuleFlipper RuleName = "flipper"
)

var AllRules = []any{
	RuleFlipper,
}

// NewRule returns the rule registered under name.
func NewRule(name RuleName, rules types.Rules) (Rule, error) {
	switch name {
	case RuleFlipper:
		return NewFlipper(rules), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", name)
	}
}

// emit builds the signal for a trigger. Without a current bar the trigger becomes a pending signal.
func emit(input BarInput, action types.SignalAction, signalType types.SignalType) (optional.Option[types.Signal], optional.Option[types.PendingSignal], error) {
	if input.CurrentBar.IsNone() {
		pending := types.PendingSignal{
			Stock:          input.Stock.Summary(),
			Action:         action,
			Type:           signalType,
			SignalDate:     input.SignalBar.Date,
			ReferencePrice: input.SignalBar.Close,
		}

		return optional.None[types.Signal](), optional.Some(pending), nil
	}

	current := input.CurrentBar.Unwrap()

	signal, err := types.NewSignal(input.Stock, current.Open, current.Date, string(action), string(signalType))
	if err != nil {
		return optional.None[types.Signal](), optional.None[types.PendingSignal](), err
	}

	return optional.Some(signal), optional.None[types.PendingSignal](), nil
}
