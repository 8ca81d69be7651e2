package types

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type SignalAction string

const (
	// SignalActionBuy opens or adds to a long position
	SignalActionBuy SignalAction = "buy"
	// SignalActionSell closes a long position
	SignalActionSell SignalAction = "sell"
)

type SignalType string

const (
	// SignalTypeEnter marks the first leg of a round trip
	SignalTypeEnter SignalType = "enter"
	// SignalTypeExit marks the closing leg of a round trip
	SignalTypeExit SignalType = "exit"
)

// Signal is a validated market event. Build it with NewSignal.
type Signal struct {
	// Stock is the summary of the stock the signal was generated for
	Stock Stock `yaml:"stock" json:"stock"`
	// Price is the execution price, always the open of the bar after the trigger
	Price float64 `yaml:"price" json:"price" validate:"required,gt=0"`
	// Date is the execution date
	Date   time.Time    `yaml:"date" json:"date" validate:"required"`
	Action SignalAction `yaml:"action" json:"action" validate:"required,oneof=buy sell"`
	Type   SignalType   `yaml:"type" json:"type" validate:"required,oneof=enter exit"`
}

// NewSignal normalizes action and type to lower case and validates every field.
func NewSignal(stock Stock, price float64, date time.Time, action string, signalType string) (Signal, error) {
	signal := Signal{
		Stock:  stock.Summary(),
		Price:  price,
		Date:   date,
		Action: SignalAction(strings.ToLower(strings.TrimSpace(action))),
		Type:   SignalType(strings.ToLower(strings.TrimSpace(signalType))),
	}

	if err := signal.Validate(); err != nil {
		return Signal{}, err
	}

	return signal, nil
}

// Validate validates the Signal struct.
func (s Signal) Validate() error {
	if math.IsInf(s.Price, 0) || math.IsNaN(s.Price) {
		return errors.Newf(errors.ErrCodeInvalidSignal, "invalid signal: price %v is not a finite number", s.Price)
	}

	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid signal", err)
	}

	return nil
}

// IsEnter reports whether the signal opens a round trip.
func (s Signal) IsEnter() bool {
	return s.Type == SignalTypeEnter
}

// IsExit reports whether the signal closes a round trip.
func (s Signal) IsExit() bool {
	return s.Type == SignalTypeExit
}

// PendingSignal is a trigger detected on the last observed bar.
// The bar it would execute on has not been observed, so there is no price or date to build a Signal from.
type PendingSignal struct {
	Stock  Stock        `yaml:"stock" json:"stock"`
	Action SignalAction `yaml:"action" json:"action"`
	Type   SignalType   `yaml:"type" json:"type"`
	// SignalDate is the date of the bar that fired the trigger
	SignalDate time.Time `yaml:"signal_date" json:"signalDate"`
	// ReferencePrice is the close of the bar that fired the trigger
	ReferencePrice float64 `yaml:"reference_price" json:"referencePrice"`
}
