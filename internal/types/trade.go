package types

import (
	"math"

	"github.com/rxtech-lab/argo-flipper/pkg/errors"
	"github.com/shopspring/decimal"
)

// MonetaryPrecision is the number of decimal places every monetary value is rounded to.
const MonetaryPrecision = 10

// FeeModel converts a notional cash amount into a transaction cost.
type FeeModel interface {
	Calculate(amount float64) float64
}

// RoundNumber rounds x to MonetaryPrecision decimal places.
// NaN and infinities are returned unchanged.
func RoundNumber(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	return decimal.NewFromFloat(x).Round(MonetaryPrecision).InexactFloat64()
}

// Trade is one completed round trip.
// Every derived value is computed from the current quantity and fee model on access.
type Trade struct {
	Entry Signal
	Exit  Signal
	Stock Stock
	// PriceData is the run of bars from the entry date to the exit date, when known
	PriceData []Bar

	quantity float64
	fee      FeeModel
}

// TradeRecord is the persisted shape of a Trade.
type TradeRecord struct {
	Entry    Signal  `yaml:"entry" json:"entry"`
	Exit     Signal  `yaml:"exit" json:"exit"`
	Stock    Stock   `yaml:"stock" json:"stock"`
	Quantity float64 `yaml:"quantity" json:"quantity"`
}

// NewTrade pairs an entry and an exit signal with a quantity of 1.
// The stock defaults to the entry signal's stock.
func NewTrade(entry Signal, exit Signal, stock Stock, priceData []Bar) (*Trade, error) {
	if !entry.IsEnter() {
		return nil, errors.Newf(errors.ErrCodeInvalidTrade, "entry signal has type %q", entry.Type)
	}

	if !exit.IsExit() {
		return nil, errors.Newf(errors.ErrCodeInvalidTrade, "exit signal has type %q", exit.Type)
	}

	if exit.Date.Before(entry.Date) {
		return nil, errors.Newf(errors.ErrCodeInvalidTrade, "exit date %s is before entry date %s",
			DateKey(exit.Date), DateKey(entry.Date))
	}

	if stock.ID == "" {
		stock = entry.Stock
	}

	return &Trade{
		Entry:     entry,
		Exit:      exit,
		Stock:     stock.Summary(),
		PriceData: priceData,
		quantity:  1,
		fee:       nil,
	}, nil
}

// NewTradeFromRecord rebuilds a trade from its persisted shape.
func NewTradeFromRecord(record TradeRecord) (*Trade, error) {
	trade, err := NewTrade(record.Entry, record.Exit, record.Stock, nil)
	if err != nil {
		return nil, err
	}

	return trade.SetQuantity(record.Quantity), nil
}

// Record returns the persisted shape of the trade.
func (t *Trade) Record() TradeRecord {
	return TradeRecord{
		Entry:    t.Entry,
		Exit:     t.Exit,
		Stock:    t.Stock,
		Quantity: t.quantity,
	}
}

// Quantity returns the number of shares.
func (t *Trade) Quantity() float64 {
	return t.quantity
}

// Fee returns the attached fee model, or nil.
func (t *Trade) Fee() FeeModel {
	return t.fee
}

// SetQuantity replaces the quantity. Negative values are clamped to 0.
func (t *Trade) SetQuantity(quantity float64) *Trade {
	t.quantity = math.Max(quantity, 0)

	return t
}

// SetFee attaches a fee model.
func (t *Trade) SetFee(fee FeeModel) *Trade {
	t.fee = fee

	return t
}

// CalculateQuantity returns how many whole shares maxSpend buys at the raw entry price.
func (t *Trade) CalculateQuantity(maxSpend float64) float64 {
	if maxSpend <= 0 || t.Entry.Price <= 0 {
		return 0
	}

	return math.Floor(maxSpend / t.Entry.Price)
}

// feePerShare spreads the fee on price*quantity over the shares.
func (t *Trade) feePerShare(price float64) float64 {
	if t.fee == nil || t.quantity <= 0 {
		return 0
	}

	return t.fee.Calculate(price*t.quantity) / t.quantity
}

// EntryPrice is the entry price widened by the per share fee.
func (t *Trade) EntryPrice() float64 {
	return t.Entry.Price + t.feePerShare(t.Entry.Price)
}

// ExitPrice is the exit price narrowed by the per share fee.
func (t *Trade) ExitPrice() float64 {
	return t.Exit.Price - t.feePerShare(t.Exit.Price)
}

func (t *Trade) ResultPerStock() float64 {
	return RoundNumber(t.ExitPrice() - t.EntryPrice())
}

func (t *Trade) ResultPercent() float64 {
	return t.ExitPrice()/t.EntryPrice() - 1
}

func (t *Trade) ResultInCash() float64 {
	return RoundNumber(t.quantity * t.ResultPerStock())
}

func (t *Trade) InitialValue() float64 {
	return RoundNumber(t.quantity * t.EntryPrice())
}

func (t *Trade) FinalValue() float64 {
	return RoundNumber(t.quantity * t.ExitPrice())
}

// TotalFees is the fee paid on both legs, or 0 without a fee model.
func (t *Trade) TotalFees() float64 {
	if t.fee == nil {
		return 0
	}

	return RoundNumber(t.fee.Calculate(t.Entry.Price*t.quantity) + t.fee.Calculate(t.Exit.Price*t.quantity))
}

// IsOpenOn reports whether the position is held at the end of day key.
// The position counts from its entry day up to, but not including, its exit day.
func (t *Trade) IsOpenOn(key string) bool {
	return key >= DateKey(t.Entry.Date) && key < DateKey(t.Exit.Date)
}
