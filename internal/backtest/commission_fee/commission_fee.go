package commission_fee

import "github.com/rxtech-lab/argo-flipper/internal/types"

type CommissionFee interface {
	// Calculate the commission fee for a notional cash amount and returns the fee in the same currency
	Calculate(amount float64) float64
}

var _ types.FeeModel = CommissionFee(nil)

type Broker string

const (
	BrokerPercentage Broker = "percentage"
	BrokerZero       Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerPercentage,
	BrokerZero,
}

// FeeConfig selects and parameterizes a commission model.
type FeeConfig struct {
	Broker Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,default=percentage" validate:"omitempty,oneof=percentage zero_commission"`
	// Minimum is the smallest fee charged on a non-empty transaction
	Minimum float64 `yaml:"minimum" json:"minimum" jsonschema:"title=Minimum Fee,default=69" validate:"gte=0"`
	// Percentage is the share of the notional amount charged, 0.00069 means 0.069%
	Percentage float64 `yaml:"percentage" json:"percentage" jsonschema:"title=Fee Percentage,default=0.00069" validate:"gte=0,lt=1"`
}

// DefaultFeeConfig returns the brokerage terms used for the Stockholm lists.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		Broker:     BrokerPercentage,
		Minimum:    69,
		Percentage: 0.00069,
	}
}

func GetCommissionFeeHandler(broker Broker, config FeeConfig) CommissionFee {
	switch broker {
	case BrokerPercentage:
		return NewPercentageCommissionFee(config.Minimum, config.Percentage)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
