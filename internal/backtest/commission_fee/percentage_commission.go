package commission_fee

import "math"

// PercentageCommissionFee charges a share of the notional amount with a floor.
type PercentageCommissionFee struct {
	Minimum    float64
	Percentage float64
}

func NewPercentageCommissionFee(minimum float64, percentage float64) CommissionFee {
	return &PercentageCommissionFee{
		Minimum:    minimum,
		Percentage: percentage,
	}
}

// Calculate returns max(Minimum, amount*Percentage), or 0 when there is nothing to trade.
func (c *PercentageCommissionFee) Calculate(amount float64) float64 {
	if amount <= 0 {
		return 0
	}

	return math.Max(c.Minimum, amount*c.Percentage)
}
