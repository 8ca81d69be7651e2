package types

// TimelineEntry is one day of a portfolio equity timeline.
type TimelineEntry struct {
	CashAvailable         float64 `yaml:"cash_available" json:"cashAvailable"`
	TotalPositionValue    float64 `yaml:"total_position_value" json:"totalPositionValue"`
	NumberOfPositionsOpen int     `yaml:"number_of_positions_open" json:"numberOfPositionsOpen"`
	Total                 float64 `yaml:"total" json:"total"`
}

// EquityPoint is one point of the equity series handed to charts.
type EquityPoint struct {
	Time  string  `yaml:"time" json:"time"`
	Value float64 `yaml:"value" json:"value"`
}
