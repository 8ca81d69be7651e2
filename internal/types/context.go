package types

type Bias string

const (
	BiasBull    Bias = "bull"
	BiasBear    Bias = "bear"
	BiasNeutral Bias = "neutral"
)

type Regime string

const (
	RegimeBull Regime = "bull"
	RegimeBear Regime = "bear"
)

// Context is the state a rule carries from one bar to the next.
// A zero HighPrice or LowPrice means the level has not been set yet.
type Context struct {
	Bias         Bias    `yaml:"bias" json:"bias"`
	HighPrice    float64 `yaml:"high_price" json:"highPrice"`
	LowPrice     float64 `yaml:"low_price" json:"lowPrice"`
	TriggerPrice float64 `yaml:"trigger_price" json:"triggerPrice"`
	Regime       Regime  `yaml:"regime" json:"regime"`
}

// Rules are the parameters of the Flipper rule.
type Rules struct {
	// EntryFactor is applied to the trailing low to get the entry trigger
	EntryFactor float64 `yaml:"entry_factor" json:"entry_factor" jsonschema:"title=Entry Factor,default=1.2" validate:"gt=0"`
	// ExitFactor is applied to the trailing high to get the exit trigger
	ExitFactor float64 `yaml:"exit_factor" json:"exit_factor" jsonschema:"title=Exit Factor,default=0.8333333333" validate:"gt=0"`
	// EntryInBearishRegime allows entries while the regime filter reports bear
	EntryInBearishRegime bool `yaml:"entry_in_bearish_regime" json:"entry_in_bearish_regime" jsonschema:"title=Entry In Bearish Regime,default=false"`
	// BearishRegimeExitFactor replaces ExitFactor while the regime filter reports bear
	BearishRegimeExitFactor float64 `yaml:"bearish_regime_exit_factor" json:"bearish_regime_exit_factor" jsonschema:"title=Bearish Regime Exit Factor,default=0.9166666667" validate:"gt=0"`
	// UseHighAndLow tracks the trailing levels from bar high/low instead of the close
	UseHighAndLow bool `yaml:"use_high_and_low" json:"use_high_and_low" jsonschema:"title=Use High And Low,default=false"`
}

// DefaultRules returns the classic Flipper parameters.
func DefaultRules() Rules {
	return Rules{
		EntryFactor:             6.0 / 5.0,
		ExitFactor:              5.0 / 6.0,
		EntryInBearishRegime:    false,
		BearishRegimeExitFactor: 11.0 / 12.0,
		UseHighAndLow:           false,
	}
}

// OpenPositionPolicy decides how a position still open at the end of a series is closed.
type OpenPositionPolicy string

const (
	// OpenPositionConservative closes at the current trigger price
	OpenPositionConservative OpenPositionPolicy = "conservative"
	// OpenPositionOptimistic closes at the last close
	OpenPositionOptimistic OpenPositionPolicy = "optimistic"
	// OpenPositionExclude closes at the trigger price and drops the resulting trade
	OpenPositionExclude OpenPositionPolicy = "exclude"
)

// SelectionMethod ranks competing entry candidates when portfolio slots are scarce.
type SelectionMethod string

const (
	SelectionRandom SelectionMethod = "random"
	// SelectionBest and SelectionWorst look at the trade outcome and only make sense in tests.
	SelectionBest  SelectionMethod = "best"
	SelectionWorst SelectionMethod = "worst"
	SelectionNone  SelectionMethod = "none"
)
