package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-flipper/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-flipper/internal/backtest/portfolio"
	"github.com/rxtech-lab/argo-flipper/internal/backtest/strategy"
	"github.com/rxtech-lab/argo-flipper/internal/datasource"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/store"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// DefaultStorePath is where results are persisted when no store path is configured.
const DefaultStorePath = "flipper.db"

type StrategyConfig struct {
	Name               strategy.RuleName        `yaml:"name" json:"name" jsonschema:"title=Strategy,default=flipper" validate:"required"`
	Rules              types.Rules              `yaml:"rules" json:"rules" jsonschema:"title=Rules"`
	OpenPositionPolicy types.OpenPositionPolicy `yaml:"open_position_policy" json:"open_position_policy" jsonschema:"title=Open Position Policy,default=conservative" validate:"omitempty,oneof=conservative optimistic exclude"`
}

type StoreConfig struct {
	// Path is the DuckDB database file. ":memory:" keeps the results in memory.
	Path string `yaml:"path" json:"path" jsonschema:"title=Store Path,default=flipper.db"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn warning error"`
}

// Config is the configuration of a backtest run.
type Config struct {
	Portfolio  portfolio.Config         `yaml:"portfolio" json:"portfolio" jsonschema:"title=Portfolio"`
	Fee        commission_fee.FeeConfig `yaml:"fee" json:"fee" jsonschema:"title=Fee"`
	Strategy   StrategyConfig           `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy"`
	DataSource datasource.Config        `yaml:"datasource" json:"datasource" jsonschema:"title=Data Source"`
	Store      StoreConfig              `yaml:"store" json:"store" jsonschema:"title=Store"`
	Logging    LoggingConfig            `yaml:"logging" json:"logging" jsonschema:"title=Logging"`
	// Lists restricts the run to stocks of these lists. Empty runs every stock.
	Lists     []string                   `yaml:"lists" json:"lists" jsonschema:"title=Lists,description=Stock lists to include"`
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the replayed period"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the replayed period"`
}

func Default() Config {
	return Config{
		Portfolio: portfolio.DefaultConfig(),
		Fee:       commission_fee.DefaultFeeConfig(),
		Strategy: StrategyConfig{
			Name:               strategy.RuleFlipper,
			Rules:              types.DefaultRules(),
			OpenPositionPolicy: types.OpenPositionConservative,
		},
		DataSource: datasource.Config{
			Type:    datasource.TypeGraphQL,
			URL:     "http://localhost:4000/graphql",
			Timeout: datasource.DefaultRequestTimeout,
		},
		Store:     StoreConfig{Path: DefaultStorePath},
		Logging:   LoggingConfig{Level: "info"},
		Lists:     nil,
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}

// yamlConfig is the YAML form of Config. Absent time bounds decode to nil.
type yamlConfig struct {
	Portfolio  portfolio.Config         `yaml:"portfolio"`
	Fee        commission_fee.FeeConfig `yaml:"fee"`
	Strategy   StrategyConfig           `yaml:"strategy"`
	DataSource datasource.Config        `yaml:"datasource"`
	Store      StoreConfig              `yaml:"store"`
	Logging    LoggingConfig            `yaml:"logging"`
	Lists      []string                 `yaml:"lists"`
	StartTime  *time.Time               `yaml:"start_time,omitempty"`
	EndTime    *time.Time               `yaml:"end_time,omitempty"`
}

// UnmarshalYAML decodes the optional time bounds, keeping the values already set for absent keys.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := yamlConfig{
		Portfolio:  c.Portfolio,
		Fee:        c.Fee,
		Strategy:   c.Strategy,
		DataSource: c.DataSource,
		Store:      c.Store,
		Logging:    c.Logging,
		Lists:      c.Lists,
		StartTime:  nil,
		EndTime:    nil,
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Portfolio = raw.Portfolio
	c.Fee = raw.Fee
	c.Strategy = raw.Strategy
	c.DataSource = raw.DataSource
	c.Store = raw.Store
	c.Logging = raw.Logging
	c.Lists = raw.Lists

	if raw.StartTime != nil {
		c.StartTime = optional.Some(raw.StartTime.UTC())
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(raw.EndTime.UTC())
	}

	return nil
}

// MarshalYAML writes the time bounds only when they are set.
func (c Config) MarshalYAML() (any, error) {
	raw := yamlConfig{
		Portfolio:  c.Portfolio,
		Fee:        c.Fee,
		Strategy:   c.Strategy,
		DataSource: c.DataSource,
		Store:      c.Store,
		Logging:    c.Logging,
		Lists:      c.Lists,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		raw.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		raw.EndTime = &end
	}

	return raw, nil
}

// Parse decodes YAML content over the defaults and validates the result.
func Parse(content []byte) (Config, error) {
	config := Default()

	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(content)
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "end time %s is before start time %s",
			c.EndTime.Unwrap().Format(time.RFC3339), c.StartTime.Unwrap().Format(time.RFC3339))
	}

	return nil
}

// DataSourceConfig returns the data source section bounded by the run period.
func (c Config) DataSourceConfig() datasource.Config {
	source := c.DataSource
	source.Start = c.StartTime
	source.End = c.EndTime

	return source
}

func (c Config) FeeModel() commission_fee.CommissionFee {
	return commission_fee.GetCommissionFeeHandler(c.Fee.Broker, c.Fee)
}

// NewStrategy builds the configured rule and the replay driver around it.
func (c Config) NewStrategy(log *logger.Logger) (*strategy.Strategy, error) {
	rule, err := strategy.NewRule(c.Strategy.Name, c.Strategy.Rules)
	if err != nil {
		return nil, err
	}

	return strategy.NewStrategy(rule, c.Strategy.OpenPositionPolicy, log), nil
}

// StorePath returns the configured store path, or the default one.
func (c Config) StorePath() string {
	if c.Store.Path == "" {
		return DefaultStorePath
	}

	return c.Store.Path
}

// StoreQuery is the store filter for the configured lists.
func (c Config) StoreQuery() store.Query {
	return store.Query{Lists: c.Lists}
}
