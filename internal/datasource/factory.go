package datasource

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata/provider"
)

// Type selects the price data backend.
type Type string

const (
	TypeGraphQL Type = "graphql"
	TypeDuckDB  Type = "duckdb"
	TypePolygon Type = "polygon"
	TypeBinance Type = "binance"
)

// DefaultHistoryYears is how far back provider backed sources fetch when no start date is set.
const DefaultHistoryYears = 5

// Config describes where price data comes from.
type Config struct {
	Type         Type          `yaml:"type" json:"type" jsonschema:"title=Type,description=Price data backend,enum=graphql,enum=duckdb,enum=polygon,enum=binance,default=graphql" validate:"required,oneof=graphql duckdb polygon binance"`
	URL          string        `yaml:"url,omitempty" json:"url,omitempty" jsonschema:"title=URL,description=GraphQL endpoint of the price API" validate:"required_if=Type graphql"`
	Path         string        `yaml:"path,omitempty" json:"path,omitempty" jsonschema:"title=Path,description=Parquet file written by the download command" validate:"required_if=Type duckdb"`
	APIKey       string        `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=Polygon API key" validate:"required_if=Type polygon"`
	Tickers      []string      `yaml:"tickers,omitempty" json:"tickers,omitempty" jsonschema:"title=Tickers,description=Ticker universe of the polygon and binance backends" validate:"omitempty,dive,required"`
	List         string        `yaml:"list,omitempty" json:"list,omitempty" jsonschema:"title=List,description=List name reported for provider tickers"`
	Timeout      time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,description=GraphQL request timeout"`
	DisableCache bool          `yaml:"disable_cache,omitempty" json:"disable_cache,omitempty" jsonschema:"title=Disable Cache,description=Fetch every request from the backend"`

	// Start and End bound the price history of the duckdb and provider backends.
	Start optional.Option[time.Time] `yaml:"-" json:"-"`
	End   optional.Option[time.Time] `yaml:"-" json:"-"`
}

// NewDataSource creates the configured data source, wrapped in a cache unless disabled.
func NewDataSource(config Config, log *logger.Logger) (PriceDataSource, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid data source configuration", err)
	}

	source, err := newBackend(config, log)
	if err != nil {
		return nil, err
	}

	if config.DisableCache {
		return source, nil
	}

	return NewCachedDataSource(source), nil
}

func newBackend(config Config, log *logger.Logger) (PriceDataSource, error) {
	switch config.Type {
	case TypeGraphQL:
		return NewGraphQLDataSource(config.URL, config.Timeout, log), nil
	case TypeDuckDB:
		return NewDuckDBDataSource(config.Path, config.Start, config.End, log)
	case TypePolygon, TypeBinance:
		if len(config.Tickers) == 0 {
			return nil, errors.Newf(errors.ErrCodeMissingParameter, "%s data source needs at least one ticker", config.Type)
		}

		marketProvider, err := provider.NewMarketDataProvider(provider.ProviderType(config.Type), config.APIKey)
		if err != nil {
			return nil, err
		}

		end := config.End.TakeOr(time.Now().UTC())
		start := config.Start.TakeOr(end.AddDate(-DefaultHistoryYears, 0, 0))

		return NewProviderDataSource(marketProvider, config.Tickers, config.List, start, end, log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported data source type: %s", config.Type)
	}
}
