package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata/writer"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType            `validate:"required,oneof=duckdb"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
}

// DownloadParams describes one download of a ticker universe into a single Parquet file.
type DownloadParams struct {
	Tickers   []string  `validate:"required,min=1,dive,required"`
	List      string    `validate:"omitempty"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// Client downloads daily bars from a provider and stores them using a writer.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonApiKey)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// NewClientWithProvider creates a client around an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	return &Client{
		provider:   marketProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// Download fetches every ticker and writes all bars to one Parquet file.
// It returns the path of the written file.
func (c *Client) Download(ctx context.Context, params DownloadParams) (path string, err error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	total := float64(len(params.Tickers))

	for i, ticker := range params.Tickers {
		bars, err := c.provider.FetchBars(ctx, ticker, params.StartDate, params.EndDate)
		if err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "download failed for %s", ticker)
		}

		stock := types.Stock{ID: ticker, Name: ticker, List: params.List}
		for _, bar := range bars {
			if err := marketWriter.Write(stock, bar); err != nil {
				return "", err
			}
		}

		if c.onProgress != nil {
			c.onProgress(float64(i+1), total, fmt.Sprintf("Downloaded %d bars for %s", len(bars), ticker))
		}
	}

	return marketWriter.Finalize()
}

// setupWriter initializes the appropriate market data writer based on configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data path %s", c.config.DataPath)
		}

		outputPath := filepath.Join(c.config.DataPath, OutputFileName(params))

		duckdbWriter := writer.NewDuckDBWriter(outputPath)
		if err := duckdbWriter.Initialize(); err != nil {
			return nil, err
		}

		return duckdbWriter, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}

// OutputFileName builds LIST_START_END.parquet, using "stocks" when no list is given.
func OutputFileName(params DownloadParams) string {
	list := strings.TrimSpace(params.List)
	if list == "" {
		list = "stocks"
	}

	list = strings.ToLower(strings.Join(strings.Fields(list), "_"))

	return fmt.Sprintf("%s_%s_%s.parquet",
		list,
		params.StartDate.Format(types.DateKeyLayout),
		params.EndDate.Format(types.DateKeyLayout))
}
