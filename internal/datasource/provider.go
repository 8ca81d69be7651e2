package datasource

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata/provider"
)

// ProviderDataSource serves a fixed ticker universe straight from a market data provider.
type ProviderDataSource struct {
	provider provider.Provider
	tickers  []string
	list     string
	start    time.Time
	end      time.Time
	logger   *logger.Logger
}

// NewProviderDataSource creates a data source over tickers. Every stock is reported as part of list.
func NewProviderDataSource(marketProvider provider.Provider, tickers []string, list string, start time.Time, end time.Time, log *logger.Logger) *ProviderDataSource {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &ProviderDataSource{
		provider: marketProvider,
		tickers:  slices.Clone(tickers),
		list:     list,
		start:    start,
		end:      end,
		logger:   log,
	}
}

func (p *ProviderDataSource) FetchStock(ctx context.Context, id string, fields []string) (types.Stock, error) {
	if !slices.Contains(p.tickers, id) {
		return types.Stock{}, errors.Newf(errors.ErrCodeDataNotFound, "stock %s not found", id)
	}

	stock := p.summary(id)
	if !wantsPriceData(fields) {
		return stock, nil
	}

	bars, err := p.provider.FetchBars(ctx, id, p.start, p.end)
	if err != nil {
		return types.Stock{}, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to fetch bars for %s", id)
	}

	p.logger.Debug("Fetched stock from provider",
		zap.String("id", id),
		zap.Int("bars", len(bars)),
	)

	stock.PriceData = bars

	return stock, nil
}

func (p *ProviderDataSource) FetchStocks(_ context.Context, _ []string) ([]types.Stock, error) {
	stocks := make([]types.Stock, len(p.tickers))
	for i, ticker := range p.tickers {
		stocks[i] = p.summary(ticker)
	}

	return stocks, nil
}

func (p *ProviderDataSource) Close() error {
	return nil
}

func (p *ProviderDataSource) summary(ticker string) types.Stock {
	return types.Stock{
		ID:   ticker,
		Name: ticker,
		List: p.list,
	}
}
