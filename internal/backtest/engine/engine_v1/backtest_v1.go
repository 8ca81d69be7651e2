package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/backtest/engine"
	"github.com/rxtech-lab/argo-flipper/internal/backtest/strategy"
	"github.com/rxtech-lab/argo-flipper/internal/config"
	"github.com/rxtech-lab/argo-flipper/internal/datasource"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/store"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type BacktestEngineV1 struct {
	config        config.Config
	resultsFolder string
	log           *logger.Logger
	strategy      *strategy.Strategy
	datasource    datasource.PriceDataSource
	store         store.DocumentStore
	initialized   bool
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:        config.Default(),
		resultsFolder: "",
		log:           logger.NewNopLogger(),
		strategy:      nil,
		datasource:    nil,
		store:         nil,
		initialized:   false,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(content string) error {
	cfg, err := config.Parse([]byte(content))
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to parse backtest config", err)
	}

	return b.InitializeWithConfig(cfg)
}

// InitializeWithConfig initializes the engine from an already parsed configuration.
func (b *BacktestEngineV1) InitializeWithConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "invalid backtest config", err)
	}

	b.config = cfg

	log, err := logger.NewLoggerWithLevel(cfg.Logging.Level)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
	}

	b.log = log

	b.strategy, err = cfg.NewStrategy(b.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create strategy", err)
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.String("strategy", b.strategy.Rule().Name()),
		zap.Strings("lists", cfg.Lists),
	)

	return nil
}

// SetLogger replaces the logger created by Initialize.
func (b *BacktestEngineV1) SetLogger(log *logger.Logger) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	b.log = log
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.PriceDataSource) error {
	b.datasource = dataSource

	return nil
}

// SetStore implements engine.Engine.
func (b *BacktestEngineV1) SetStore(documentStore store.DocumentStore) error {
	b.store = documentStore

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if err := b.preRunCheck(); err != nil {
		return err
	}

	if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return fmt.Errorf("failed to create results folder: %w", err)
	}

	stocks, err := b.universe(ctx)
	if err != nil {
		return err
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(stocks)); err != nil {
			return err
		}
	}

	trades := []*types.Trade{}

	for i, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if callbacks.OnStockStart != nil {
			if err := (*callbacks.OnStockStart)(i, stock, len(stocks)); err != nil {
				return err
			}
		}

		stockTrades, err := b.processStock(ctx, stock)
		if err != nil {
			return err
		}

		trades = append(trades, stockTrades...)

		if callbacks.OnStockEnd != nil {
			(*callbacks.OnStockEnd)(i, stock, len(stockTrades))
		}

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(stocks)); err != nil {
				return err
			}
		}
	}

	stats, _, err := RunPortfolio(ctx, b.config, trades, b.datasource, b.log)
	if err != nil {
		return err
	}

	stats.NumberOfStocks = len(stocks)
	stats.StorePath = b.config.StorePath()

	if err := b.writeResults(stats); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	return nil
}

// universe returns the stock summaries of the configured lists.
func (b *BacktestEngineV1) universe(ctx context.Context) ([]types.Stock, error) {
	summaries, err := b.datasource.FetchStocks(ctx, datasource.SummaryFields)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stocks: %w", err)
	}

	stocks := make([]types.Stock, 0, len(summaries))

	for _, stock := range summaries {
		if stock.InLists(b.config.Lists) {
			stocks = append(stocks, stock.Summary())
		}
	}

	b.log.Info("Stock universe loaded",
		zap.Int("total", len(summaries)),
		zap.Int("selected", len(stocks)),
	)

	return stocks, nil
}

// processStock replays one stock and stores its signals, trades, pending signal and context.
// A stock whose price history cannot be fetched is skipped.
func (b *BacktestEngineV1) processStock(ctx context.Context, summary types.Stock) ([]*types.Trade, error) {
	stock, err := b.datasource.FetchStock(ctx, summary.ID, types.DefaultStockFields)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		b.log.Warn("Skipping stock without price data",
			zap.String("stock", summary.ID),
			zap.Error(err),
		)

		return nil, nil
	}

	result, err := b.strategy.TestRange(stock, b.config.StartTime, b.config.EndTime)
	if err != nil {
		if errors.IsStrategyDefect(err) {
			return nil, fmt.Errorf("failed to test stock %s: %w", summary.ID, err)
		}

		b.log.Warn("Skipping stock with invalid price data",
			zap.String("stock", summary.ID),
			zap.Error(err),
		)

		return nil, nil
	}

	if err := b.persist(ctx, stock, result); err != nil {
		return nil, err
	}

	b.log.Debug("Stock processed",
		zap.String("stock", stock.ID),
		zap.Int("signals", len(result.Signals)),
		zap.Int("trades", len(result.Trades)),
	)

	return result.Trades, nil
}

func (b *BacktestEngineV1) persist(ctx context.Context, stock types.Stock, result strategy.Result) error {
	if err := store.AppendSignals(ctx, b.store, result.Signals); err != nil {
		return err
	}

	if err := store.AppendTrades(ctx, b.store, result.Trades); err != nil {
		return err
	}

	if result.PendingSignal.IsSome() {
		if err := store.AppendPendingSignal(ctx, b.store, result.PendingSignal.Unwrap()); err != nil {
			return err
		}
	}

	series := strategy.ExtractData(stock.PriceData, b.config.StartTime, b.config.EndTime)
	if len(series) == 0 {
		return nil
	}

	return store.AppendContext(ctx, b.store, stock, series[len(series)-1].Date, result.Context)
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	cfg := b.config

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	return schema, nil
}

func (b *BacktestEngineV1) writeResults(stats types.RunStats) error {
	if err := types.WriteRunStats(filepath.Join(b.resultsFolder, StatsFileName), []types.RunStats{stats}); err != nil {
		return err
	}

	b.log.Info("Backtest finished",
		zap.String("run", stats.ID),
		zap.Float64("final_equity", stats.FinalEquity),
		zap.Int("trades", stats.NumberOfTrades),
		zap.Int("signals_not_taken", stats.SignalsNotTaken),
	)

	return nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		b.log.Error("Engine not initialized")

		return errors.New(errors.ErrCodeBacktestInitFailed, "engine not initialized")
	}

	if b.datasource == nil {
		b.log.Error("No datasource set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no datasource set")
	}

	if b.store == nil {
		b.log.Error("No store set")

		return errors.New(errors.ErrCodeBacktestNoStore, "no store set")
	}

	if b.resultsFolder == "" {
		b.log.Error("No results folder set")

		return errors.New(errors.ErrCodeBacktestInitFailed, "no results folder set")
	}

	return nil
}
