package engine

import (
	"context"

	"github.com/rxtech-lab/argo-flipper/internal/datasource"
	"github.com/rxtech-lab/argo-flipper/internal/store"
	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the backtest begins, once the stock universe is known.
type OnBacktestStartCallback func(totalStocks int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStockStartCallback is called before the strategy replays a stock.
type OnStockStartCallback func(stockIndex int, stock types.Stock, totalStocks int) error

// OnStockEndCallback is called after the results of a stock are stored.
type OnStockEndCallback func(stockIndex int, stock types.Stock, numberOfTrades int)

// OnProcessDataCallback is called after each stock is processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnStockStart    *OnStockStartCallback
	OnStockEnd      *OnStockEndCallback
	OnProcessData   *OnProcessDataCallback
}

type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataSource sets the price data source stocks are read from.
	SetDataSource(dataSource datasource.PriceDataSource) error
	// SetStore sets the document store signals, trades, pending signals and contexts are written to.
	SetStore(store store.DocumentStore) error
	// SetResultsFolder sets the output directory for the run statistics.
	SetResultsFolder(folder string) error
	// Run replays every stock, simulates the portfolio over all trades and writes the statistics.
	// The context can be used to cancel the backtest operation.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
