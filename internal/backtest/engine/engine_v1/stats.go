package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rxtech-lab/argo-flipper/internal/backtest/analyzer"
	"github.com/rxtech-lab/argo-flipper/internal/backtest/portfolio"
	"github.com/rxtech-lab/argo-flipper/internal/config"
	"github.com/rxtech-lab/argo-flipper/internal/datasource"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// StatsFileName is the file the run statistics are written to inside the results folder.
const StatsFileName = "stats.yaml"

// RunPortfolio simulates the configured portfolio over trades and analyzes the cash
// result of every trade it took. dataSource may be nil, see portfolio.NewPortfolio.
func RunPortfolio(ctx context.Context, cfg config.Config, trades []*types.Trade, dataSource datasource.PriceDataSource, log *logger.Logger) (types.RunStats, portfolio.Result, error) {
	simulator := portfolio.NewPortfolio(cfg.Portfolio, dataSource, log)

	result, err := simulator.Backtest(ctx, trades, cfg.FeeModel())
	if err != nil {
		return types.RunStats{}, portfolio.Result{}, err
	}

	analysis, err := analyzer.Analyze(result.ResultsInCash())
	if err != nil {
		return types.RunStats{}, portfolio.Result{}, err
	}

	stats := types.RunStats{
		ID:              uuid.New().String(),
		Timestamp:       time.Now().UTC(),
		Lists:           cfg.Lists,
		SelectionMethod: simulator.SelectionMethod,
		StartCapital:    cfg.Portfolio.StartCapital,
		CashAvailable:   result.CashAvailable,
		FinalEquity:     result.FinalEquity(),
		NumberOfStocks:  countStocks(result.HistoricalTrades),
		NumberOfTrades:  len(result.HistoricalTrades),
		SignalsNotTaken: result.SignalsNotTaken,
		TotalFees:       result.TotalFees(),
		Analysis:        analysis.Report(),
		Warnings:        result.Warnings,
		StorePath:       cfg.StorePath(),
	}

	return stats, result, nil
}

func countStocks(trades []*types.Trade) int {
	ids := map[string]struct{}{}
	for _, trade := range trades {
		ids[trade.Stock.ID] = struct{}{}
	}

	return len(ids)
}
