package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/backtest/analyzer"
	"github.com/rxtech-lab/argo-flipper/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-flipper/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-flipper/internal/config"
	"github.com/rxtech-lab/argo-flipper/internal/datasource"
	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/store"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata/provider"
)

// TimelineFileName is the file the equity curve of a portfolio run is written to.
const TimelineFileName = "timeline.yaml"

// session holds what a command needs once the configuration is resolved.
type session struct {
	config     config.Config
	log        *logger.Logger
	dataSource datasource.PriceDataSource
	store      store.DocumentStore
}

func (s *session) Close() {
	if s.dataSource != nil {
		if err := s.dataSource.Close(); err != nil {
			s.log.Warn("Failed to close data source", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("Failed to close store", zap.Error(err))
		}
	}

	_ = s.log.Sync()
}

// openSession resolves the configuration and opens the data source and, when withStore is set, the store.
func openSession(cmd *cli.Command, withDataSource bool, withStore bool) (*session, error) {
	cfg, err := resolveConfig(optionsFromCommand(cmd.Root()))
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{config: cfg, log: log}

	if withDataSource {
		s.dataSource, err = datasource.NewDataSource(cfg.DataSourceConfig(), log)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	if withStore {
		s.store, err = store.NewDuckDBStore(cfg.StorePath(), log)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

func stockAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd, true, false)
	if err != nil {
		return err
	}
	defer s.Close()

	stock, err := s.dataSource.FetchStock(ctx, cmd.String("id"), types.DefaultStockFields)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s) %s\n", stock.Name, stock.ID, stock.List)
	fmt.Printf("bars: %d\n", len(stock.PriceData))

	if len(stock.PriceData) > 0 {
		first := stock.PriceData[0]
		last := stock.PriceData[len(stock.PriceData)-1]
		fmt.Printf("first: %s close %.2f\n", types.DateKey(first.Date), first.Close)
		fmt.Printf("last:  %s close %.2f\n", types.DateKey(last.Date), last.Close)
	}

	return nil
}

func stocksAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd, true, false)
	if err != nil {
		return err
	}
	defer s.Close()

	stocks, err := s.dataSource.FetchStocks(ctx, datasource.SummaryFields)
	if err != nil {
		return err
	}

	listed := make([]types.Stock, 0, len(stocks))
	for _, stock := range stocks {
		if stock.InLists(s.config.Lists) {
			listed = append(listed, stock)
		}
	}

	return printStocks(os.Stdout, listed)
}

func testAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd, true, false)
	if err != nil {
		return err
	}
	defer s.Close()

	stock, err := s.dataSource.FetchStock(ctx, cmd.String("id"), types.DefaultStockFields)
	if err != nil {
		return err
	}

	flipper, err := s.config.NewStrategy(s.log)
	if err != nil {
		return err
	}

	result, err := flipper.TestRange(stock, s.config.StartTime, s.config.EndTime)
	if err != nil {
		return err
	}

	fmt.Printf("Signals for %s (%s)\n", stock.Name, stock.ID)
	if err := printSignals(os.Stdout, result.Signals); err != nil {
		return err
	}

	if result.PendingSignal.IsSome() {
		fmt.Println()
		fmt.Println("Pending")

		if err := printPendingSignals(os.Stdout, []types.PendingSignal{result.PendingSignal.Unwrap()}); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println("Trades")

	if err := printTrades(os.Stdout, result.Trades); err != nil {
		return err
	}

	percents := make([]float64, 0, len(result.Trades))
	for _, trade := range result.Trades {
		percents = append(percents, trade.ResultPercent())
	}

	analysis, err := analyzer.Analyze(percents)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Analysis (result percent)")

	return printAnalysis(os.Stdout, analysis.Report())
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd, true, true)
	if err != nil {
		return err
	}
	defer s.Close()

	backtester, ok := enginev1.NewBacktestEngineV1().(*enginev1.BacktestEngineV1)
	if !ok {
		return fmt.Errorf("unexpected backtest engine type")
	}

	if err := backtester.InitializeWithConfig(s.config); err != nil {
		return err
	}

	backtester.SetLogger(s.log)

	if err := backtester.SetDataSource(s.dataSource); err != nil {
		return err
	}

	if err := backtester.SetStore(s.store); err != nil {
		return err
	}

	if err := backtester.SetResultsFolder(cmd.String("results")); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(totalStocks int) error {
		bar = progressbar.NewOptions(totalStocks,
			progressbar.OptionSetDescription("Testing stocks"),
			progressbar.OptionShowCount(),
		)

		return nil
	})

	onProcess := engine.OnProcessDataCallback(func(current int, total int) error {
		if bar == nil {
			return nil
		}

		return bar.Set(current)
	})

	onEnd := engine.OnBacktestEndCallback(func(err error) {
		if bar != nil {
			_ = bar.Finish()
			fmt.Println()
		}
	})

	err = backtester.Run(ctx, engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnProcessData:   &onProcess,
		OnBacktestEnd:   &onEnd,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Results written to %s\n", filepath.Join(cmd.String("results"), enginev1.StatsFileName))

	return nil
}

func signalsAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd, false, true)
	if err != nil {
		return err
	}
	defer s.Close()

	query := s.config.StoreQuery()
	query.Descending = true
	query.Limit = int(cmd.Int("limit"))

	signals, err := store.FindSignals(ctx, s.store, query)
	if err != nil {
		return err
	}

	pending, err := store.FindPendingSignals(ctx, s.store, query)
	if err != nil {
		return err
	}

	fmt.Println("Latest signals")

	if err := printSignals(os.Stdout, signals); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Pending")

	return printPendingSignals(os.Stdout, pending)
}

func portfolioAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(cmd, true, true)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.config

	if selection := cmd.String("selection"); selection != "" {
		cfg.Portfolio.SelectionMethod = types.SelectionMethod(selection)
	}

	if capital := cmd.Float("capital"); capital > 0 {
		cfg.Portfolio.StartCapital = capital
	}

	if maxStocks := int(cmd.Int("max-stocks")); maxStocks > 0 {
		cfg.Portfolio.MaxNumberOfStocks = maxStocks
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	trades, err := store.FindTrades(ctx, s.store, cfg.StoreQuery())
	if err != nil {
		return err
	}

	stats, result, err := enginev1.RunPortfolio(ctx, cfg, trades, s.dataSource, s.log)
	if err != nil {
		return err
	}

	folder := cmd.String("results")
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("failed to create results folder: %w", err)
	}

	if err := types.WriteRunStats(filepath.Join(folder, enginev1.StatsFileName), []types.RunStats{stats}); err != nil {
		return err
	}

	if err := writeYAML(filepath.Join(folder, TimelineFileName), result.EquitySeries()); err != nil {
		return err
	}

	return printRunStats(os.Stdout, stats)
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(optionsFromCommand(cmd.Root()))
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onProgress := func(current float64, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetDescription("Downloading"),
				progressbar.OptionShowCount(),
			)
		}

		bar.Describe(message)
		_ = bar.Set(int(current))
	}

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(cmd.String("provider")),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      cmd.String("data"),
		PolygonApiKey: cfg.DataSource.APIKey,
	}, onProgress)
	if err != nil {
		return err
	}

	list := ""
	if len(cfg.Lists) > 0 {
		list = cfg.Lists[0]
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Tickers:   cmd.StringSlice("ticker"),
		List:      list,
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
	})
	if err != nil {
		return err
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	fmt.Printf("Data written to %s\n", path)

	return nil
}
