package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/internal/version"
	"github.com/rxtech-lab/argo-flipper/pkg/marketdata/provider"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML backtest configuration",
	},
	&cli.StringFlag{
		Name:  "env-file",
		Usage: "Path to a .env file with PRICE_API_URL, POLYGON_API_KEY, FLIPPER_STORE_PATH or FLIPPER_LOG_LEVEL",
		Value: ".env",
	},
	&cli.StringFlag{
		Name:  "store",
		Usage: "Path to the DuckDB results store, overrides the configuration",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error), overrides the configuration",
	},
	&cli.StringSliceFlag{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "Restrict to stocks of this list, can be repeated",
	},
}

func main() {
	cmd := &cli.Command{
		Name:    "flipper",
		Usage:   "Backtest the Flipper trend strategy on daily stock data",
		Version: version.GetVersion(),
		Flags:   globalFlags,
		Commands: []*cli.Command{
			{
				Name:   "stock",
				Usage:  "Fetch one stock and print a summary of its price history",
				Flags:  []cli.Flag{idFlag()},
				Action: stockAction,
			},
			{
				Name:   "stocks",
				Usage:  "List the stocks of the data source",
				Action: stocksAction,
			},
			{
				Name:   "test",
				Usage:  "Run the strategy on one stock and print its signals and trades",
				Flags:  []cli.Flag{idFlag()},
				Action: testAction,
			},
			{
				Name:  "test-all",
				Usage: "Run the strategy on every stock, store the results and simulate the portfolio",
				Flags: []cli.Flag{
					resultsFlag(),
				},
				Action: backtestAction,
			},
			{
				Name:  "signals",
				Usage: "Print the latest stored signals and the pending signals",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of signals to print",
						Value: 100,
					},
				},
				Action: signalsAction,
			},
			{
				Name:  "portfolio",
				Usage: "Simulate the portfolio over the stored trades",
				Flags: []cli.Flag{
					resultsFlag(),
					&cli.StringFlag{
						Name:  "selection",
						Usage: fmt.Sprintf("Selection method (%s, %s, %s, %s)", types.SelectionRandom, types.SelectionBest, types.SelectionWorst, types.SelectionNone),
					},
					&cli.FloatFlag{
						Name:  "capital",
						Usage: "Start capital, overrides the configuration",
					},
					&cli.IntFlag{
						Name:  "max-stocks",
						Usage: "Maximum number of open positions, overrides the configuration",
					},
				},
				Action: portfolioAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration",
				Action: schemaAction,
			},
			{
				Name:  "backtest",
				Usage: "Run the full backtest described by --config",
				Flags: []cli.Flag{
					resultsFlag(),
				},
				Action: backtestAction,
			},
			{
				Name:  "download",
				Usage: "Download daily bars into a Parquet file readable by the duckdb data source",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "ticker",
						Aliases:  []string{"t"},
						Usage:    "Ticker symbol, can be repeated",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "Start date in `YYYY-MM-DD` format",
						Config: cli.TimestampConfig{
							Layouts: []string{types.DateKeyLayout},
						},
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
						Value:   time.Now(),
						Config: cli.TimestampConfig{
							Layouts: []string{types.DateKeyLayout},
						},
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.ProviderPolygon, provider.ProviderBinance),
						Value:   string(provider.ProviderPolygon),
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the data output directory",
						Value:   "data",
					},
				},
				Action: downloadAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func idFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "Stock id",
		Required: true,
	}
}

func resultsFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "results",
		Aliases: []string{"r"},
		Usage:   "Folder the run statistics are written to",
		Value:   "results",
	}
}
