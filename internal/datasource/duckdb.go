package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// DuckDBDataSource reads stocks from a Parquet file written by the market data client.
// The file has one row per stock and day with the columns time, symbol, name, list, open, high, low, close and volume.
type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	start  optional.Option[time.Time]
	end    optional.Option[time.Time]
}

// NewDuckDBDataSource opens an in-memory database with a view over the Parquet file at path.
// start and end restrict the loaded price history.
func NewDuckDBDataSource(path string, start optional.Option[time.Time], end optional.Option[time.Time], log *logger.Logger) (*DuckDBDataSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	log.Debug("Initializing DuckDB data source", zap.String("path", path))

	// squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_parquet('%s');
	`, strings.ReplaceAll(path, "'", "''"))

	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read parquet file %s", path)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		start:  start,
		end:    end,
	}, nil
}

func (d *DuckDBDataSource) FetchStock(ctx context.Context, id string, fields []string) (types.Stock, error) {
	stock, err := d.summary(ctx, id)
	if err != nil {
		return types.Stock{}, err
	}

	if !wantsPriceData(fields) {
		return stock, nil
	}

	conditions := squirrel.And{squirrel.Eq{"symbol": id}}

	if d.start.IsSome() {
		conditions = append(conditions, squirrel.GtOrEq{"time": d.start.Unwrap()})
	}

	if d.end.IsSome() {
		conditions = append(conditions, squirrel.LtOrEq{"time": d.end.Unwrap()})
	}

	query, args, err := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(conditions).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return types.Stock{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build price query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.Stock{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query price data for %s", id)
	}
	defer rows.Close()

	stock.PriceData = []types.Bar{}

	for rows.Next() {
		var bar types.Bar

		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return types.Stock{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to scan price data for %s", id)
		}

		bar.Date = bar.Date.UTC()
		stock.PriceData = append(stock.PriceData, bar)
	}

	if err := rows.Err(); err != nil {
		return types.Stock{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read price data for %s", id)
	}

	d.logger.Debug("Fetched stock",
		zap.String("id", id),
		zap.Int("bars", len(stock.PriceData)),
	)

	return stock, nil
}

func (d *DuckDBDataSource) FetchStocks(ctx context.Context, _ []string) ([]types.Stock, error) {
	query, args, err := d.sq.
		Select("symbol", "min(name)", "min(list)").
		From("market_data").
		GroupBy("symbol").
		OrderBy("symbol ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build stocks query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query stocks", err)
	}
	defer rows.Close()

	stocks := []types.Stock{}

	for rows.Next() {
		var stock types.Stock

		var name, list sql.NullString

		if err := rows.Scan(&stock.ID, &name, &list); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan stock", err)
		}

		stock.Name = name.String
		stock.List = list.String
		stocks = append(stocks, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read stocks", err)
	}

	return stocks, nil
}

func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBDataSource) summary(ctx context.Context, id string) (types.Stock, error) {
	query, args, err := d.sq.
		Select("symbol", "name", "list").
		From("market_data").
		Where(squirrel.Eq{"symbol": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Stock{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build stock query", err)
	}

	var stock types.Stock

	var name, list sql.NullString

	err = d.db.QueryRowContext(ctx, query, args...).Scan(&stock.ID, &name, &list)
	if err == sql.ErrNoRows {
		return types.Stock{}, errors.Newf(errors.ErrCodeDataNotFound, "stock %s not found", id)
	}

	if err != nil {
		return types.Stock{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query stock %s", id)
	}

	stock.Name = name.String
	stock.List = list.String

	return stock, nil
}
