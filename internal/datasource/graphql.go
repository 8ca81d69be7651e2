package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// DefaultRequestTimeout bounds a single GraphQL request.
const DefaultRequestTimeout = 30 * time.Second

// GraphQLDataSource reads stocks from a GraphQL price API.
type GraphQLDataSource struct {
	client *resty.Client
	url    string
	logger *logger.Logger
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLBar struct {
	Date   graphQLDate `json:"date"`
	Open   float64     `json:"open"`
	High   float64     `json:"high"`
	Low    float64     `json:"low"`
	Close  float64     `json:"close"`
	Volume float64     `json:"volume"`
}

type graphQLStock struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	List      string       `json:"list"`
	PriceData []graphQLBar `json:"priceData"`
}

type stockResponse struct {
	Data struct {
		Stock *graphQLStock `json:"stock"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type stocksResponse struct {
	Data struct {
		Stocks []graphQLStock `json:"stocks"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// graphQLDate accepts RFC 3339 timestamps, day keys and epoch milliseconds.
type graphQLDate struct {
	time.Time
}

func (d *graphQLDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("date is null")
	}

	if len(data) > 0 && data[0] != '"' {
		millis, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid epoch date %s: %w", data, err)
		}

		d.Time = time.UnixMilli(millis).UTC()

		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		d.Time = time.UnixMilli(millis).UTC()

		return nil
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		d.Time = parsed.UTC()

		return nil
	}

	parsed, err := types.ParseDateKey(raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}

	d.Time = parsed

	return nil
}

// NewGraphQLDataSource creates a data source posting queries to url.
func NewGraphQLDataSource(url string, timeout time.Duration, log *logger.Logger) *GraphQLDataSource {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GraphQLDataSource{
		client: client,
		url:    url,
		logger: log,
	}
}

// StockQuery builds the query for a single stock.
func StockQuery(id string, fields []string) string {
	return fmt.Sprintf("{stock(id: %s) {%s}}", strconv.Quote(id), strings.Join(fieldsOrDefault(fields, types.DefaultStockFields), ", "))
}

// StocksQuery builds the query listing every stock.
func StocksQuery(fields []string) string {
	return fmt.Sprintf("{stocks {%s}}", strings.Join(fieldsOrDefault(fields, SummaryFields), ", "))
}

func (d *GraphQLDataSource) FetchStock(ctx context.Context, id string, fields []string) (types.Stock, error) {
	var response stockResponse
	if err := d.post(ctx, StockQuery(id, fields), &response); err != nil {
		return types.Stock{}, err
	}

	if len(response.Errors) > 0 {
		return types.Stock{}, errors.Newf(errors.ErrCodeQueryFailed, "stock query for %s failed: %s", id, response.Errors[0].Message)
	}

	if response.Data.Stock == nil {
		return types.Stock{}, errors.Newf(errors.ErrCodeDataNotFound, "stock %s not found", id)
	}

	stock := response.Data.Stock.toStock()

	d.logger.Debug("Fetched stock",
		zap.String("id", stock.ID),
		zap.Int("bars", len(stock.PriceData)),
	)

	return stock, nil
}

func (d *GraphQLDataSource) FetchStocks(ctx context.Context, fields []string) ([]types.Stock, error) {
	var response stocksResponse
	if err := d.post(ctx, StocksQuery(fields), &response); err != nil {
		return nil, err
	}

	if len(response.Errors) > 0 {
		return nil, errors.Newf(errors.ErrCodeQueryFailed, "stocks query failed: %s", response.Errors[0].Message)
	}

	stocks := make([]types.Stock, len(response.Data.Stocks))
	for i, stock := range response.Data.Stocks {
		stocks[i] = stock.toStock().Summary()
	}

	return stocks, nil
}

func (d *GraphQLDataSource) Close() error {
	return nil
}

func (d *GraphQLDataSource) post(ctx context.Context, query string, result any) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query}).
		Post(d.url)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "request to %s failed", d.url)
	}

	if resp.IsError() {
		return errors.Newf(errors.ErrCodeDataSourceUnavailable, "price api responded with status %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode price api response", err)
	}

	return nil
}

func (s graphQLStock) toStock() types.Stock {
	stock := types.Stock{
		ID:   s.ID,
		Name: s.Name,
		List: s.List,
	}

	if len(s.PriceData) == 0 {
		return stock
	}

	stock.PriceData = make([]types.Bar, len(s.PriceData))
	for i, bar := range s.PriceData {
		stock.PriceData[i] = types.Bar{
			Date:   bar.Date.Time,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}

	sort.SliceStable(stock.PriceData, func(i, j int) bool {
		return stock.PriceData[i].Date.Before(stock.PriceData[j].Date)
	})

	return stock
}
