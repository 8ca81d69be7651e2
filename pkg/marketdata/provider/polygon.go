package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type PolygonClient struct {
	client *polygon.Client
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return &PolygonClient{
		client: polygon.New(apiKey),
	}, nil
}

// FetchBars lists the daily aggregates of ticker.
func (c *PolygonClient) FetchBars(ctx context.Context, ticker string, start time.Time, end time.Time) ([]types.Bar, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.client.ListAggs(ctx, params)

	bars := []types.Bar{}
	for iter.Next() {
		bars = append(bars, barFromAgg(iter.Item()))
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", ticker)
	}

	return bars, nil
}

func barFromAgg(agg models.Agg) types.Bar {
	return types.Bar{
		Date:   time.Time(agg.Timestamp).UTC(),
		Open:   agg.Open,
		High:   agg.High,
		Low:    agg.Low,
		Close:  agg.Close,
		Volume: agg.Volume,
	}
}
