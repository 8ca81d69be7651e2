package datasource

import (
	"context"
	"strings"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// SummaryFields is the field selection for stock listings.
var SummaryFields = []string{"id", "name", "list"}

// PriceDataSource supplies stocks and their daily price history.
// Implementations return the price data sorted by date, oldest first.
type PriceDataSource interface {
	// FetchStock returns the stock with the given id.
	// Price data is only loaded when fields select priceData.
	// Returns an error with ErrCodeDataNotFound when the stock does not exist.
	FetchStock(ctx context.Context, id string, fields []string) (types.Stock, error)
	// FetchStocks returns every stock of the universe without price data.
	FetchStocks(ctx context.Context, fields []string) ([]types.Stock, error)
	// Close releases any resources held by the data source.
	Close() error
}

// wantsPriceData reports whether fields select the price history.
// An empty selection means the default fields.
func wantsPriceData(fields []string) bool {
	if len(fields) == 0 {
		return true
	}

	for _, field := range fields {
		if strings.HasPrefix(strings.TrimSpace(field), "priceData") {
			return true
		}
	}

	return false
}

func fieldsOrDefault(fields []string, fallback []string) []string {
	if len(fields) == 0 {
		return fallback
	}

	return fields
}
