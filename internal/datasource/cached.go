package datasource

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rxtech-lab/argo-flipper/internal/types"
)

// CachedDataSource wraps a PriceDataSource and keeps every successful response.
// Concurrent requests for the same key share one underlying call. Errors are not cached.
// Cached stocks share their price data slice, callers must not modify it.
type CachedDataSource struct {
	underlying PriceDataSource
	stocks     map[string]types.Stock
	listings   map[string][]types.Stock
	group      singleflight.Group
	mu         sync.RWMutex
}

// NewCachedDataSource creates a new CachedDataSource wrapping the given PriceDataSource.
func NewCachedDataSource(underlying PriceDataSource) *CachedDataSource {
	return &CachedDataSource{
		underlying: underlying,
		stocks:     make(map[string]types.Stock),
		listings:   make(map[string][]types.Stock),
	}
}

// ClearCache drops every cached response.
func (c *CachedDataSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stocks = make(map[string]types.Stock)
	c.listings = make(map[string][]types.Stock)
}

func (c *CachedDataSource) FetchStock(ctx context.Context, id string, fields []string) (types.Stock, error) {
	key := "stock|" + id + "|" + strings.Join(fields, ",")

	c.mu.RLock()
	if stock, ok := c.stocks[key]; ok {
		c.mu.RUnlock()

		return stock, nil
	}
	c.mu.RUnlock()

	value, err, _ := c.group.Do(key, func() (any, error) {
		// a call that finished before this one started may have filled the cache
		c.mu.RLock()
		if stock, ok := c.stocks[key]; ok {
			c.mu.RUnlock()

			return stock, nil
		}
		c.mu.RUnlock()

		stock, err := c.underlying.FetchStock(ctx, id, fields)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.stocks[key] = stock
		c.mu.Unlock()

		return stock, nil
	})
	if err != nil {
		return types.Stock{}, err
	}

	return value.(types.Stock), nil
}

func (c *CachedDataSource) FetchStocks(ctx context.Context, fields []string) ([]types.Stock, error) {
	key := "stocks|" + strings.Join(fields, ",")

	c.mu.RLock()
	if stocks, ok := c.listings[key]; ok {
		c.mu.RUnlock()

		return stocks, nil
	}
	c.mu.RUnlock()

	value, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if stocks, ok := c.listings[key]; ok {
			c.mu.RUnlock()

			return stocks, nil
		}
		c.mu.RUnlock()

		stocks, err := c.underlying.FetchStocks(ctx, fields)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.listings[key] = stocks
		c.mu.Unlock()

		return stocks, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]types.Stock), nil
}

func (c *CachedDataSource) Close() error {
	return c.underlying.Close()
}
