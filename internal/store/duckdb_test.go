package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/internal/version"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
	ctx   context.Context
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (suite *DuckDBStoreTestSuite) SetupTest() {
	store, err := NewDuckDBStore(MemoryPath, nil)
	suite.Require().NoError(err)

	suite.store = store
	suite.ctx = context.Background()
}

func (suite *DuckDBStoreTestSuite) TearDownTest() {
	suite.Require().NoError(suite.store.Close())
}

func day(key string) time.Time {
	date, _ := types.ParseDateKey(key)

	return date
}

func (suite *DuckDBStoreTestSuite) signal(id string, list string, key string, signalType string) types.Signal {
	action := "buy"
	if signalType == "exit" {
		action = "sell"
	}

	signal, err := types.NewSignal(types.Stock{ID: id, Name: id, List: list}, 10, day(key), action, signalType)
	suite.Require().NoError(err)

	return signal
}

func (suite *DuckDBStoreTestSuite) TestAppendAndFind() {
	docs := []Document{
		{StockID: "ABB", List: "Large Cap Stockholm", Date: day("2020-01-03"), Payload: []byte(`{"n":2}`)},
		{StockID: "ABB", List: "Large Cap Stockholm", Date: day("2020-01-02"), Payload: []byte(`{"n":1}`)},
	}

	suite.Require().NoError(suite.store.Append(suite.ctx, CollectionSignals, docs))

	found, err := suite.store.Find(suite.ctx, CollectionSignals, Query{})
	suite.Require().NoError(err)
	suite.Require().Len(found, 2)

	suite.Equal(`{"n":1}`, string(found[0].Payload))
	suite.Equal(`{"n":2}`, string(found[1].Payload))
	suite.NotEmpty(found[0].ID)
	suite.NotEqual(found[0].ID, found[1].ID)
	suite.True(day("2020-01-02").Equal(found[0].Date))
}

func (suite *DuckDBStoreTestSuite) TestAppendEmptyIsNoop() {
	suite.NoError(suite.store.Append(suite.ctx, CollectionTrades, nil))

	found, err := suite.store.Find(suite.ctx, CollectionTrades, Query{})
	suite.Require().NoError(err)
	suite.Empty(found)
}

func (suite *DuckDBStoreTestSuite) TestUnknownCollection() {
	err := suite.store.Append(suite.ctx, "orders", []Document{{StockID: "ABB"}})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = suite.store.Find(suite.ctx, "orders", Query{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DuckDBStoreTestSuite) TestDuplicateIDRollsBack() {
	docs := []Document{
		{ID: "same", StockID: "ABB", Date: day("2020-01-02"), Payload: []byte(`{}`)},
		{ID: "same", StockID: "ABB", Date: day("2020-01-03"), Payload: []byte(`{}`)},
	}

	err := suite.store.Append(suite.ctx, CollectionSignals, docs)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStoreWriteFailed))

	found, err := suite.store.Find(suite.ctx, CollectionSignals, Query{})
	suite.Require().NoError(err)
	suite.Empty(found)
}

func (suite *DuckDBStoreTestSuite) TestQueryFilters() {
	signals := []types.Signal{
		suite.signal("ABB", "Large Cap Stockholm", "2020-01-02", "enter"),
		suite.signal("ABB", "Large Cap Stockholm", "2020-02-03", "exit"),
		suite.signal("NOLA-B", "Mid Cap Stockholm", "2020-01-15", "enter"),
		suite.signal("TINY", "First North", "2020-03-02", "enter"),
	}
	suite.Require().NoError(AppendSignals(suite.ctx, suite.store, signals))

	tests := []struct {
		name     string
		query    Query
		expected []types.Signal
	}{
		{
			name:     "everything ascending",
			query:    Query{},
			expected: []types.Signal{signals[0], signals[2], signals[1], signals[3]},
		},
		{
			name:     "lists",
			query:    Query{Lists: []string{"Large Cap Stockholm", "Mid Cap Stockholm"}},
			expected: []types.Signal{signals[0], signals[2], signals[1]},
		},
		{
			name:     "newest first with limit",
			query:    Query{Descending: true, Limit: 2},
			expected: []types.Signal{signals[3], signals[1]},
		},
		{
			name:     "stock",
			query:    Query{StockID: "ABB", Descending: true},
			expected: []types.Signal{signals[1], signals[0]},
		},
		{
			name:     "stock outside lists",
			query:    Query{StockID: "ABB", Lists: []string{"First North"}},
			expected: []types.Signal{},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			found, err := FindSignals(suite.ctx, suite.store, tc.query)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, found)
		})
	}
}

func (suite *DuckDBStoreTestSuite) TestNegativeLimit() {
	_, err := suite.store.Find(suite.ctx, CollectionSignals, Query{Limit: -1})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *DuckDBStoreTestSuite) TestSameDateKeepsInsertionOrder() {
	first := suite.signal("ABB", "Large Cap Stockholm", "2020-01-02", "enter")
	second := suite.signal("VOLV-B", "Large Cap Stockholm", "2020-01-02", "enter")

	suite.Require().NoError(AppendSignals(suite.ctx, suite.store, []types.Signal{first, second}))

	found, err := FindSignals(suite.ctx, suite.store, Query{})
	suite.Require().NoError(err)
	suite.Equal([]types.Signal{first, second}, found)
}

func (suite *DuckDBStoreTestSuite) TestTradesRoundTripQuantity() {
	entry := suite.signal("ABB", "Large Cap Stockholm", "2020-01-02", "enter")
	exit := suite.signal("ABB", "Large Cap Stockholm", "2020-01-10", "exit")

	trade, err := types.NewTrade(entry, exit, entry.Stock, nil)
	suite.Require().NoError(err)
	trade.SetQuantity(42)

	suite.Require().NoError(AppendTrades(suite.ctx, suite.store, []*types.Trade{trade}))

	trades, err := FindTrades(suite.ctx, suite.store, Query{Lists: []string{"Large Cap Stockholm"}})
	suite.Require().NoError(err)
	suite.Require().Len(trades, 1)
	suite.Equal(42.0, trades[0].Quantity())
	suite.Equal(trade.Record(), trades[0].Record())
}

func (suite *DuckDBStoreTestSuite) TestPendingSignalsAndContexts() {
	stock := types.Stock{ID: "ABB", Name: "ABB Ltd", List: "Large Cap Stockholm"}
	pending := types.PendingSignal{
		Stock:          stock,
		Action:         types.SignalActionBuy,
		Type:           types.SignalTypeEnter,
		SignalDate:     day("2020-01-02"),
		ReferencePrice: 12.5,
	}

	suite.Require().NoError(AppendPendingSignal(suite.ctx, suite.store, pending))

	pendings, err := FindPendingSignals(suite.ctx, suite.store, Query{})
	suite.Require().NoError(err)
	suite.Equal([]types.PendingSignal{pending}, pendings)

	older := types.Context{Bias: types.BiasBear, HighPrice: 10, LowPrice: 8, TriggerPrice: 9.6, Regime: types.RegimeBull}
	newer := types.Context{Bias: types.BiasBull, HighPrice: 12, LowPrice: 8, TriggerPrice: 10, Regime: types.RegimeBull}

	suite.Require().NoError(AppendContext(suite.ctx, suite.store, stock, day("2020-01-02"), older))
	suite.Require().NoError(AppendContext(suite.ctx, suite.store, stock, day("2020-01-09"), newer))

	latest, err := LatestContext(suite.ctx, suite.store, "ABB")
	suite.Require().NoError(err)
	suite.Equal(newer, latest.Context)
	suite.Equal("2020-01-09", types.DateKey(latest.Date))

	_, err = LatestContext(suite.ctx, suite.store, "ERIC-B")
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DuckDBStoreTestSuite) TestFileStorePersists() {
	path := filepath.Join(suite.T().TempDir(), "results", "flipper.db")

	store, err := NewDuckDBStore(path, nil)
	suite.Require().NoError(err)
	suite.Equal(path, store.Path())

	signal := suite.signal("ABB", "Large Cap Stockholm", "2020-01-02", "enter")
	suite.Require().NoError(AppendSignals(suite.ctx, store, []types.Signal{signal}))
	suite.Require().NoError(store.Close())

	reopened, err := NewDuckDBStore(path, nil)
	suite.Require().NoError(err)
	defer reopened.Close()

	found, err := FindSignals(suite.ctx, reopened, Query{})
	suite.Require().NoError(err)
	suite.Equal([]types.Signal{signal}, found)
}

func (suite *DuckDBStoreTestSuite) TestIncompatibleFormatIsRejected() {
	path := filepath.Join(suite.T().TempDir(), "flipper.db")

	store, err := NewDuckDBStore(path, nil)
	suite.Require().NoError(err)

	var stored string
	suite.Require().NoError(store.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, formatKey).Scan(&stored))
	suite.Equal(version.StoreFormat, stored)

	_, err = store.db.Exec(`UPDATE metadata SET value = '99.0.0' WHERE key = ?`, formatKey)
	suite.Require().NoError(err)
	suite.Require().NoError(store.Close())

	_, err = NewDuckDBStore(path, nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStoreVersionMismatch))
}
