package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// ContextRecord is the strategy context of a stock after its last observed bar.
type ContextRecord struct {
	Stock   types.Stock   `json:"stock"`
	Date    time.Time     `json:"date"`
	Context types.Context `json:"context"`
}

func newDocument(stock types.Stock, date time.Time, value any) (Document, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to encode document", err)
	}

	return Document{
		StockID: stock.ID,
		List:    stock.List,
		Date:    date.UTC(),
		Payload: payload,
	}, nil
}

func decodeDocuments[T any](docs []Document) ([]T, error) {
	values := make([]T, 0, len(docs))

	for _, doc := range docs {
		var value T
		if err := json.Unmarshal(doc.Payload, &value); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to decode document %s", doc.ID)
		}

		values = append(values, value)
	}

	return values, nil
}

// AppendSignals stores signals indexed by execution date.
func AppendSignals(ctx context.Context, s DocumentStore, signals []types.Signal) error {
	docs := make([]Document, 0, len(signals))

	for _, signal := range signals {
		doc, err := newDocument(signal.Stock, signal.Date, signal)
		if err != nil {
			return err
		}

		docs = append(docs, doc)
	}

	return s.Append(ctx, CollectionSignals, docs)
}

// AppendTrades stores trades indexed by entry date.
func AppendTrades(ctx context.Context, s DocumentStore, trades []*types.Trade) error {
	docs := make([]Document, 0, len(trades))

	for _, trade := range trades {
		doc, err := newDocument(trade.Stock, trade.Entry.Date, trade.Record())
		if err != nil {
			return err
		}

		docs = append(docs, doc)
	}

	return s.Append(ctx, CollectionTrades, docs)
}

// AppendPendingSignal stores a pending signal indexed by the date of the bar that fired it.
func AppendPendingSignal(ctx context.Context, s DocumentStore, pending types.PendingSignal) error {
	doc, err := newDocument(pending.Stock, pending.SignalDate, pending)
	if err != nil {
		return err
	}

	return s.Append(ctx, CollectionPendingSignals, []Document{doc})
}

// AppendContext stores the context of a stock as of date.
func AppendContext(ctx context.Context, s DocumentStore, stock types.Stock, date time.Time, state types.Context) error {
	record := ContextRecord{Stock: stock.Summary(), Date: date.UTC(), Context: state}

	doc, err := newDocument(record.Stock, record.Date, record)
	if err != nil {
		return err
	}

	return s.Append(ctx, CollectionContexts, []Document{doc})
}

func FindSignals(ctx context.Context, s DocumentStore, query Query) ([]types.Signal, error) {
	docs, err := s.Find(ctx, CollectionSignals, query)
	if err != nil {
		return nil, err
	}

	return decodeDocuments[types.Signal](docs)
}

// FindTrades rebuilds the stored trades with the quantity they were stored with.
func FindTrades(ctx context.Context, s DocumentStore, query Query) ([]*types.Trade, error) {
	docs, err := s.Find(ctx, CollectionTrades, query)
	if err != nil {
		return nil, err
	}

	records, err := decodeDocuments[types.TradeRecord](docs)
	if err != nil {
		return nil, err
	}

	trades := make([]*types.Trade, 0, len(records))

	for _, record := range records {
		trade, err := types.NewTradeFromRecord(record)
		if err != nil {
			return nil, err
		}

		trades = append(trades, trade)
	}

	return trades, nil
}

func FindPendingSignals(ctx context.Context, s DocumentStore, query Query) ([]types.PendingSignal, error) {
	docs, err := s.Find(ctx, CollectionPendingSignals, query)
	if err != nil {
		return nil, err
	}

	return decodeDocuments[types.PendingSignal](docs)
}

func FindContexts(ctx context.Context, s DocumentStore, query Query) ([]ContextRecord, error) {
	docs, err := s.Find(ctx, CollectionContexts, query)
	if err != nil {
		return nil, err
	}

	return decodeDocuments[ContextRecord](docs)
}

// LatestContext returns the most recent context stored for stockID.
func LatestContext(ctx context.Context, s DocumentStore, stockID string) (ContextRecord, error) {
	records, err := FindContexts(ctx, s, Query{StockID: stockID, Descending: true, Limit: 1})
	if err != nil {
		return ContextRecord{}, err
	}

	if len(records) == 0 {
		return ContextRecord{}, errors.Newf(errors.ErrCodeDataNotFound, "no context stored for stock %s", stockID)
	}

	return records[0], nil
}
