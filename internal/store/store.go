package store

import (
	"context"
	"time"
)

// Collection names a group of documents.
type Collection string

const (
	CollectionSignals        Collection = "signals"
	CollectionTrades         Collection = "trades"
	CollectionPendingSignals Collection = "pending_signals"
	CollectionContexts       Collection = "contexts"
)

// Collections lists every collection a store must hold.
var Collections = []Collection{
	CollectionSignals,
	CollectionTrades,
	CollectionPendingSignals,
	CollectionContexts,
}

// Document is one stored record. Payload is the JSON encoding of the record,
// the other fields are indexed copies used for filtering and ordering.
type Document struct {
	ID      string
	StockID string
	List    string
	Date    time.Time
	Payload []byte
}

// Query filters and orders the documents of a collection.
type Query struct {
	// Lists restricts the result to stocks of these lists. Empty matches every list.
	Lists []string
	// StockID restricts the result to one stock when set
	StockID string
	// Descending orders the newest documents first
	Descending bool
	// Limit caps the number of documents. Zero means no limit.
	Limit int
}

// DocumentStore persists documents into named collections.
type DocumentStore interface {
	// Append stores docs in collection. Documents without an ID get a generated one.
	Append(ctx context.Context, collection Collection, docs []Document) error
	// Find returns the documents of collection matching query, ordered by date.
	Find(ctx context.Context, collection Collection, query Query) ([]Document, error)
	Close() error
}

func isKnownCollection(collection Collection) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}

	return false
}
