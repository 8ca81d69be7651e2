package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-flipper/internal/logger"
	"github.com/rxtech-lab/argo-flipper/internal/version"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

// MemoryPath opens a store that lives only as long as the process.
const MemoryPath = ":memory:"

const (
	metadataTable = "metadata"
	formatKey     = "store_format"
)

// DuckDBStore keeps every collection in its own DuckDB table.
type DuckDBStore struct {
	db     *sql.DB
	path   string
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
	mu     sync.Mutex
}

// NewDuckDBStore opens the database file at path and creates the collection tables.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if path == "" {
		path = MemoryPath
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to create store directory", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB store", err)
	}

	store := &DuckDBStore{
		db:     db,
		path:   path,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log,
		mu:     sync.Mutex{},
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *DuckDBStore) initialize() error {
	for _, collection := range Collections {
		_, err := s.db.Exec(fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s_seq`, collection))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to create sequence for %s", collection)
		}

		_, err = s.db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id TEXT PRIMARY KEY,
				seq BIGINT DEFAULT nextval('%[1]s_seq'),
				stock_id TEXT,
				list TEXT,
				date TIMESTAMP,
				payload TEXT
			)
		`, collection))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to create table %s", collection)
		}
	}

	return s.checkFormat()
}

// checkFormat stamps a new store with the current format and rejects stores written in an incompatible one.
func (s *DuckDBStore) checkFormat() error {
	_, err := s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT)`, metadataTable))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to create metadata table", err)
	}

	query, args, err := s.sq.Select("value").From(metadataTable).Where(squirrel.Eq{"key": formatKey}).ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build format query", err)
	}

	var stored string

	err = s.db.QueryRow(query, args...).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err = s.sq.Insert(metadataTable).Columns("key", "value").Values(formatKey, version.StoreFormat).RunWith(s.db).Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to write store format", err)
		}

		return nil
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read store format", err)
	}

	if err := version.CheckCompatibility(version.StoreFormat, stored); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreVersionMismatch, err, "store %s cannot be read", s.path)
	}

	s.logger.Debug("Opened store",
		zap.String("path", s.path),
		zap.String("format", stored),
	)

	return nil
}

// Path returns the database file the store was opened on.
func (s *DuckDBStore) Path() string {
	return s.path
}

// Append inserts docs into collection within a single transaction.
func (s *DuckDBStore) Append(ctx context.Context, collection Collection, docs []Document) error {
	if !isKnownCollection(collection) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown collection %q", collection)
	}

	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to begin transaction", err)
	}

	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.New().String()
		}

		_, err := s.sq.
			Insert(string(collection)).
			Columns("id", "stock_id", "list", "date", "payload").
			Values(id, doc.StockID, doc.List, doc.Date, string(doc.Payload)).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to insert into %s", collection)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to commit transaction", err)
	}

	s.logger.Debug("Appended documents",
		zap.String("collection", string(collection)),
		zap.Int("count", len(docs)),
	)

	return nil
}

// Find reads the documents of collection matching query.
// Documents with the same date keep their insertion order.
func (s *DuckDBStore) Find(ctx context.Context, collection Collection, query Query) ([]Document, error) {
	if !isKnownCollection(collection) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown collection %q", collection)
	}

	if query.Limit < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must not be negative, got %d", query.Limit)
	}

	order := "ASC"
	if query.Descending {
		order = "DESC"
	}

	builder := s.sq.
		Select("id", "stock_id", "list", "date", "payload").
		From(string(collection)).
		OrderBy(fmt.Sprintf("date %s", order), fmt.Sprintf("seq %s", order))

	conditions := squirrel.And{}
	if len(query.Lists) > 0 {
		conditions = append(conditions, squirrel.Eq{"list": query.Lists})
	}

	if query.StockID != "" {
		conditions = append(conditions, squirrel.Eq{"stock_id": query.StockID})
	}

	if len(conditions) > 0 {
		builder = builder.Where(conditions)
	}

	if query.Limit > 0 {
		builder = builder.Limit(uint64(query.Limit))
	}

	sqlQuery, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s", collection)
	}
	defer rows.Close()

	docs := []Document{}

	for rows.Next() {
		var (
			doc     Document
			payload string
		)

		if err := rows.Scan(&doc.ID, &doc.StockID, &doc.List, &doc.Date, &payload); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to scan %s", collection)
		}

		doc.Payload = []byte(payload)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", collection)
	}

	return docs, nil
}

func (s *DuckDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}
