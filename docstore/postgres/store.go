package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/poiesic/newsroom/docstore"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "articles"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements docstore.Store on a Postgres table with a jsonb column.
type Store struct {
	db     *sqlx.DB
	table  string
	logger *slog.Logger
}

var _ docstore.Store = (*Store)(nil)

// Connect opens a connection pool for dsn and makes sure the table exists.
func Connect(ctx context.Context, dsn, table string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := New(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing pool. The table name must be a plain identifier.
func New(db *sqlx.DB, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("postgres: invalid table name %q", table)
	}
	return &Store{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "postgres-docstore"),
	}, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL(s.table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func createTableSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
        id BIGSERIAL PRIMARY KEY,
        body JSONB NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`
}

// insertQuery builds the parameterised insert for one document body.
func insertQuery(table string, body []byte) (string, []any, error) {
	return sq.Insert(table).
		Columns("body").
		Values(sq.Expr("?::jsonb", string(body))).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// Insert stores doc as a new row.
func (s *Store) Insert(ctx context.Context, doc map[string]any) error {
	if doc == nil {
		return docstore.ErrNilDocument
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query, args, err := insertQuery(s.table, body)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool. The context is unused.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}
