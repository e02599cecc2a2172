package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/OscarAAV94/VelPra-bot/internal/config"
)

// PostgresStore is the production Store. With tx unset, the entity
// methods run against the pool; BeginTx hands out a copy bound to a
// transaction, so the same methods serve both modes.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPostgresStore opens the connection pool, applies the configured
// pool limits and verifies the database is reachable.
func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// BeginTx returns a Store whose operations run inside one transaction
func (s *PostgresStore) BeginTx(ctx context.Context) (Store, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: s.db, tx: tx}, nil
}

// Commit commits the transaction, if any
func (s *PostgresStore) Commit() error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Commit()
}

// Rollback rolls back the transaction, if any
func (s *PostgresStore) Rollback() error {
	if s.tx == nil {
		return nil
	}
	return s.tx.Rollback()
}

// querier is the subset of *sql.DB and *sql.Tx the entity methods use.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// getDB resolves the execution target for the current mode
func (s *PostgresStore) getDB() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}
