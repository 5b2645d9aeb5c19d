// Package database provides PostgreSQL connection management for ProjectDesk.
// It wraps the pgx connection pool and defines the query interfaces that the
// repository layer is written against, so tests can substitute pgxmock.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avissapr/projectdesk/internal/config"
)

// Querier is the subset of pgx operations the repositories need.
// Both *pgxpool.Pool and pgx.Tx satisfy it, which lets the same repository
// code run against the pool directly or inside a transaction.
type Querier interface {
	// Query executes a query that returns rows
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// QueryRow executes a query that returns at most one row
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row

	// Exec executes a query without returning any rows
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Pool extends Querier with transaction support and lifecycle management.
// Satisfied by *pgxpool.Pool in production and pgxmock.PgxPoolIface in tests.
type Pool interface {
	Querier

	// Begin starts a transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Ping verifies a connection to the database is still alive
	Ping(ctx context.Context) error

	// Close closes all connections in the pool
	Close()
}

// Connect establishes a connection pool and verifies connectivity.
// There is no package-level handle; callers own the returned pool and pass
// it down explicitly.
//
// Example:
//
//	pool, err := database.Connect(ctx, cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
func Connect(ctx context.Context, cfg config.DatabaseConfig) (Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// InTx runs fn inside a transaction, committing on success and rolling back
// on any error or panic. The transaction handle passed to fn satisfies
// Querier, so transaction-scoped repositories can be built over it.
func InTx(ctx context.Context, pool Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
