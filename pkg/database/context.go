package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type contextKey string

const (
	// ScopeKey is the context key for storing the active database scope.
	ScopeKey contextKey = "dbScope"
)

// GetScope retrieves the database scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (Querier, bool) {
	q, ok := ctx.Value(ScopeKey).(Querier)
	return q, ok
}

// SetScope stores a database scope in context. Repositories run their statements against it.
func SetScope(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, ScopeKey, q)
}

// WithScope returns ctx scoped to the pool unless it already carries a scope (such as a transaction).
func (db *DB) WithScope(ctx context.Context) context.Context {
	if _, ok := GetScope(ctx); ok {
		return ctx
	}
	return SetScope(ctx, db.Pool)
}

// WithTx runs fn inside a transaction whose scope is placed in the context passed to fn.
// The transaction commits when fn returns nil and rolls back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(SetScope(ctx, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
