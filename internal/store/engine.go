package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Querier is the statement surface shared by the store and an open
// transaction. Queries use "?" placeholders.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Engine is the storage port the repository and the order orchestrator
// depend on. *Store implements it for both backends.
type Engine interface {
	Querier

	// Dialect describes the backend's SQL flavor.
	Dialect() Dialect

	// InTx runs fn inside one transaction. If fn returns an error the
	// transaction is rolled back before InTx returns.
	InTx(ctx context.Context, fn func(q Querier) error) error
}

var _ Engine = (*Store)(nil)

// InTx runs fn inside an explicit BEGIN / COMMIT. Any error from fn triggers
// a ROLLBACK; a rollback failure is joined to the original error.
func (s *Store) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txQuerier{tx: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txQuerier rebinds placeholders for statements run inside a transaction.
type txQuerier struct {
	tx      *sql.Tx
	dialect Dialect
}

func (q *txQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.tx.QueryContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *txQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return q.tx.QueryRowContext(ctx, q.dialect.Rebind(query), args...)
}

func (q *txQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.tx.ExecContext(ctx, q.dialect.Rebind(query), args...)
}
