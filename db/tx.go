package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Skryldev/jobly/sqlbuild"
)

// Tx wraps *sql.Tx with the same surface as DB so repositories can run
// inside a transaction through Querier.
type Tx struct {
	sqltx   *sql.Tx
	hooks   hookChain
	errMap  ErrorMapper
	dialect sqlbuild.Dialect
}

// Builder returns a fragment builder for the transaction's dialect.
func (t *Tx) Builder() sqlbuild.Builder { return sqlbuild.New(t.dialect) }

// Exec runs a statement that returns no rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	res, err := t.sqltx.ExecContext(ctx, query, args...)
	err = t.mapErr(err)
	t.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query runs a statement returning rows. The caller must close the rows.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	rows, err := t.sqltx.QueryContext(ctx, query, args...)
	err = t.mapErr(err)
	t.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow runs a statement expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	r := newRow(ctx, t.hooks, t.errMap, query, args)
	r.raw = t.sqltx.QueryRowContext(ctx, query, args...)
	return r
}

// Prepare creates a statement bound to the transaction.
func (t *Tx) Prepare(ctx context.Context, query string) (*Stmt, error) {
	s, err := t.sqltx.PrepareContext(ctx, query)
	if err != nil {
		return nil, t.mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hooks: t.hooks, errMap: t.errMap}, nil
}

func (t *Tx) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return t.errMap.Map(err)
}

// ExecTx begins a transaction, runs fn, and commits when fn returns nil.
// It rolls back when fn returns an error or panics; a panic is re-raised
// after the rollback. Nested transactions are not supported.
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error) (err error) {
	sqltx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return d.mapErr(err)
	}

	tx := &Tx{
		sqltx:   sqltx,
		hooks:   d.hooks,
		errMap:  d.errMap,
		dialect: d.dialect,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil {
				err = fmt.Errorf("jobly/db: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return d.mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return d.mapErr(err)
	}
	return nil
}

// Querier is the surface shared by *DB and *Tx. Repositories accept it so
// they work the same inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
	Prepare(ctx context.Context, query string) (*Stmt, error)
	Builder() sqlbuild.Builder
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)
