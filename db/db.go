// Package db wraps database/sql with context-aware helpers, query hooks,
// driver error mapping and transaction management. All SQL stays explicit;
// the package never generates statements on its own.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Skryldev/jobly/sqlbuild"
	"go.uber.org/zap"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds the options for opening and tuning the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "postgres" or "sqlite3". It also selects the SQL dialect.
	DriverName string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// DefaultTimeout applies to statements whose context has no deadline.
	// Zero disables it.
	DefaultTimeout time.Duration

	// Hooks run around every statement. Nil entries are skipped.
	Hooks []Hook

	// Logger receives hook panics. Defaults to a no-op logger.
	Logger *zap.Logger
}

// ─────────────────────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB that dispatches hooks,
// maps driver errors to the package sentinels and knows the SQL dialect of
// its driver.
type DB struct {
	sqldb   *sql.DB
	cfg     Config
	hooks   hookChain
	errMap  ErrorMapper
	dialect sqlbuild.Dialect
}

// Open opens the database described by cfg and pings it.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("jobly/db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("jobly/db: DriverName must not be empty")
	}
	dialect, err := sqlbuild.DialectFor(cfg.DriverName)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	d := &DB{
		sqldb:   sqldb,
		cfg:     cfg,
		hooks:   newHookChain(cfg.Hooks, cfg.Logger),
		errMap:  DefaultErrorMapper(),
		dialect: dialect,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("jobly/db: ping: %w", d.mapErr(err))
	}

	return d, nil
}

// Builder returns a fragment builder for this database's dialect.
func (d *DB) Builder() sqlbuild.Builder { return sqlbuild.New(d.dialect) }

// SetErrorMapper replaces the default error mapper.
func (d *DB) SetErrorMapper(m ErrorMapper) { d.errMap = m }

// Close closes all pooled connections.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// PoolStats returns connection pool statistics.
func (d *DB) PoolStats() PoolStats {
	s := d.sqldb.Stats()
	return PoolStats{
		Open:      s.OpenConnections,
		InUse:     s.InUse,
		Idle:      s.Idle,
		WaitCount: s.WaitCount,
	}
}

// PoolStats is the subset of sql.DBStats reported by the health endpoint.
type PoolStats struct {
	Open      int   `json:"open"`
	InUse     int   `json:"inUse"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"waitCount"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Statement execution
// ─────────────────────────────────────────────────────────────────────────────

// Exec runs a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query runs a statement that returns rows. The caller must close the rows.
// The default timeout is not applied here because it would cancel the rows
// before the caller reads them; pass a context with a deadline instead.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow runs a statement expected to return at most one row. Scan on the
// result reports ErrNotFound when there is none.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	r := newRow(ctx, d.hooks, d.errMap, query, args)
	r.raw = d.sqldb.QueryRowContext(ctx, query, args...)
	return r
}

// Prepare creates a prepared statement. The caller must close it.
func (d *DB) Prepare(ctx context.Context, query string) (*Stmt, error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	s, err := d.sqldb.PrepareContext(ctx, query)
	if err != nil {
		return nil, d.mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hooks: d.hooks, errMap: d.errMap}, nil
}

// BatchExec runs query once per item inside a single transaction, binding
// the arguments argsFn returns for each item.
func BatchExec[T any](
	d *DB,
	ctx context.Context,
	query string,
	items []T,
	argsFn func(T) []any,
) error {
	return d.ExecTx(ctx, func(tx *Tx) error {
		stmt, err := tx.Prepare(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, item := range items {
			if _, err := stmt.Exec(ctx, argsFn(item)...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.DefaultTimeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.cfg.DefaultTimeout)
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row / Stmt
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps its Scan error. The driver reports a failed
// statement only at Scan, so the after-hooks run there.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper

	ctx   context.Context
	hooks hookChain
	query string
	args  []any
	start time.Time
}

func newRow(ctx context.Context, hooks hookChain, errMap ErrorMapper, query string, args []any) *Row {
	r := &Row{ctx: ctx, hooks: hooks, errMap: errMap, query: query, args: args, start: time.Now()}
	hooks.Before(ctx, query, args)
	return r
}

// Scan copies the row's columns into dest. ErrNotFound means no row matched.
func (r *Row) Scan(dest ...any) error {
	err := r.errMap.Map(r.raw.Scan(dest...))
	r.hooks.After(r.ctx, r.query, r.args, time.Since(r.start), err)
	return err
}

// Stmt wraps a prepared *sql.Stmt with hook dispatch and error mapping.
type Stmt struct {
	stmt   *sql.Stmt
	query  string
	hooks  hookChain
	errMap ErrorMapper
}

// Exec runs the prepared statement.
func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	res, err := s.stmt.ExecContext(ctx, args...)
	err = s.errMap.Map(err)
	s.hooks.After(ctx, s.query, args, time.Since(start), err)
	return res, err
}

// QueryRow runs the prepared statement expecting one row.
func (s *Stmt) QueryRow(ctx context.Context, args ...any) *Row {
	r := newRow(ctx, s.hooks, s.errMap, s.query, args)
	r.raw = s.stmt.QueryRowContext(ctx, args...)
	return r
}

// Close releases the statement.
func (s *Stmt) Close() error { return s.stmt.Close() }

// ─────────────────────────────────────────────────────────────────────────────
// WithRetry
// ─────────────────────────────────────────────────────────────────────────────

// RetryConfig controls WithRetry.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	// RetryOn reports whether err is worth another attempt. Nil retries on
	// ErrDeadlock, ErrTimeout and ErrConnectionFailed.
	RetryOn func(error) bool
}

// WithRetry calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. fn must be idempotent.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	retryOn := cfg.RetryOn
	if retryOn == nil {
		retryOn = func(err error) bool {
			return IsDeadlock(err) || IsTimeout(err) || IsConnectionFailed(err)
		}
	}
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryOn(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("jobly/db: all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}
