package db

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Hook is called before and after every statement.
//
// Implementations must be goroutine-safe and should not block. A panicking
// hook is recovered and logged; the statement still runs.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any)
	// AfterQuery receives the wall-clock duration of the driver call and the
	// already mapped error, nil on success.
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

type hookChain struct {
	hooks  []Hook
	logger *zap.Logger
}

func newHookChain(hooks []Hook, logger *zap.Logger) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered, logger: logger}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		c.safely("BeforeQuery", func() { h.BeforeQuery(ctx, query, args) })
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		c.safely("AfterQuery", func() { h.AfterQuery(ctx, query, args, d, err) })
	}
}

func (c hookChain) safely(phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil && c.logger != nil {
			c.logger.Error("hook panic", zap.String("phase", phase), zap.Any("panic", r))
		}
	}()
	fn()
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging hook
// ─────────────────────────────────────────────────────────────────────────────

// LogHookConfig configures NewLogHook.
type LogHookConfig struct {
	Logger *zap.Logger
	// SlowQueryThreshold logs a warning above this duration. Zero disables it.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound values. Keep it off where values may hold
	// passwords or personal data.
	LogArgs bool
}

// NewLogHook returns a Hook that logs each statement at debug level, slow
// statements at warn and failures at error.
func NewLogHook(cfg LogHookConfig) Hook {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logHook{cfg: cfg, logger: logger.Named("sql")}
}

type logHook struct {
	cfg    LogHookConfig
	logger *zap.Logger
}

func (h *logHook) BeforeQuery(context.Context, string, []any) {}

func (h *logHook) AfterQuery(_ context.Context, query string, args []any, d time.Duration, err error) {
	fields := []zap.Field{
		zap.String("query", trimQuery(query)),
		zap.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		fields = append(fields, zap.Any("args", args))
	}

	switch {
	case err != nil && !IsNotFound(err):
		h.logger.Error("query failed", append(fields, zap.Error(err))...)
	case h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold:
		h.logger.Warn("slow query", fields...)
	default:
		h.logger.Debug("query", fields...)
	}
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics hook
// ─────────────────────────────────────────────────────────────────────────────

// MetricsCollector receives one call per statement.
type MetricsCollector interface {
	RecordQuery(query string, duration time.Duration, success bool)
}

// NewMetricsHook returns a Hook that feeds collector.
func NewMetricsHook(collector MetricsCollector) Hook {
	return &metricsHook{c: collector}
}

type metricsHook struct{ c MetricsCollector }

func (h *metricsHook) BeforeQuery(context.Context, string, []any) {}

func (h *metricsHook) AfterQuery(_ context.Context, query string, _ []any, d time.Duration, err error) {
	h.c.RecordQuery(query, d, err == nil || IsNotFound(err))
}

// QueryStats is an in-process MetricsCollector counting statements.
type QueryStats struct {
	total  atomic.Int64
	failed atomic.Int64
	nanos  atomic.Int64
}

// RecordQuery implements MetricsCollector.
func (s *QueryStats) RecordQuery(_ string, d time.Duration, success bool) {
	s.total.Add(1)
	s.nanos.Add(int64(d))
	if !success {
		s.failed.Add(1)
	}
}

// QueryStatsSnapshot is a point-in-time copy of QueryStats.
type QueryStatsSnapshot struct {
	Total     int64         `json:"queries"`
	Failed    int64         `json:"failedQueries"`
	TotalTime time.Duration `json:"-"`
}

// Snapshot returns the current counters.
func (s *QueryStats) Snapshot() QueryStatsSnapshot {
	return QueryStatsSnapshot{
		Total:     s.total.Load(),
		Failed:    s.failed.Load(),
		TotalTime: time.Duration(s.nanos.Load()),
	}
}

// CompositeHook runs several hooks as one.
func CompositeHook(hooks ...Hook) Hook { return &compositeHook{hooks: hooks} }

type compositeHook struct{ hooks []Hook }

func (c *compositeHook) BeforeQuery(ctx context.Context, q string, args []any) {
	for _, h := range c.hooks {
		h.BeforeQuery(ctx, q, args)
	}
}

func (c *compositeHook) AfterQuery(ctx context.Context, q string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		h.AfterQuery(ctx, q, args, d, err)
	}
}
