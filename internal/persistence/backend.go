// Package persistence implements the asynchronous batched pipeline that moves
// metric rows from the replay run into a durable backend.
package persistence

import (
	"context"
	"time"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/schema"
)

// BackendKind names a supported persistence backend.
type BackendKind string

const (
	// BackendNone discards every write. It is a valid production setting for
	// dry runs and the default.
	BackendNone BackendKind = "none"
	// BackendClickHouse bulk-inserts deduplicated rows in columnar order.
	BackendClickHouse BackendKind = "clickhouse"
	// BackendTimescale upserts rows through a single parameterized statement.
	BackendTimescale BackendKind = "timescale"
)

// Backend is the closed write contract consumed by the Writer. Exactly one
// execution context (the Writer's worker) touches a Backend after construction.
type Backend interface {
	// Write persists the already-deduplicated rows into table. The rows slice
	// is never empty. Failures surface as errors; the caller owns retries.
	Write(ctx context.Context, table string, rows []schema.MetricRow) error
	// Close releases the connection. It is idempotent.
	Close() error
}

// Config fixes the behaviour of one Writer. Immutable after construction.
type Config struct {
	Backend         BackendKind
	BatchSize       int
	FlushInterval   time.Duration
	QueueMaxBatches int
	ClickHouseURL   string
	TimescaleDSN    string
	Table           string
}

func (c Config) withDefaults() Config {
	out := c
	if out.Backend == "" {
		out.Backend = BackendNone
	}
	if out.BatchSize <= 0 {
		out.BatchSize = 5000
	}
	if out.FlushInterval <= 0 {
		out.FlushInterval = 500 * time.Millisecond
	}
	if out.QueueMaxBatches <= 0 {
		out.QueueMaxBatches = 200
	}
	if out.Table == "" {
		out.Table = "market_signals"
	}
	return out
}

// NewBackend constructs the connector selected by cfg.Backend.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Backend {
	case BackendNone, "":
		return noopBackend{}, nil
	case BackendClickHouse:
		return newClickHouseBackend(cfg.ClickHouseURL)
	case BackendTimescale:
		return newTimescaleBackend(ctx, cfg.TimescaleDSN)
	}
	return nil, errs.New("persistence", errs.CodeInvalid,
		errs.WithMessage("unknown backend "+string(cfg.Backend)),
		errs.WithRemediation("choose one of none, clickhouse, timescale"))
}

type noopBackend struct{}

func (noopBackend) Write(context.Context, string, []schema.MetricRow) error { return nil }
func (noopBackend) Close() error                                            { return nil }
