package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/quantfold/shadowbench/internal/schema"
)

const createSignalsTable = `
CREATE TABLE market_signals (
    run_id TEXT NOT NULL,
    ts     TIMESTAMPTZ NOT NULL,
    symbol TEXT NOT NULL,
    metric TEXT NOT NULL,
    value  DOUBLE PRECISION,
    label  TEXT,
    PRIMARY KEY (run_id, ts, symbol, metric)
)`

// TestTimescaleRoundtrip exercises the upsert backend against a real Postgres
// instance: a second write with the same primary key must overwrite the first.
func TestTimescaleRoundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_USER": "postgres", "POSTGRES_DB": "shadowbench"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgresql://postgres:secret@%s:%s/shadowbench", host, port.Port())

	backend, err := newTimescaleBackend(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	_, err = backend.pool.Exec(ctx, createSignalsTable)
	require.NoError(t, err)

	ts := "2024-01-01T00:00:00Z"
	first := []schema.MetricRow{{RunID: "run-1", TS: ts, Symbol: "BTC-USD", Metric: "fill_cost", Value: 1.25, Label: "A"}}
	require.NoError(t, backend.Write(ctx, "market_signals", first))

	second := []schema.MetricRow{{RunID: "run-1", TS: ts, Symbol: "BTC-USD", Metric: "fill_cost", Value: 2.5, Label: "B"}}
	require.NoError(t, backend.Write(ctx, "market_signals", second))

	var count int
	require.NoError(t, backend.pool.QueryRow(ctx, "SELECT count(*) FROM market_signals").Scan(&count))
	require.Equal(t, 1, count)

	var value float64
	var label string
	require.NoError(t, backend.pool.QueryRow(ctx,
		"SELECT value, label FROM market_signals WHERE run_id = 'run-1'").Scan(&value, &label))
	require.Equal(t, 2.5, value)
	require.Equal(t, "B", label, "upsert overwrites every non-key column")
}
