package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValidate(t *testing.T) {
	cfg := Default()
	cfg.applyDefaults()
	require.NoError(t, cfg.validate())
	require.Equal(t, "bps", cfg.Fill.Mode)
	require.True(t, cfg.Fill.BidAskAware)
	require.Equal(t, 500*time.Millisecond, cfg.Batch.FlushInterval())
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, loaded, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.False(t, loaded)
	require.NotEmpty(t, cfg.Run.RunID, "run id is generated when absent")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
run:
  runID: run-77
fill:
  mode: hybrid
  bps: 5
  hybridWeight: 0.25
  bidAskAware: false
batch:
  backend: timescale
  batchSize: 100
  flushIntervalMs: 50
  table: bench_signals
replay:
  maxEventsPerSec: 2500
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, loaded, err := LoadOrDefault(path)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "run-77", cfg.Run.RunID)
	require.Equal(t, "hybrid", cfg.Fill.Mode)
	require.Equal(t, 5.0, cfg.Fill.BPS)
	require.False(t, cfg.Fill.BidAskAware)
	require.Equal(t, "timescale", cfg.Batch.Backend)
	require.Equal(t, 100, cfg.Batch.BatchSize)
	require.Equal(t, 50*time.Millisecond, cfg.Batch.FlushInterval())
	require.Equal(t, "bench_signals", cfg.Batch.Table)
	require.Equal(t, 2500.0, cfg.Replay.MaxEventsPerSec)
	// untouched sections keep defaults
	require.Equal(t, "default", cfg.Run.StratID)
	require.Equal(t, 200, cfg.Batch.QueueMaxBatches)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad mode":    "fill:\n  mode: vwap\n",
		"bad weight":  "fill:\n  hybridWeight: 2\n",
		"bad backend": "batch:\n  backend: s3\n",
		"bad pace":    "replay:\n  maxEventsPerSec: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, _, err := LoadOrDefault(path)
			require.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHADOWBENCH_RUN_ID", "env-run")
	t.Setenv("SHADOWBENCH_BACKEND", "clickhouse")
	t.Setenv("SHADOWBENCH_SEED", "7")

	cfg, _, err := LoadOrDefault("")
	require.NoError(t, err)
	require.Equal(t, "env-run", cfg.Run.RunID)
	require.Equal(t, "clickhouse", cfg.Batch.Backend)
	require.Equal(t, int64(7), cfg.Fill.Seed)
}
