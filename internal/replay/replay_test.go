package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/shadowbench/config"
	"github.com/quantfold/shadowbench/internal/persistence"
	"github.com/quantfold/shadowbench/internal/schema"
)

func ptr(v float64) *float64 { return &v }

func TestSortEventsDeterministicOrder(t *testing.T) {
	events := []Event{
		{TS: 2000, Symbol: "ETH", ID: 1},
		{TS: 1000, Symbol: "ETH", ID: 2},
		{TS: 1000, Symbol: "BTC", ID: 9},
		{TS: 1000, Symbol: "ETH", ID: 1},
	}
	SortEvents(events)

	require.Equal(t, []Event{
		{TS: 1000, Symbol: "BTC", ID: 9},
		{TS: 1000, Symbol: "ETH", ID: 1},
		{TS: 1000, Symbol: "ETH", ID: 2},
		{TS: 2000, Symbol: "ETH", ID: 1},
	}, events)
}

func TestEventIntentDefaults(t *testing.T) {
	intent := Event{Symbol: "BTC"}.Intent()

	require.Equal(t, schema.SideBuy, intent.Side)
	require.Equal(t, schema.OrderKindMarket, intent.Kind)
	require.Equal(t, 1.0, intent.Quantity)
	require.Equal(t, 0.5, intent.QueuePos)
	require.Equal(t, schema.TIFGoodTillCancel, intent.TIF)
	require.NoError(t, intent.Validate())
}

func TestEventIntentExplicitFields(t *testing.T) {
	intent := Event{
		Side:     -1,
		Type:     "limit",
		Qty:      3,
		Limit:    ptr(99.5),
		QueuePos: ptr(0.1),
	}.Intent()

	require.Equal(t, schema.SideSell, intent.Side)
	require.Equal(t, schema.OrderKindLimit, intent.Kind)
	require.Equal(t, 3.0, intent.Quantity)
	require.Equal(t, 99.5, *intent.LimitPrice)
	require.Equal(t, 0.1, intent.QueuePos)
}

func TestEventSnapshotNormalization(t *testing.T) {
	snap := Event{TS: 1_700_000_000_000, Last: 100}.Snapshot()

	require.Equal(t, 100.0, snap.Bid)
	require.Equal(t, 100.0, snap.Ask)
	require.Equal(t, 100.0, snap.Mark)
	require.Equal(t, 1.0, snap.Volume)
	require.Equal(t, 2023, snap.TS.Year())
}

func TestLoadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	payload := []Event{
		{TS: 1000, Symbol: "BTC", ID: 1, Last: 100, Bid: 99, Ask: 101},
		{TS: 2000, Symbol: "BTC", ID: 2, Side: -1, Type: "limit", Limit: ptr(98), Last: 100, Bid: 99, Ask: 101},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	events, err := LoadEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "limit", events[1].Type)
	require.Equal(t, 98.0, *events[1].Limit)
}

func TestLoadEventsMissingFile(t *testing.T) {
	_, err := LoadEvents(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadEventsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadEvents(path)
	require.Error(t, err)
}

func runnerSettings(t *testing.T) config.Settings {
	t.Helper()
	cfg := config.Default()
	cfg.Run.RunID = "test-run"
	cfg.Batch.Backend = "none"
	cfg.Batch.BatchSize = 2
	cfg.Batch.QueueMaxBatches = 16
	cfg.Replay.ArtifactsDir = t.TempDir()
	return cfg
}

func TestRunSymmetricStreams(t *testing.T) {
	cfg := runnerSettings(t)
	runner, err := NewRunner(context.Background(), cfg)
	require.NoError(t, err)

	events := []Event{
		{TS: 1000, Symbol: "BTC", ID: 1, Last: 100, Bid: 99, Ask: 101},
		{TS: 2000, Symbol: "BTC", ID: 2, Last: 100, Bid: 99, Ask: 101},
	}
	streamA := append([]Event(nil), events...)
	streamB := append([]Event(nil), events...)

	report, err := runner.Run(context.Background(), streamA, streamB)
	require.NoError(t, err)

	// events/sec is wall-clock dependent; every other stat must match exactly.
	require.Equal(t, report.A.Events, report.B.Events)
	require.Equal(t, report.A.Fills, report.B.Fills)
	require.Equal(t, report.A.Partials, report.B.Partials)
	require.Equal(t, report.A.FillRate, report.B.FillRate)
	require.Equal(t, report.A.SlipCost, report.B.SlipCost)
	require.Equal(t, 2, report.A.Events)
	require.Equal(t, 2, report.A.Fills)
	require.Equal(t, 1.0, report.A.FillRate)
	require.Zero(t, report.Writer.DroppedBatches)
	require.Positive(t, report.Writer.SubmittedBatches)

	snapshot := filepath.Join(cfg.Replay.ArtifactsDir, "test-run_config.json")
	_, statErr := os.Stat(snapshot)
	require.NoError(t, statErr)
}

func TestRunCountsRestingOrders(t *testing.T) {
	cfg := runnerSettings(t)
	runner, err := NewRunner(context.Background(), cfg)
	require.NoError(t, err)

	// A buy limit far below the ask rests instead of filling.
	resting := []Event{
		{TS: 1000, Symbol: "BTC", ID: 1, Type: "limit", Limit: ptr(50), Last: 100, Bid: 99, Ask: 101},
	}
	report, err := runner.Run(context.Background(), resting, nil)
	require.NoError(t, err)

	require.Equal(t, 1, report.A.Events)
	require.Zero(t, report.A.Fills)
	require.Zero(t, report.A.FillRate)
	require.Zero(t, report.B.Events)
}

func TestRunPacedReplay(t *testing.T) {
	cfg := runnerSettings(t)
	cfg.Replay.MaxEventsPerSec = 10_000
	runner, err := NewRunner(context.Background(), cfg)
	require.NoError(t, err)

	events := []Event{
		{TS: 1000, Symbol: "BTC", ID: 1, Last: 100, Bid: 99, Ask: 101},
		{TS: 2000, Symbol: "BTC", ID: 2, Last: 100, Bid: 99, Ask: 101},
	}
	report, err := runner.Run(context.Background(), events, nil)
	require.NoError(t, err)
	require.Equal(t, 2, report.A.Events)
}

func TestRunCancelledContext(t *testing.T) {
	cfg := runnerSettings(t)
	// A sub-1 rate forces the limiter to block so cancellation surfaces.
	cfg.Replay.MaxEventsPerSec = 0.001
	runner, err := NewRunner(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := []Event{
		{TS: 1000, Symbol: "BTC", ID: 1, Last: 100, Bid: 99, Ask: 101},
		{TS: 2000, Symbol: "BTC", ID: 2, Last: 100, Bid: 99, Ask: 101},
	}
	_, err = runner.Run(ctx, events, nil)
	require.Error(t, err)
}

func TestWriteConfigSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Run.RunID = "snap"

	path, err := WriteConfigSnapshot(dir, cfg)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "snap_config.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded config.Settings
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, cfg.Fill.Mode, decoded.Fill.Mode)
	require.Equal(t, "snap", decoded.Run.RunID)
}

func TestReportRender(t *testing.T) {
	report := Report{
		RunID: "r1",
		A:     StreamResult{Events: 2, Fills: 2, FillRate: 1},
		Writer: persistence.MetricsSnapshot{
			SubmittedBatches: 1,
		},
	}
	raw, err := report.Render()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"run_id": "r1"`)
	require.Contains(t, string(raw), `"repo_metrics"`)
}
