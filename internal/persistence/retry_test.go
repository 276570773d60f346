package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/shadowbench/internal/schema"
)

func TestRetryingSinkSucceedsFirstAttempt(t *testing.T) {
	backend := &fakeBackend{}
	metrics := new(Metrics)
	sink := newRetryingSink(backend, metrics)
	sink.sleep = func(time.Duration) { t.Fatal("no sleep expected on success") }

	err := sink.Write(context.Background(), "market_signals", []schema.MetricRow{row("r", "t", "s", "m", 1)})
	require.NoError(t, err)
	require.Equal(t, 1, backend.attemptCount())
	require.Equal(t, int64(0), metrics.Snapshot().RetryCount)
}

func TestRetryingSinkRecoversAfterTransientFailures(t *testing.T) {
	backend := &fakeBackend{failFirst: 2}
	metrics := new(Metrics)
	sink := newRetryingSink(backend, metrics)

	var slept []time.Duration
	sink.sleep = func(d time.Duration) { slept = append(slept, d) }

	err := sink.Write(context.Background(), "market_signals", []schema.MetricRow{row("r", "t", "s", "m", 1)})
	require.NoError(t, err)
	require.Equal(t, 3, backend.attemptCount())
	require.Equal(t, int64(2), metrics.Snapshot().RetryCount)
	require.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, slept)
}

func TestRetryingSinkExhaustsBudget(t *testing.T) {
	backend := &fakeBackend{failAlways: true}
	metrics := new(Metrics)
	sink := newRetryingSink(backend, metrics)

	var slept []time.Duration
	sink.sleep = func(d time.Duration) { slept = append(slept, d) }

	err := sink.Write(context.Background(), "market_signals", []schema.MetricRow{row("r", "t", "s", "m", 1)})
	require.Error(t, err)
	require.Equal(t, 5, backend.attemptCount(), "exactly 5 attempts total")
	require.GreaterOrEqual(t, metrics.Snapshot().RetryCount, int64(4))
	require.Equal(t, []time.Duration{
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}, slept, "capped exponential schedule")
}
