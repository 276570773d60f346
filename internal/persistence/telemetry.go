package persistence

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ObserveWriterMetrics registers observable gauges that report the writer's
// advisory counters. Gauges emit submitted, dropped, retried batch counts and
// the latest flush latency.
func ObserveWriterMetrics(w *Writer, runID string) {
	if w == nil {
		return
	}
	normalized := strings.TrimSpace(runID)
	if normalized == "" {
		normalized = "unidentified"
	}
	attrs := []attribute.KeyValue{
		attribute.String("run_id", normalized),
	}

	meter := otel.Meter("persistence.writer")
	if _, err := meter.Int64ObservableGauge("shadowbench_writer_batches_submitted",
		metric.WithDescription("Batches accepted onto the write queue"),
		metric.WithUnit("{batch}"),
		metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
			observer.Observe(w.Metrics().SubmittedBatches, metric.WithAttributes(attrs...))
			return nil
		}),
	); err != nil {
		return
	}
	if _, err := meter.Int64ObservableGauge("shadowbench_writer_batches_dropped",
		metric.WithDescription("Batches dropped because the queue was full"),
		metric.WithUnit("{batch}"),
		metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
			observer.Observe(w.Metrics().DroppedBatches, metric.WithAttributes(attrs...))
			return nil
		}),
	); err != nil {
		return
	}
	if _, err := meter.Int64ObservableGauge("shadowbench_writer_batch_retries",
		metric.WithDescription("Write attempts that failed and were retried"),
		metric.WithUnit("{attempt}"),
		metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
			observer.Observe(w.Metrics().RetryCount, metric.WithAttributes(attrs...))
			return nil
		}),
	); err != nil {
		return
	}
	if _, err := meter.Float64ObservableGauge("shadowbench_writer_flush_latency_ms",
		metric.WithDescription("Latency of the most recent backend flush"),
		metric.WithUnit("ms"),
		metric.WithFloat64Callback(func(_ context.Context, observer metric.Float64Observer) error {
			latency := float64(w.Metrics().WriteLatency.Microseconds()) / 1000.0
			observer.Observe(latency, metric.WithAttributes(attrs...))
			return nil
		}),
	); err != nil {
		return
	}
}
