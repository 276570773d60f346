package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/observability"
	"github.com/quantfold/shadowbench/internal/schema"
)

// Writer owns a bounded queue of row batches and a single background worker
// that accumulates, deduplicates, and durably writes them. Submission never
// blocks the caller: a full queue sheds the batch and counts it.
type Writer struct {
	cfg     Config
	backend Backend
	sink    *retryingSink
	metrics *Metrics

	queue  chan []schema.MetricRow
	stopCh chan struct{}
	done   chan struct{}

	started   atomic.Bool
	stopped   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWriter constructs a Writer and connects the configured backend.
func NewWriter(ctx context.Context, cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newWriterWithBackend(cfg, backend), nil
}

func newWriterWithBackend(cfg Config, backend Backend) *Writer {
	cfg = cfg.withDefaults()
	metrics := new(Metrics)
	return &Writer{
		cfg:     cfg,
		backend: backend,
		sink:    newRetryingSink(backend, metrics),
		metrics: metrics,
		queue:   make(chan []schema.MetricRow, cfg.QueueMaxBatches),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the background worker. Subsequent calls are no-ops.
func (w *Writer) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.run()
	})
}

// Submit validates the batch and enqueues it without blocking. A batch whose
// rows all carry the four primary-key fields either lands on the queue
// (submitted counter) or is shed because the queue is full (dropped counter);
// neither case is an error. Validation failures are returned synchronously
// and enqueue nothing. The Writer takes ownership of rows.
func (w *Writer) Submit(rows []schema.MetricRow) error {
	if w.stopped.Load() {
		return errs.New("persistence", errs.CodeUnavailable,
			errs.WithMessage("writer already stopped"))
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	select {
	case w.queue <- rows:
		w.metrics.recordSubmitted()
	default:
		w.metrics.recordDropped()
	}
	return nil
}

// Metrics returns a snapshot of the writer counters.
func (w *Writer) Metrics() MetricsSnapshot {
	return w.metrics.Snapshot()
}

// Stop signals the worker, waits for it within a bounded join, and closes the
// backend. It is idempotent and never returns an error: shutdown-path
// failures are logged so shutdown always completes.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		close(w.stopCh)
		if w.started.Load() {
			timeout := w.cfg.FlushInterval + time.Second
			if timeout < 2*time.Second {
				timeout = 2 * time.Second
			}
			select {
			case <-w.done:
			case <-time.After(timeout):
				observability.Log().Error("writer worker did not exit before join timeout",
					observability.Field{Key: "timeout", Value: timeout})
			}
		}
		if err := w.backend.Close(); err != nil {
			observability.Log().Error("backend close failed",
				observability.Field{Key: "error", Value: err.Error()})
		}
	})
}

// run is the single consumer of the queue and sole owner of the accumulation
// buffer and the backend connection.
func (w *Writer) run() {
	defer close(w.done)

	buf := make([]schema.MetricRow, 0, w.cfg.BatchSize)
	last := time.Now()
	timer := time.NewTimer(w.cfg.FlushInterval)
	defer timer.Stop()

	for {
		remaining := w.cfg.FlushInterval - time.Since(last)
		if remaining < 0 {
			remaining = 0
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(remaining)

		select {
		case <-w.stopCh:
			buf = w.drain(buf)
			if len(buf) > 0 {
				w.flush(buf)
			}
			return
		case rows := <-w.queue:
			buf = append(buf, rows...)
			if len(buf) >= w.cfg.BatchSize {
				w.flush(buf)
				buf = buf[:0]
				last = time.Now()
			}
		case <-timer.C:
			if len(buf) > 0 {
				w.flush(buf)
				buf = buf[:0]
			}
			last = time.Now()
		}
	}
}

// drain performs one non-blocking pass over the queue so batches accepted
// before Stop are not lost.
func (w *Writer) drain(buf []schema.MetricRow) []schema.MetricRow {
	for {
		select {
		case rows := <-w.queue:
			buf = append(buf, rows...)
		default:
			return buf
		}
	}
}

// flush deduplicates and writes one accumulated batch. Exhausted retries drop
// the batch permanently; the failure is logged, never propagated.
func (w *Writer) flush(rows []schema.MetricRow) {
	if len(rows) == 0 {
		return
	}
	deduped := DedupeRows(rows)
	start := time.Now()
	err := w.sink.Write(context.Background(), w.cfg.Table, deduped)
	w.metrics.recordWriteLatency(time.Since(start))
	if err != nil {
		observability.Log().Error("dropping batch after exhausted retries",
			observability.Field{Key: "rows", Value: len(deduped)},
			observability.Field{Key: "attempts", Value: writeAttempts},
			observability.Field{Key: "error", Value: err.Error()})
	}
}
