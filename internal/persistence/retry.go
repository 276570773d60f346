package persistence

import (
	"context"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/quantfold/shadowbench/errs"
	"github.com/quantfold/shadowbench/internal/schema"
)

// writeAttempts is the total retry budget per flush. Exhaustion drops the
// batch permanently; delivery is at-most-once-effort.
const writeAttempts = 5

// retryingSink wraps a backend write with capped exponential backoff
// (0.2s, 0.4s, 0.8s, 1.0s, 1.0s after successive failures).
type retryingSink struct {
	backend Backend
	metrics *Metrics
	sleep   func(time.Duration)
}

func newRetryingSink(backend Backend, metrics *Metrics) *retryingSink {
	return &retryingSink{backend: backend, metrics: metrics, sleep: time.Sleep}
}

// Write attempts the backend write up to writeAttempts times, incrementing
// the retry counter on every failure. The last error is returned once the
// budget is exhausted.
func (s *retryingSink) Write(ctx context.Context, table string, rows []schema.MetricRow) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = time.Second

	var lastErr error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		lastErr = s.backend.Write(ctx, table, rows)
		if lastErr == nil {
			return nil
		}
		s.metrics.recordRetry()
		s.sleep(bo.NextBackOff())
	}
	return errs.New("persistence", errs.CodeBackend,
		errs.WithMessage("write failed after "+strconv.Itoa(writeAttempts)+" attempts"),
		errs.WithCause(lastErr))
}
