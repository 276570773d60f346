package persistence

import (
	"sync/atomic"
	"time"
)

// Metrics accumulates advisory counters for one Writer instance. Counters are
// incremented from both the submitting caller and the background worker;
// reads are snapshots and are never used for correctness decisions.
type Metrics struct {
	submitted    atomic.Int64
	dropped      atomic.Int64
	retries      atomic.Int64
	writeLatency atomic.Int64 // nanoseconds of the last flush attempt sequence
}

// MetricsSnapshot is a point-in-time copy of the writer counters.
type MetricsSnapshot struct {
	SubmittedBatches int64         `json:"submitted_batches"`
	DroppedBatches   int64         `json:"dropped_batches"`
	RetryCount       int64         `json:"batch_retry_count"`
	WriteLatency     time.Duration `json:"write_latency"`
}

func (m *Metrics) recordSubmitted() { m.submitted.Add(1) }
func (m *Metrics) recordDropped()   { m.dropped.Add(1) }
func (m *Metrics) recordRetry()     { m.retries.Add(1) }

func (m *Metrics) recordWriteLatency(d time.Duration) {
	m.writeLatency.Store(int64(d))
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		SubmittedBatches: m.submitted.Load(),
		DroppedBatches:   m.dropped.Load(),
		RetryCount:       m.retries.Load(),
		WriteLatency:     time.Duration(m.writeLatency.Load()),
	}
}
