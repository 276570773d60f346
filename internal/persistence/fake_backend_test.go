package persistence

import (
	"context"
	"errors"
	"sync"

	"github.com/quantfold/shadowbench/internal/schema"
)

// fakeBackend records writes and can be told to fail the first n attempts
// (or all of them with failAlways).
type fakeBackend struct {
	mu         sync.Mutex
	writes     [][]schema.MetricRow
	attempts   int
	failFirst  int
	failAlways bool
	closes     int
}

func (f *fakeBackend) Write(_ context.Context, _ string, rows []schema.MetricRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failAlways || f.attempts <= f.failFirst {
		return errors.New("backend unavailable")
	}
	copied := make([]schema.MetricRow, len(rows))
	copy(copied, rows)
	f.writes = append(f.writes, copied)
	return nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeBackend) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeBackend) lastWrite() []schema.MetricRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}
