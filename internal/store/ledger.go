package store

import (
	"context"
	"sync"
)

// Ledger keeps the most recent runs in memory, newest last.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	runs     []Run
}

// NewLedger creates an empty ledger holding at most capacity runs.
func NewLedger(capacity int) *Ledger {
	if capacity < 1 {
		capacity = 1
	}
	return &Ledger{capacity: capacity, runs: make([]Run, 0, capacity)}
}

// SaveRun appends a run, evicting the oldest when full.
func (l *Ledger) SaveRun(_ context.Context, run Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.runs) == l.capacity {
		copy(l.runs, l.runs[1:])
		l.runs = l.runs[:len(l.runs)-1]
	}
	l.runs = append(l.runs, run)
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (l *Ledger) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.runs) {
		limit = len(l.runs)
	}
	out := make([]Run, 0, limit)
	for i := len(l.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.runs[i])
	}
	return out, nil
}
