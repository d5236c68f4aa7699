package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Modertool999/arb-detection/internal/backtest"
)

type journalEntry struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Params      RunParams `json:"params"`
	TotalReturn float64   `json:"total_return"`
	WinRate     float64   `json:"win_rate"`
	SharpeRatio *float64  `json:"sharpe_ratio"`
	TotalTrades int       `json:"total_trades"`
	MaxDrawdown float64   `json:"max_drawdown"`
}

// Journal appends run summaries as JSON lines. Trades are not journaled.
type Journal struct {
	mu   sync.Mutex
	path string
	file *os.File
	enc  *json.Encoder
}

// NewJournal creates/opens the target file for appending.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{path: path, file: file, enc: json.NewEncoder(file)}, nil
}

func (j *Journal) SaveRun(_ context.Context, run Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return os.ErrClosed
	}
	return j.enc.Encode(journalEntry{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt,
		Params:      run.Params,
		TotalReturn: run.Stats.TotalReturn,
		WinRate:     run.Stats.WinRate,
		SharpeRatio: run.Stats.SharpeRatio,
		TotalTrades: run.Stats.TotalTrades,
		MaxDrawdown: run.Stats.MaxDrawdown,
	})
}

// RecentRuns rereads the file and returns up to limit summaries, newest first.
func (j *Journal) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var runs []Run
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e journalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("journal %s line %d: %w", j.path, line, err)
		}
		runs = append(runs, Run{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			Params:    e.Params,
			Stats: backtest.Statistics{
				TotalReturn: e.TotalReturn,
				WinRate:     e.WinRate,
				SharpeRatio: e.SharpeRatio,
				TotalTrades: e.TotalTrades,
				MaxDrawdown: e.MaxDrawdown,
			},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(runs) {
		limit = len(runs)
	}
	out := make([]Run, 0, limit)
	for i := len(runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, runs[i])
	}
	return out, nil
}

// Close closes the file handle. Further saves fail with os.ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
