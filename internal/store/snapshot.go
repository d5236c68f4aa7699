package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Modertool999/arb-detection/internal/spread"
)

// SnapshotHeader lists the columns of a scored-spread snapshot.
var SnapshotHeader = []string{
	"Datetime", "Close_US", "Close_UK", "FX", "Close_UK_GBP", "Close_UK_USD",
	"spread", "spread_mean", "spread_std", "z_score", "arb_signal",
}

func snapshotRow(rec spread.ScoredRecord, params spread.Params) []string {
	return []string{
		formatTime(rec.Time),
		formatFloat(rec.CloseDomestic),
		formatFloat(rec.CloseForeign),
		formatFloat(rec.FXRate),
		formatFloat(rec.CloseForeign / params.PenceDivisor),
		formatFloat(rec.CloseForeignConverted),
		formatFloat(rec.Spread),
		formatFloat(rec.RollingMean),
		formatFloat(rec.RollingStd),
		formatFloat(rec.ZScore),
		strconv.Itoa(rec.Signal),
	}
}

// WriteSnapshot writes the header and every record to w.
func WriteSnapshot(w io.Writer, records []spread.ScoredRecord, params spread.Params) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SnapshotHeader); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(snapshotRow(rec, params)); err != nil {
			return fmt.Errorf("write snapshot row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshotFile replaces path with a fresh snapshot.
func WriteSnapshotFile(path string, records []spread.ScoredRecord, params spread.Params) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, records, params); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CSVRecorder appends scored records to a snapshot file as they are produced.
type CSVRecorder struct {
	mu     sync.Mutex
	file   *os.File
	w      *csv.Writer
	params spread.Params
}

// NewCSVRecorder creates/opens the target file and writes the header when the file is new.
func NewCSVRecorder(path string, params spread.Params) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	r := &CSVRecorder{file: file, w: csv.NewWriter(file), params: params}
	if info.Size() == 0 {
		if err := r.w.Write(SnapshotHeader); err != nil {
			file.Close()
			return nil, err
		}
		r.w.Flush()
	}
	return r, nil
}

// Record writes a single scored record and flushes it to the file.
func (r *CSVRecorder) Record(rec spread.ScoredRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return os.ErrClosed
	}
	if err := r.w.Write(snapshotRow(rec, r.params)); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

// Close flushes and closes the file handle.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	r.w.Flush()
	err := r.file.Close()
	r.file = nil
	return err
}
