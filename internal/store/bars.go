package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Modertool999/arb-detection/internal/series"
)

// barsMetadataRows is the number of header lines preceding bar data in a collector file.
const barsMetadataRows = 3

// WriteBars writes bars in the collector layout: a price header, a ticker row and a Datetime
// row, followed by Datetime,Close,High,Low,Open,Volume records.
func WriteBars(w io.Writer, symbol string, bars []series.Bar) error {
	cw := csv.NewWriter(w)
	header := [][]string{
		{"Price", "Close", "High", "Low", "Open", "Volume"},
		{"Ticker", symbol, symbol, symbol, symbol, symbol},
		{"Datetime", "", "", "", "", ""},
	}
	if err := cw.WriteAll(header); err != nil {
		return fmt.Errorf("write bars header: %w", err)
	}
	for _, b := range bars {
		rec := []string{
			formatTime(b.Time),
			formatFloat(b.Close),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Open),
			formatFloat(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write bar: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadBars parses the collector layout written by WriteBars. Empty prices become NaN.
func ReadBars(r io.Reader) ([]series.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []series.Bar
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: %w", err)
		}
		if line < barsMetadataRows {
			continue
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("read bars: line %d has %d fields, want 6", line+1, len(rec))
		}

		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line+1, err)
		}
		var vals [5]float64
		for i := range vals {
			if vals[i], err = parseFloat(rec[i+1]); err != nil {
				return nil, fmt.Errorf("read bars: line %d: %w", line+1, err)
			}
		}
		bars = append(bars, series.Bar{
			Time:   ts,
			Close:  vals[0],
			High:   vals[1],
			Low:    vals[2],
			Open:   vals[3],
			Volume: vals[4],
		})
	}
	return bars, nil
}

// WriteBarsFile writes bars to path, creating parent directories.
func WriteBarsFile(path, symbol string, bars []series.Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteBars(f, symbol, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadBarsFile reads a collector file. A missing file surfaces os.ErrNotExist.
func ReadBarsFile(path string) ([]series.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBars(f)
}
