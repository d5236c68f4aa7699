package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Modertool999/arb-detection/internal/features"
)

// FeaturesHeader lists the columns of a bar feature export.
var FeaturesHeader = []string{"Datetime", "Close", "Volume", "return", "ma_5", "ma_10", "volatility", "momentum"}

func WriteFeatures(w io.Writer, rows []features.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeaturesHeader); err != nil {
		return fmt.Errorf("write features header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			formatTime(r.Time),
			formatFloat(r.Close),
			formatFloat(r.Volume),
			formatFloat(r.Return),
			formatFloat(r.MA5),
			formatFloat(r.MA10),
			formatFloat(r.Volatility),
			formatFloat(r.Momentum),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write features row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFeaturesFile replaces path with a feature export.
func WriteFeaturesFile(path string, rows []features.Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFeatures(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
