package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Modertool999/arb-detection/internal/series"
	"github.com/Modertool999/arb-detection/internal/store"
)

// BarsPath is where the collector stores bars for symbol under dir.
func BarsPath(dir, symbol string) string {
	return filepath.Join(dir, symbol+".csv")
}

func (f *Feed) fetchCSV(symbol string) ([]series.Bar, error) {
	bars, err := store.ReadBarsFile(BarsPath(f.dataDir, symbol))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no file for %s in %s", ErrNoData, symbol, f.dataDir)
	}
	return bars, err
}
