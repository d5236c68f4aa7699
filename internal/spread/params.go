package spread

import (
	"fmt"
	"math"
)

const (
	// DefaultWindow is the rolling window length in bars.
	DefaultWindow = 20
	// DefaultThreshold is the absolute z-score at which a bar is flagged.
	DefaultThreshold = 2.0
	// DefaultPenceDivisor converts a pence quote into pounds.
	DefaultPenceDivisor = 100.0
	// DefaultShareRatio is the number of ordinary shares behind one depositary receipt.
	DefaultShareRatio = 5
)

// Params is the immutable parameter bundle for one scoring run.
type Params struct {
	Window       int
	Threshold    float64
	PenceDivisor float64
	ShareRatio   int
}

// DefaultParams returns the standard window, threshold and conversion constants.
func DefaultParams() Params {
	return Params{
		Window:       DefaultWindow,
		Threshold:    DefaultThreshold,
		PenceDivisor: DefaultPenceDivisor,
		ShareRatio:   DefaultShareRatio,
	}
}

// Validate rejects parameters the scorer cannot work with.
func (p Params) Validate() error {
	if p.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidParameter, p.Window)
	}
	if math.IsNaN(p.Threshold) || math.IsInf(p.Threshold, 0) || p.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be a positive number, got %v", ErrInvalidParameter, p.Threshold)
	}
	if math.IsNaN(p.PenceDivisor) || math.IsInf(p.PenceDivisor, 0) || p.PenceDivisor <= 0 {
		return fmt.Errorf("%w: pence divisor must be a positive number, got %v", ErrInvalidParameter, p.PenceDivisor)
	}
	if p.ShareRatio <= 0 {
		return fmt.Errorf("%w: share ratio must be positive, got %d", ErrInvalidParameter, p.ShareRatio)
	}
	return nil
}

// Convert expresses a foreign minor-unit quote in domestic currency per depositary receipt.
func (p Params) Convert(closeForeign, fxRate float64) float64 {
	return (closeForeign / p.PenceDivisor) * fxRate * float64(p.ShareRatio)
}
