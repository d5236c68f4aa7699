package spread

import "errors"

var (
	// ErrInsufficientData is returned when alignment or the rolling window leaves nothing to score.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidParameter is returned when a window, threshold or conversion constant is unusable.
	ErrInvalidParameter = errors.New("invalid parameter")
)
