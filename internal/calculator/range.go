package calculator

import (
	"errors"
	"math"

	"KWatch/internal/model"
)

// WindowRange scans the size bars ending at index end (inclusive) and returns
// the highest high and the lowest low.
func WindowRange(bars []model.PriceBar, end, size int) (high, low float64, err error) {
	if size <= 0 {
		return 0, 0, errors.New("window size must be positive")
	}
	if len(bars) == 0 {
		return 0, 0, ErrEmptySeries
	}
	if end < 0 || end >= len(bars) {
		return 0, 0, errors.New("window end out of range")
	}
	start := end - size + 1
	if start < 0 {
		return 0, 0, ErrInsufficientData
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i <= end; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// Position returns where price sits within [low, high] as a percentage.
// ok is false when the range has zero width.
func Position(price, high, low float64) (pct float64, ok bool) {
	if high == low {
		return 0, false
	}
	return (price - low) / (high - low) * 100, true
}
