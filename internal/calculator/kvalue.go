package calculator

import (
	"fmt"
	"math"

	"KWatch/internal/model"

	"github.com/moznion/go-optional"
)

const (
	// KWindow is the RSV look-back in bars, the 9 of KD(9,3,3).
	KWindow = 9
	// KSeed is the value of K before any RSV is folded in.
	KSeed = 50.0
)

// RSV returns the raw stochastic value at index i over the KWindow bars ending there.
// ok is false before the first full window and when the window's high equals its low.
func RSV(bars []model.PriceBar, i int) (rsv float64, ok bool) {
	high, low, err := WindowRange(bars, i, KWindow)
	if err != nil {
		return 0, false
	}
	return Position(bars[i].Close, high, low)
}

// Smooth folds one RSV value into k with weight 1/3 on the new observation.
func Smooth(k, rsv float64) float64 {
	return (2.0/3.0)*k + (1.0/3.0)*rsv
}

// Diagnose computes the latest close and smoothed K of an ascending daily series.
// K starts at KSeed and every defined RSV is folded in date order; degenerate
// windows are skipped and leave K unchanged.
func Diagnose(bars []model.PriceBar) (model.KResult, error) {
	if len(bars) == 0 {
		return model.KResult{}, ErrEmptySeries
	}
	for i, b := range bars {
		if !finite(b.High) || !finite(b.Low) || !finite(b.Close) {
			return model.KResult{}, fmt.Errorf("%w: bar %d has a non-finite price", ErrUpstreamFailure, i)
		}
	}
	if len(bars) < KWindow {
		return model.KResult{}, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, len(bars), KWindow)
	}

	k := KSeed
	steps := 0
	for i := KWindow - 1; i < len(bars); i++ {
		rsv, ok := RSV(bars, i)
		if !ok {
			continue
		}
		k = Smooth(k, rsv)
		steps++
	}

	return model.KResult{
		Price: bars[len(bars)-1].Close,
		K:     k,
		Steps: steps,
	}, nil
}

// ComputeK is Diagnose with every failure collapsed into an empty option.
func ComputeK(bars []model.PriceBar) optional.Option[model.KResult] {
	res, err := Diagnose(bars)
	if err != nil {
		return optional.None[model.KResult]()
	}
	return optional.Some(res)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
