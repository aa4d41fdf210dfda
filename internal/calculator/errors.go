package calculator

import "errors"

// Reasons a K value is unavailable. Callers outside this package only see
// available or unavailable; these exist for diagnostics.
var (
	ErrEmptySeries      = errors.New("empty price series")
	ErrInsufficientData = errors.New("insufficient price history")
	ErrUpstreamFailure  = errors.New("upstream data failure")
)
