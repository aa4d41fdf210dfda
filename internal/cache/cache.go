package cache

import (
	"context"

	"KWatch/internal/model"
)

// Cache memoizes fetched price series per ticker. Implementations must be
// safe for concurrent use. A cache never changes what is computed from a
// series; it only saves a fetch.
type Cache interface {
	Get(ctx context.Context, symbol string) (model.PriceSeries, bool)
	Set(ctx context.Context, series model.PriceSeries)
	Clear(ctx context.Context) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (model.PriceSeries, bool) { return model.PriceSeries{}, false }
func (Nop) Set(context.Context, model.PriceSeries)                {}
func (Nop) Clear(context.Context) error                           { return nil }
