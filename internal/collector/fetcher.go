package collector

import (
	"context"

	"KWatch/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
// Bars are returned ascending by date and cover roughly the last days calendar days.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	Name() string
}
