package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"KWatch/internal/model"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
)

// PolygonFetcher implements Fetcher with Polygon.io daily aggregates.
type PolygonFetcher struct {
	client *polygon.Client
	now    func() time.Time
}

// NewPolygonFetcher creates a fetcher authenticated with apiKey.
func NewPolygonFetcher(apiKey string) (*PolygonFetcher, error) {
	if apiKey == "" {
		return nil, errors.New("polygon: api key is required")
	}
	return &PolygonFetcher{
		client: polygon.New(apiKey),
		now:    time.Now,
	}, nil
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if days <= 0 {
		return nil, fmt.Errorf("polygon: days must be positive, got %d", days)
	}
	end := f.now()
	start := end.AddDate(0, 0, -days)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(5000)

	iter := f.client.ListAggs(ctx, params)
	var bars []model.PriceBar
	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, model.PriceBar{
			Date:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggregates %s: %w", symbol, err)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
