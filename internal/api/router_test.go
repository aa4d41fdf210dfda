package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"KWatch/internal/cache"
	"KWatch/internal/collector"
	"KWatch/internal/model"
	"KWatch/internal/recorder"
	"KWatch/internal/scheduler"
	"KWatch/internal/watchlist"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallingBars(n int) []model.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		base := 200 - float64(i)
		bars[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Low: base - 1, High: base + 1, Close: base - 1}
	}
	return bars
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	dir := t.TempDir()

	f := &collector.MockFetcher{
		Bars: map[string][]model.PriceBar{"0056.TW": fallingBars(30)},
		Errs: map[string]error{"2002.TW": errors.New("timeout")},
	}
	col := collector.NewCollector(f, cache.NewMemory(time.Hour), nil, nil)
	wl, err := watchlist.Load(filepath.Join(dir, "watchlist.json"), []model.WatchItem{
		{Symbol: "0056.TW", Name: "元大高股息"},
		{Symbol: "2002.TW", Name: "中鋼"},
	})
	require.NoError(t, err)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "kwatch.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	sched := scheduler.NewScheduler(context.Background(), col, wl, nil, rec, nil)
	return NewRouter(sched, nil)
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_Readings(t *testing.T) {
	r := newTestRouter(t)

	resp := do(t, r, http.MethodGet, "/api/readings")
	require.Equal(t, http.StatusOK, resp.Code)

	var readings []model.Reading
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &readings))
	require.Len(t, readings, 2)
	assert.Equal(t, model.SignalBuy, readings[0].Signal)
	assert.Less(t, readings[0].K, 20.0)
	assert.False(t, readings[1].Available)
	assert.NotEmpty(t, readings[1].Err)
}

func TestRouter_SingleReading(t *testing.T) {
	r := newTestRouter(t)

	resp := do(t, r, http.MethodGet, "/api/readings/0056.tw")
	require.Equal(t, http.StatusOK, resp.Code)
	var reading model.Reading
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reading))
	assert.Equal(t, "0056.TW", reading.Symbol)
	assert.Equal(t, "元大高股息", reading.Name)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/readings/AAPL").Code)
}

func TestRouter_RefreshAndHistory(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodGet, "/api/refresh").Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/refresh").Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/refresh").Code)

	resp := do(t, r, http.MethodGet, "/api/history/0056.TW?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	var hist []model.Reading
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &hist))
	assert.Len(t, hist, 1)

	empty := do(t, r, http.MethodGet, "/api/history/NONE")
	assert.Equal(t, "[]", strings.TrimSpace(empty.Body.String()))

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/history/0056.TW?limit=abc").Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	health := do(t, r, http.MethodGet, "/healthz")
	assert.Equal(t, "ok", health.Body.String())

	do(t, r, http.MethodGet, "/api/readings")
	metrics := do(t, r, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `kwatch_k_value{symbol="0056.TW"}`)
	assert.Contains(t, metrics.Body.String(), `kwatch_unavailable_total{symbol="2002.TW"} 1`)
}
