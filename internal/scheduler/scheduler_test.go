package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"KWatch/internal/cache"
	"KWatch/internal/collector"
	"KWatch/internal/model"
	"KWatch/internal/notifier"
	"KWatch/internal/recorder"
	"KWatch/internal/watchlist"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) Enabled() bool { return true }

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func risingBars(n int) []model.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		base := 100 + float64(i)
		bars[i] = model.PriceBar{Date: start.AddDate(0, 0, i), Low: base - 1, High: base + 1, Close: base + 1}
	}
	return bars
}

func newTestScheduler(t *testing.T) (*Scheduler, *collector.MockFetcher, *fakeNotifier, *recorder.SQLiteRecorder) {
	t.Helper()
	dir := t.TempDir()

	f := &collector.MockFetcher{
		Bars: map[string][]model.PriceBar{"0050.TW": risingBars(30)},
		Errs: map[string]error{"2002.TW": errors.New("timeout")},
	}
	col := collector.NewCollector(f, cache.NewMemory(time.Hour), nil, nil)

	wl, err := watchlist.Load(filepath.Join(dir, "watchlist.json"), []model.WatchItem{
		{Symbol: "0050.TW", Name: "元大台灣50"},
		{Symbol: "2002.TW", Name: "中鋼"},
	})
	require.NoError(t, err)

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "kwatch.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	n := &fakeNotifier{}
	return NewScheduler(context.Background(), col, wl, n, rec, nil), f, n, rec
}

func TestScheduler_RefreshRecordsRun(t *testing.T) {
	s, f, _, rec := newTestScheduler(t)

	readings := s.Refresh(context.Background(), TriggerAPI)
	require.Len(t, readings, 2)
	assert.True(t, readings[0].Available)
	assert.Equal(t, model.SignalSell, readings[0].Signal)
	assert.False(t, readings[1].Available, "failed ticker reported individually")

	s.Refresh(context.Background(), TriggerAPI)
	assert.Equal(t, 4, f.Calls(), "refresh bypasses the cache")

	hist, err := rec.History("0050.TW", 10)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestScheduler_RunNowSendsDashboard(t *testing.T) {
	s, _, n, _ := newTestScheduler(t)
	s.RunNow()

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "元大台灣50")
	assert.Contains(t, n.sent[0], "🔴 過熱訊號 (賣)")
	assert.Contains(t, n.sent[0], "❌ 中鋼: 無法讀取數據")
}

func TestScheduler_HandleCommand(t *testing.T) {
	s, f, _, _ := newTestScheduler(t)
	ctx := context.Background()
	f.SetBars("AAPL", risingBars(30))

	assert.Contains(t, s.HandleCommand(ctx, "/k"), "K值 (9,3,3)")
	assert.Contains(t, s.HandleCommand(ctx, "/K@KWatchBot"), "K值 (9,3,3)")
	assert.Contains(t, s.HandleCommand(ctx, "/list"), "元大台灣50 (0050.TW)")

	reply := s.HandleCommand(ctx, "/add aapl Apple Inc")
	assert.Contains(t, reply, "已加入")
	assert.Contains(t, reply, "Apple Inc")
	assert.Contains(t, s.HandleCommand(ctx, "/add AAPL"), "已在觀察名單中")
	assert.Contains(t, s.HandleCommand(ctx, "/add"), "用法")

	assert.Contains(t, s.HandleCommand(ctx, "/remove 2002.tw"), "已移除 2002.TW")
	assert.Contains(t, s.HandleCommand(ctx, "/remove 2002.TW"), "不在觀察名單中")

	items := s.Watchlist.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "AAPL", items[1].Symbol)

	s.HandleCommand(ctx, "/refresh")
	assert.Contains(t, s.HandleCommand(ctx, "/history 0050.tw 5"), "0050.TW 歷史紀錄")
	assert.Contains(t, s.HandleCommand(ctx, "/history NONE"), "尚無紀錄")

	assert.Equal(t, notifier.HelpText, s.HandleCommand(ctx, "hello"))
	assert.Equal(t, notifier.HelpText, s.HandleCommand(ctx, "   "))
}

func TestScheduler_RemoveDropsKGauge(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	ctx := context.Background()

	s.Refresh(ctx, TriggerAPI)
	assert.Equal(t, 1, testutil.CollectAndCount(s.Metrics.KValue))

	s.HandleCommand(ctx, "/remove 0050.tw")
	assert.Equal(t, 0, testutil.CollectAndCount(s.Metrics.KValue))
}

func TestScheduler_StopWaitsForBackgroundTasks(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	s.Start()

	release := make(chan struct{})
	var finished atomic.Bool
	s.Go(func() {
		<-release
		finished.Store(true)
	})

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a task was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the task finished")
	}
	assert.True(t, finished.Load())
}

func TestScheduler_Register(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	require.NoError(t, s.Register("0 30 14 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))

	s.Start()
	s.Stop()
}
