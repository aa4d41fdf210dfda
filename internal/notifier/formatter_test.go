package notifier

import (
	"testing"
	"time"

	"KWatch/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestFormatDashboard(t *testing.T) {
	readings := []model.Reading{
		{Symbol: "0050.TW", Name: "元大台灣50", Price: 150.456, K: 66.6666, Signal: model.SignalHold, Available: true},
		{Symbol: "00646.TW", Name: "元大S&P500", Price: 40, K: 85, Signal: model.SignalSell, Available: true},
		{Symbol: "2002.TW", Name: "中鋼", Err: "upstream data failure"},
	}
	msg := FormatDashboard(readings, "yahoo", time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC))

	assert.Contains(t, msg, "2024-05-01 14:30")
	assert.Contains(t, msg, "現價: 150.46 | K值 (9,3,3): <b>66.67</b>")
	assert.Contains(t, msg, "🟡 觀望持有")
	assert.Contains(t, msg, "🔴 過熱訊號 (賣)")
	assert.Contains(t, msg, "元大S&amp;P500", "names are HTML-escaped")
	assert.Contains(t, msg, "❌ 中鋼: 無法讀取數據")
	assert.Contains(t, msg, "數據來源: Yahoo Finance")
}

func TestFormatDashboard_Empty(t *testing.T) {
	msg := FormatDashboard(nil, "polygon", time.Now())
	assert.Contains(t, msg, "觀察名單是空的")
	assert.Contains(t, msg, "Polygon.io")
}

func TestFormatHistory(t *testing.T) {
	at := time.Date(2024, 5, 2, 14, 30, 0, 0, time.Local)
	msg := FormatHistory("0050.TW", []model.Reading{
		{Price: 151, K: 15.5, Signal: model.SignalBuy, Available: true, At: at},
		{At: at.Add(-24 * time.Hour)},
	})
	assert.Contains(t, msg, "05-02 14:30  151.00  K=15.50 🟢")
	assert.Contains(t, msg, "05-01 14:30  ❌ 無法讀取")

	assert.Contains(t, FormatHistory("X", nil), "尚無紀錄")
}

func TestFormatWatchlist(t *testing.T) {
	msg := FormatWatchlist([]model.WatchItem{{Symbol: "0050.TW", Name: "元大台灣50"}, {Symbol: "AAPL"}})
	assert.Contains(t, msg, "• 元大台灣50 (0050.TW)")
	assert.Contains(t, msg, "• AAPL (AAPL)")
}
