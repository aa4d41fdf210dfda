package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"KWatch/internal/model"
	"KWatch/internal/strategy"
)

// HelpText lists the chat commands.
const HelpText = "可用命令:\n" +
	"• /k 查看K值儀表板\n" +
	"• /refresh 更新最新數據\n" +
	"• /list 觀察名單\n" +
	"• /add 代號 [名稱]\n" +
	"• /remove 代號\n" +
	"• /history 代號"

// FormatReading formats one dashboard card.
func FormatReading(r *model.Reading) string {
	name := html.EscapeString(r.Name)
	if !r.Available {
		return fmt.Sprintf("❌ %s: 無法讀取數據\n", name)
	}
	action := strategy.Describe(r.Signal)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> <i>%s</i>\n", name, html.EscapeString(r.Symbol)))
	b.WriteString(fmt.Sprintf("現價: %.2f | K值 (9,3,3): <b>%.2f</b>\n", r.Price, r.K))
	b.WriteString(fmt.Sprintf("%s %s\n", action.Emoji, action.Label))
	return b.String()
}

// FormatDashboard formats the readings of the whole watchlist into a Telegram message.
func FormatDashboard(readings []model.Reading, source string, at time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>樂活投資 K值偵測</b> | %s\n", at.Format("2006-01-02 15:04")))
	b.WriteString("K&lt;20 買，K&gt;80 賣\n\n")

	if len(readings) == 0 {
		b.WriteString("觀察名單是空的\n")
	}
	for i := range readings {
		b.WriteString(FormatReading(&readings[i]))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("數據來源: %s | 注意: 盤中報價可能延遲 20 分鐘", sourceLabel(source)))
	return b.String()
}

func sourceLabel(source string) string {
	switch source {
	case "yahoo":
		return "Yahoo Finance"
	case "polygon":
		return "Polygon.io"
	default:
		return source
	}
}

// FormatHistory formats the recorded readings of one symbol, newest first.
func FormatHistory(symbol string, readings []model.Reading) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕘 <b>%s 歷史紀錄</b>\n\n", html.EscapeString(symbol)))
	if len(readings) == 0 {
		b.WriteString("尚無紀錄")
		return b.String()
	}
	for _, r := range readings {
		if !r.Available {
			b.WriteString(fmt.Sprintf("%s  ❌ 無法讀取\n", r.At.Format("01-02 15:04")))
			continue
		}
		b.WriteString(fmt.Sprintf("%s  %.2f  K=%.2f %s\n",
			r.At.Format("01-02 15:04"), r.Price, r.K, strategy.Describe(r.Signal).Emoji))
	}
	return b.String()
}

// FormatWatchlist lists the watched tickers.
func FormatWatchlist(items []model.WatchItem) string {
	var b strings.Builder
	b.WriteString("📋 <b>觀察名單</b>\n\n")
	if len(items) == 0 {
		b.WriteString("(空)")
		return b.String()
	}
	for _, it := range items {
		b.WriteString(fmt.Sprintf("• %s (%s)\n", html.EscapeString(it.DisplayName()), html.EscapeString(it.Symbol)))
	}
	return b.String()
}
