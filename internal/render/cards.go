package render

import (
	"fmt"
	"strings"

	"KWatch/internal/model"
	"KWatch/internal/strategy"

	"github.com/charmbracelet/lipgloss"
)

var signalColors = map[string]lipgloss.Color{
	"green":  lipgloss.Color("#2e7d32"),
	"red":    lipgloss.Color("#c62828"),
	"orange": lipgloss.Color("#ef6c00"),
}

// Style definitions.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true)
	MutedStyle = lipgloss.NewStyle().Faint(true)
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c62828"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(44)
)

// Card renders one reading as a bordered terminal card.
func Card(r model.Reading) string {
	if !r.Available {
		return ErrorStyle.Render(fmt.Sprintf("❌ %s: 無法讀取數據", r.Name))
	}
	action := strategy.Describe(r.Signal)
	color := signalColors[action.Color]
	accent := lipgloss.NewStyle().Bold(true).Foreground(color)

	header := TitleStyle.Render(r.Name) + " " + MutedStyle.Render(r.Symbol)
	left := MutedStyle.Render("現價") + "\n" + TitleStyle.Render(fmt.Sprintf("%.2f", r.Price))
	right := lipgloss.NewStyle().Align(lipgloss.Right).Render(
		MutedStyle.Render("K值 (9,3,3)") + "\n" + accent.Render(fmt.Sprintf("%.2f", r.K)))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(20).Render(left),
		lipgloss.NewStyle().Width(20).Align(lipgloss.Right).Render(right))

	return cardStyle.BorderForeground(color).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, body, accent.Render(action.Emoji+" "+action.Label)))
}

// Dashboard renders all readings followed by the data source caption.
func Dashboard(readings []model.Reading, source string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("📈 樂活投資 K值偵測"))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("K<20 買，K>80 賣"))
	b.WriteString("\n\n")
	for _, r := range readings {
		b.WriteString(Card(r))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render(fmt.Sprintf("數據來源: %s | 注意: 盤中報價可能延遲 20 分鐘", source)))
	b.WriteString("\n")
	return b.String()
}
