package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TerminalOptions tunes RenderTerminal.
type TerminalOptions struct {
	BarWidth int  // widest bar in cells
	NoColor  bool // plain text, e.g. when piping
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f2937"))

	insightStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#fbbf24")).
			Foreground(lipgloss.Color("#92400e")).
			Padding(0, 1)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAnomaly)).Bold(true)
	normalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorNormal))
)

// RenderTerminal prints the results view for a terminal: insight, a
// horizontal bar per transaction and the flagged table.
func RenderTerminal(w io.Writer, v View, o TerminalOptions) error {
	if o.BarWidth <= 0 {
		o.BarWidth = 40
	}
	style := func(s lipgloss.Style) lipgloss.Style {
		if o.NoColor {
			return lipgloss.NewStyle()
		}
		return s
	}

	var b strings.Builder

	b.WriteString(style(titleStyle).Render("AI Emotional Insight"))
	b.WriteString("\n")
	b.WriteString(style(insightStyle).Render(v.Insight))
	b.WriteString("\n\n")

	b.WriteString(style(titleStyle).Render("Daily Spending"))
	b.WriteString("\n")
	b.WriteString(renderBars(v.Bars, o.BarWidth, style))
	b.WriteString(style(normalStyle).Render("■ Normal"))
	b.WriteString("  ")
	b.WriteString(style(alertStyle).Render("■ Anomaly (Emotional Spending)"))
	b.WriteString("\n\n")

	b.WriteString(style(titleStyle).Render(fmt.Sprintf("Flagged Transactions (%d)", v.Flagged)))
	b.WriteString("\n")
	if v.NoAnomalies {
		b.WriteString(style(mutedStyle).Render(NoAnomaliesMessage))
		b.WriteString("\n")
	} else {
		b.WriteString(renderTable(v.Anomalies, style))
		b.WriteString(style(mutedStyle).Render("Total flagged: " + v.Total))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderBars(bars []Bar, width int, style func(lipgloss.Style) lipgloss.Style) string {
	if len(bars) == 0 {
		return style(mutedStyle).Render("No transactions.") + "\n"
	}

	maxVal, labelWidth := 0.0, 0
	for _, bar := range bars {
		if bar.Magnitude > maxVal {
			maxVal = bar.Magnitude
		}
		if n := lipgloss.Width(bar.Label); n > labelWidth {
			labelWidth = n
		}
	}

	var b strings.Builder
	for _, bar := range bars {
		cells := 0
		if maxVal > 0 {
			cells = int(bar.Magnitude / maxVal * float64(width))
		}
		if cells == 0 && bar.Magnitude > 0 {
			cells = 1
		}
		s := normalStyle
		if bar.IsAnomaly {
			s = alertStyle
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			padRight(bar.Label, labelWidth),
			style(s).Render(strings.Repeat("█", cells)),
			FormatAmount(bar.Magnitude))
	}
	return b.String()
}

func renderTable(rows []Row, style func(lipgloss.Style) lipgloss.Style) string {
	headers := []string{"DATE", "DESCRIPTION", "CATEGORY", "AMOUNT"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range []string{r.Date, r.Description, r.Category, r.Amount} {
			if n := lipgloss.Width(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	// pad before styling so escape codes do not count toward widths
	lead := func(date, desc, cat string) string {
		return padRight(date, widths[0]) + "  " + padRight(desc, widths[1]) + "  " + padRight(cat, widths[2]) + "  "
	}
	amount := func(a string) string {
		return lipgloss.NewStyle().Width(widths[3]).Align(lipgloss.Right).Render(a)
	}

	var b strings.Builder
	b.WriteString(style(mutedStyle).Render(lead(headers[0], headers[1], headers[2]) + amount(headers[3])))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(lead(r.Date, r.Description, r.Category))
		b.WriteString(style(alertStyle).Render(amount(r.Amount)))
		b.WriteString("\n")
	}
	return b.String()
}

// padRight pads s with spaces to w terminal cells.
func padRight(s string, w int) string {
	return lipgloss.NewStyle().Width(w).Render(s)
}
