package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/expense-insight/internal/models"
)

// Bar colors.
const (
	ColorNormal  = "#6366f1"
	ColorAnomaly = "#ef4444"
)

// NoAnomaliesMessage replaces the flagged table when nothing was flagged.
const NoAnomaliesMessage = "No anomalies detected. Your spending looks healthy!"

// Bar is one chart column, one per transaction.
type Bar struct {
	Date        string
	Label       string // x-axis tick
	Magnitude   float64
	Description string
	IsAnomaly   bool
	Color       string
}

// Row is one line of the flagged transactions table.
type Row struct {
	Date        string
	Description string
	Category    string
	Amount      string
}

// View is everything the results page shows.
type View struct {
	Insight     string
	Bars        []Bar
	Anomalies   []Row
	NoAnomalies bool
	Flagged     int
	Total       string // sum of flagged magnitudes
}

// ChartData maps each transaction to a bar: absolute amount, date,
// description and anomaly flag, colored by the flag.
func ChartData(result models.AnalysisResult) []Bar {
	bars := make([]Bar, 0, len(result.Transactions))
	for _, t := range result.Transactions {
		color := ColorNormal
		if t.IsAnomaly {
			color = ColorAnomaly
		}
		bars = append(bars, Bar{
			Date:        t.Date,
			Label:       TickLabel(t.Date),
			Magnitude:   magnitude(t.Amount).InexactFloat64(),
			Description: t.Description,
			IsAnomaly:   t.IsAnomaly,
			Color:       color,
		})
	}
	return bars
}

// NewView builds the results page model. Anomalies are taken as the service
// sent them.
func NewView(result models.AnalysisResult) View {
	v := View{
		Insight:   result.Insight,
		Bars:      ChartData(result),
		Anomalies: make([]Row, 0, len(result.Anomalies)),
		Flagged:   len(result.Anomalies),
	}

	total := decimal.Zero
	for _, t := range result.Anomalies {
		total = total.Add(magnitude(t.Amount))
		v.Anomalies = append(v.Anomalies, Row{
			Date:        t.Date,
			Description: t.Description,
			Category:    t.Category,
			Amount:      FormatAmount(t.Amount),
		})
	}
	v.NoAnomalies = len(v.Anomalies) == 0
	v.Total = "$" + total.StringFixed(2)
	return v
}

// FormatAmount renders a signed amount as "$" plus its magnitude to cents.
func FormatAmount(amount float64) string {
	return "$" + magnitude(amount).StringFixed(2)
}

// TickLabel drops the first five characters of a date, the "YYYY-" prefix
// of an ISO date. Dates of five characters or fewer give an empty label.
func TickLabel(date string) string {
	r := []rune(date)
	if len(r) <= 5 {
		return ""
	}
	return string(r[5:])
}

func magnitude(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Abs()
}
