package dashboard

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes a standalone HTML page with the daily spending bar
// chart. Each bar carries its own color.
func RenderChart(w io.Writer, bars []Bar) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Daily Spending",
			Width:     "100%",
			Height:    "256px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:   "axis",
			Formatter: "Date: {b}<br/>Amount: ${c}",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Formatter: "${value}"},
		}),
	)

	labels := make([]string, 0, len(bars))
	items := make([]opts.BarData, 0, len(bars))
	for _, b := range bars {
		labels = append(labels, b.Label)
		items = append(items, opts.BarData{
			Name:      b.Description,
			Value:     b.Magnitude,
			ItemStyle: &opts.ItemStyle{Color: b.Color},
		})
	}

	bar.SetXAxis(labels).AddSeries("Amount", items)
	return bar.Render(w)
}
