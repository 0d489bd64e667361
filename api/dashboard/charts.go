package dashboard

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/homeenergy/core/history"
)

const (
	chartWidth  = "680px"
	chartHeight = "380px"
)

// HourlyChart plots the mean consumption per hour of day as a line.
func HourlyChart(p history.Profile) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Hourly Energy Trend", Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Average Energy Usage by Hour"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour of Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average kWh"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	var xAxis []string
	var data []opts.LineData
	for _, pt := range p.Points() {
		xAxis = append(xAxis, strconv.Itoa(pt.Key))
		data = append(data, opts.LineData{Value: round3(pt.Mean), Symbol: "circle"})
	}
	line.SetXAxis(xAxis).AddSeries("Average kWh", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "skyblue"}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "skyblue"}),
	)
	return line
}

// WeekdayChart plots the mean consumption per weekday as bars.
func WeekdayChart(p history.Profile) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Weekday Energy Trend", Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Average Energy Usage by Day of Week"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Weekday (0 = Mon ... 6 = Sun)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average kWh"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	var xAxis []string
	var data []opts.BarData
	for _, pt := range p.Points() {
		xAxis = append(xAxis, strconv.Itoa(pt.Key))
		data = append(data, opts.BarData{Value: round3(pt.Mean)})
	}
	bar.SetXAxis(xAxis).AddSeries("Average kWh", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "lightgreen"}),
	)
	return bar
}

type renderer interface {
	Render(w io.Writer) error
}

func renderChart(w io.Writer, c renderer) error {
	if err := c.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
