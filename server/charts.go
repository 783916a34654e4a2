package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/fitstreak/models"
	"github.com/fitstreak/stats"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartCalories  = "calories"
	chartDistances = "distances"
	chartShares    = "shares"

	// echarts renders "-" as a gap
	missingValue = "-"
)

var chartNames = []string{chartCalories, chartDistances, chartShares}

type chartRenderer interface {
	Render(w io.Writer) error
}

// renderCharts renders the dashboard charts for a dataset, reusing cached
// markup for a dataset that was already rendered
func renderCharts(ds *models.Dataset, series stats.Series, cache *models.RenderCache) ([]template.HTML, error) {
	rendered := make([]template.HTML, 0, len(chartNames))
	for _, name := range chartNames {
		if markup, ok := cache.Get(ds.ID, name); ok {
			rendered = append(rendered, template.HTML(markup))
			continue
		}

		var chart chartRenderer
		switch name {
		case chartCalories:
			chart = generateCaloriesChart(series)
		case chartDistances:
			chart = generateDistanceChart(series)
		case chartShares:
			chart = generateSharesChart(series)
		}

		var buf bytes.Buffer
		if err := chart.Render(&buf); err != nil {
			return nil, fmt.Errorf("render %s chart: %w", name, err)
		}
		cache.Set(ds.ID, name, buf.Bytes())
		rendered = append(rendered, template.HTML(buf.String()))
	}
	return rendered, nil
}

func chartValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingValue
	}
	return v
}

func generateBarItems(values []float64) []opts.BarData {
	items := make([]opts.BarData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.BarData{Value: chartValue(v)})
	}
	return items
}

func generateLineItems(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: chartValue(v)})
	}
	return items
}

func generateOptionalLineItems(values []*float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		if v == nil {
			items = append(items, opts.LineData{Value: missingValue})
			continue
		}
		items = append(items, opts.LineData{Value: chartValue(*v)})
	}
	return items
}

func dayAxisOpts() charts.GlobalOpts {
	return charts.WithXAxisOpts(opts.XAxis{
		Name: "Dias desde o início",
	})
}

func tooltipOpts() charts.GlobalOpts {
	return charts.WithTooltipOpts(opts.Tooltip{
		Show:            opts.Bool(true),
		Trigger:         "axis",
		BackgroundColor: "rgba(255, 255, 255, 0.9)",
		BorderColor:     "#ccc",
		AxisPointer: &opts.AxisPointer{
			Type: "cross",
		},
	})
}

// generateCaloriesChart shows calories per day with the moving average on
// the same axis and the running total on a second axis to the right
func generateCaloriesChart(series stats.Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons", ChartID: chartCalories}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Calorias por dia",
			Subtitle: fmt.Sprintf("Média móvel de %d dias", stats.DefaultWindow),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithGridOpts(opts.Grid{Bottom: "20%"}),
		dayAxisOpts(),
		charts.WithYAxisOpts(opts.YAxis{Name: "Kcal"}),
		tooltipOpts(),
	)
	bar.ExtendYAxis(opts.YAxis{
		Name:     "Kcal Acumuladas",
		Position: "right",
	})

	bar.SetXAxis(series.Labels).
		AddSeries("Calorias Totais", generateBarItems(series.Calories))

	line := charts.NewLine()
	line.SetXAxis(series.Labels).
		AddSeries(
			fmt.Sprintf("Média Móvel (%d)", stats.DefaultWindow),
			generateOptionalLineItems(series.MovingAverage),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		).
		AddSeries(
			"Kcal Acumuladas",
			generateLineItems(series.Cumulative),
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
		)
	bar.Overlap(line)

	return bar
}

func generateDistanceChart(series stats.Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons", ChartID: chartDistances}),
		charts.WithTitleOpts(opts.Title{Title: "Distância por dia"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithGridOpts(opts.Grid{Bottom: "20%"}),
		dayAxisOpts(),
		charts.WithYAxisOpts(opts.YAxis{Name: "km"}),
		tooltipOpts(),
	)

	bar.SetXAxis(series.Labels).
		AddSeries("Distância Total (km)", generateBarItems(series.TotalDistance))

	line := charts.NewLine()
	line.SetXAxis(series.Labels).
		AddSeries("Distância Corrida (km)", generateLineItems(series.RunningDistance)).
		AddSeries("Distância Bike (km)", generateLineItems(series.CyclingDistance))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	bar.Overlap(line)

	return bar
}

// generateSharesChart compares running and cycling calories. Slice names
// carry the rounded percentage when the shares are defined.
func generateSharesChart(series stats.Series) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons", ChartID: chartShares}),
		charts.WithTitleOpts(opts.Title{Title: "Comparação de Calorias Queimadas"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	running, cycling := "Corrida", "Bike"
	if series.SharesDefined {
		running = fmt.Sprintf("%s (%s)", running, stats.FormatPercent(series.Shares.Running))
		cycling = fmt.Sprintf("%s (%s)", cycling, stats.FormatPercent(series.Shares.Cycling))
	}

	pie.AddSeries("Calorias", []opts.PieData{
		{Name: running, Value: chartValue(series.Totals.Running)},
		{Name: cycling, Value: chartValue(series.Totals.Cycling)},
	}).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}"}),
	)

	return pie
}
