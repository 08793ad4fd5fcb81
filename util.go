package stockforest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoReport = errors.New("no training report")

// LineHoldout generates an echart line chart of the realized holdout returns against the
// predicted returns by holdout row. The linear baseline is drawn when the report has one.
func LineHoldout(report *TrainReport) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Holdout Returns",
			},
		),
	)

	withBaseline := len(report.HoldoutBaseline) == len(report.HoldoutActual)
	rows := make([]int, 0, len(report.HoldoutActual))
	lineDataActual := make([]opts.LineData, 0, len(report.HoldoutActual))
	lineDataPredicted := make([]opts.LineData, 0, len(report.HoldoutPredicted))
	lineDataBaseline := make([]opts.LineData, 0, len(report.HoldoutBaseline))
	for i := 0; i < len(report.HoldoutActual) && i < len(report.HoldoutPredicted); i++ {
		if math.IsNaN(report.HoldoutActual[i]) || math.IsNaN(report.HoldoutPredicted[i]) {
			continue
		}
		rows = append(rows, i)
		lineDataActual = append(lineDataActual, opts.LineData{Value: report.HoldoutActual[i]})
		lineDataPredicted = append(lineDataPredicted, opts.LineData{Value: report.HoldoutPredicted[i]})
		if withBaseline {
			lineDataBaseline = append(lineDataBaseline, opts.LineData{Value: report.HoldoutBaseline[i]})
		}
	}

	line.SetXAxis(rows).
		AddSeries("Actual", lineDataActual).
		AddSeries("Predicted", lineDataPredicted)
	if withBaseline {
		line.AddSeries("Baseline", lineDataBaseline)
	}
	return line
}

// BarImportances generates an echart bar chart of the feature importances.
func BarImportances(names []string, importances []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Feature Importances",
			},
		),
	)

	barData := make([]opts.BarData, 0, len(importances))
	for _, v := range importances {
		barData = append(barData, opts.BarData{Value: v})
	}
	bar.SetXAxis(names).
		AddSeries("Importance", barData)
	return bar
}

// PlotReport uses the Apache Echarts library to render the holdout fit and feature importances
// of a training run as an html page.
func PlotReport(w io.Writer, report *TrainReport) error {
	if report == nil {
		return ErrNoReport
	}
	page := components.NewPage()
	if len(report.HoldoutActual) > 0 {
		page.AddCharts(LineHoldout(report))
	}
	page.AddCharts(BarImportances(report.FeatureNames, report.FeatureImportances))
	return page.Render(w)
}

// PlotReportFile writes the report page to path.
func PlotReportFile(path string, report *TrainReport) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create report file, %w", err)
	}
	defer file.Close()

	return PlotReport(file, report)
}
