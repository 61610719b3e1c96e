package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/cfdtools/starwatch/pkg/solverlog"
)

// residualWindow limits the residual chart to the tail of the run so
// long simulations stay readable.
const residualWindow = 50

// reportYMin/Max fix the report axis so the trend panel is comparable
// across cycles.
const (
	reportYMin = -100
	reportYMax = 100
)

// residualPanel draws residual curves against iteration number on a
// log-scale Y axis.
func (r *Renderer) residualPanel(res *solverlog.Result, w, h int) image.Image {
	if res == nil || len(res.Iterations) == 0 {
		return placeholder(w, h, "No residual data")
	}

	xs := make([]float64, len(res.Iterations))
	for i, it := range res.Iterations {
		xs[i] = float64(it)
	}

	var series []chart.Series
	for _, name := range solverlog.ResidualFields {
		fx, fy := cleanSeries(xs, res.Residuals[name], true)
		if len(fx) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: fx,
			YValues: fy,
		})
	}
	if len(series) == 0 {
		return placeholder(w, h, "No residual data")
	}

	xaxis := chart.XAxis{Name: "Iteration"}
	n := len(res.Iterations)
	lo := res.Iterations[maxInt(0, n-residualWindow)]
	hi := res.Iterations[n-1]
	if hi > lo {
		xaxis.Range = &chart.ContinuousRange{Min: float64(lo), Max: float64(hi)}
	}

	ch := chart.Chart{
		Title:      "Residuals",
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 12}},
		XAxis:      xaxis,
		YAxis:      chart.YAxis{Name: "Residual", Range: &chart.LogarithmicRange{}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return renderChart(ch, w, h, "Residual chart unavailable")
}

// reportPanel draws plotted report fields against physical time, with
// text readouts for the fields configured as text-only.
func (r *Renderer) reportPanel(in Input, w, h int) image.Image {
	res := in.Data

	var series []chart.Series
	if res != nil && len(res.ReportTimes) > 0 {
		for _, name := range in.PlotReports {
			if containsString(in.TextReports, name) {
				continue
			}
			fx, fy := cleanSeries(res.ReportTimes, res.Reports[name], false)
			if len(fx) == 0 {
				continue
			}
			series = append(series, chart.ContinuousSeries{
				Name:    name,
				XValues: fx,
				YValues: fy,
				Style:   chart.Style{DotWidth: 3},
			})
		}
	}

	var img image.Image
	if len(series) == 0 {
		img = placeholder(w, h, "No report data")
	} else {
		ch := chart.Chart{
			Title:      "Reports vs. Physical Time",
			Width:      w,
			Height:     h,
			Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 12}},
			XAxis:      chart.XAxis{Name: "Physical Time (s)"},
			YAxis: chart.YAxis{
				Name:  "Report Value",
				Range: &chart.ContinuousRange{Min: reportYMin, Max: reportYMax},
			},
			Series: series,
		}
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
		img = renderChart(ch, w, h, "Report chart unavailable")
	}

	// Latest-value readouts stack below the title.
	labels := textReportLabels(res, in.TextReports)
	if len(labels) == 0 {
		return img
	}
	rgba := toRGBA(img)
	y := 40
	for _, label := range labels {
		drawLabel(rgba, label, 0, y, true)
		y += 20
	}
	return rgba
}

// textReportLabels formats the last value of each text-only report.
func textReportLabels(res *solverlog.Result, textReports []string) []string {
	if res == nil {
		return nil
	}
	var labels []string
	for _, name := range textReports {
		values := res.Reports[name]
		if len(values) == 0 {
			continue
		}
		labels = append(labels, fmt.Sprintf("last %s: %.2f", name, values[len(values)-1]))
	}
	return labels
}

// cleanSeries drops NaN points (and non-positive points for log-scale
// axes), then pads a lone point so the chart library always has a
// drawable segment.
func cleanSeries(xs, ys []float64, logScale bool) ([]float64, []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	var fx, fy []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) || math.IsNaN(xs[i]) {
			continue
		}
		if logScale && ys[i] <= 0 {
			continue
		}
		fx = append(fx, xs[i])
		fy = append(fy, ys[i])
	}
	if len(fx) == 1 {
		fx = append(fx, fx[0]+1)
		fy = append(fy, fy[0])
	}
	return fx, fy
}

// renderChart renders to PNG and decodes back to an image, degrading to
// a placeholder on any chart error.
func renderChart(ch chart.Chart, w, h int, fallback string) image.Image {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return placeholder(w, h, fallback)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return placeholder(w, h, fallback)
	}
	return img
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
