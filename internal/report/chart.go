package report

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var seriesPalette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
	chart.ColorCyan,
	drawing.Color{R: 128, G: 0, B: 128, A: 255},
	drawing.Color{R: 139, G: 69, B: 19, A: 255},
	drawing.Color{R: 105, G: 105, B: 105, A: 255},
}

// RenderPNG renders one category's chart as a PNG image. The x-axis is
// the ordered categorical tissue axis; each gene contributes one
// line+marker series. Series with fewer than two plottable points are
// skipped (go-chart cannot draw them); NaN entries are dropped per
// point so the line bridges missing tissues. If no series is plottable
// the chart is not rendered and an error is returned.
func RenderPNG(r *Report, cr *CategoryReport, w io.Writer) error {
	ticks := make([]chart.Tick, len(r.Tissues))
	for i, t := range r.Tissues {
		ticks[i] = chart.Tick{Value: float64(i), Label: t}
	}

	var series []chart.Series
	for i, s := range cr.Series {
		xs, ys := plottablePoints(s.Values)
		if len(xs) < 2 {
			continue
		}
		col := seriesPalette[i%len(seriesPalette)]
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}

	if len(series) == 0 {
		return fmt.Errorf("chart %s (%s): not enough data to plot", r.Query.Symbol, cr.Category)
	}

	ch := chart.Chart{
		Title:  fmt.Sprintf("%s vs. matched genes (%s)", r.Query.Symbol, cr.Category),
		Width:  1280,
		Height: 640,
		Background: chart.Style{
			Padding: chart.Box{Top: 16, Left: 16, Right: 16, Bottom: 48},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(r.Tissues) - 1)},
		},
		YAxis: chart.YAxis{
			Name: r.YAxisLabel(),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// plottablePoints converts a tissue-aligned vector into X/Y slices with
// NaN entries removed. X positions stay aligned to the tissue index so
// all series share the same axis.
func plottablePoints(values []float64) (xs, ys []float64) {
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	return xs, ys
}
