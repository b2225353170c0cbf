package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Plot draws desired and commanded curvature on one chart, downsampled to
// at most width points.
func Plot(desired, output []float64, width, height int, caption string) string {
	if len(desired) == 0 && len(output) == 0 {
		return ""
	}
	if width <= 0 {
		width = 70
	}
	if height <= 0 {
		height = 12
	}
	return asciigraph.PlotMany(
		[][]float64{downsample(desired, width), downsample(output, width)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
		asciigraph.Caption(caption),
	)
}

// PlotSeries draws a single series.
func PlotSeries(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(downsample(data, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

func downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*len(data)/n]
	}
	return out
}
