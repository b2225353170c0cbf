// Package export renders stored runs as standalone SVG charts.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Series is one polyline sampled at Times.
type Series struct {
	Values []float64
	Color  string
}

// TimeSeriesSVG plots every series against t on shared, padded axes. The
// series must be the same length as t; shorter ones are drawn as far as
// they go.
func TimeSeriesSVG(t []float64, series []Series, width, height int) string {
	if len(t) < 2 || len(series) == 0 {
		return ""
	}

	minX, maxX := t[0], t[len(t)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}

	if minY > maxY {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if minY < 0 && maxY > 0 {
		zy := float64(height) - (0-minY)/rangeY*float64(height)
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4"/>
`, zy, width, zy)
	}

	for _, s := range series {
		n := len(s.Values)
		if n > len(t) {
			n = len(t)
		}
		if n < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color)
		for i := 0; i < n; i++ {
			x := (t[i] - minX) / rangeX * float64(width)
			y := float64(height) - (s.Values[i]-minY)/rangeY*float64(height)
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
