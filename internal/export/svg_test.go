package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeSeriesSVG(t *testing.T) {
	ts := []float64{0, 0.5, 1}
	out := TimeSeriesSVG(ts, []Series{
		{Values: []float64{0.01, 0.01, 0.01}, Color: "#00ffff"},
		{Values: []float64{-0.002, 0.004, 0.009}, Color: "#ffcc00"},
	}, 200, 100)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, `stroke="#ffcc00"`)
	assert.Contains(t, out, "<line", "zero axis drawn when the range crosses 0")
	assert.True(t, strings.HasSuffix(out, "</svg>"))
}

func TestTimeSeriesSVG_Degenerate(t *testing.T) {
	assert.Empty(t, TimeSeriesSVG([]float64{0}, []Series{{Values: []float64{1}}}, 10, 10))
	assert.Empty(t, TimeSeriesSVG([]float64{0, 1}, nil, 10, 10))

	out := TimeSeriesSVG([]float64{0, 1}, []Series{{Values: []float64{2, 2}, Color: "red"}}, 10, 10)
	assert.Contains(t, out, "<path")
	assert.NotContains(t, out, "<line")
}
