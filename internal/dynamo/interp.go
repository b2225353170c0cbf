package dynamo

import "math"

// Interp evaluates the piecewise-linear function through (xp[i], fp[i]) at x.
// xp must be increasing. Outside [xp[0], xp[n-1]] the endpoint value is
// returned. An empty table yields 0.
func Interp(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 || len(fp) < n {
		return 0
	}
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	for i := 1; i < n; i++ {
		if x > xp[i] {
			continue
		}
		span := xp[i] - xp[i-1]
		if span <= 0 {
			return fp[i]
		}
		frac := (x - xp[i-1]) / span
		return fp[i-1]*(1-frac) + fp[i]*frac
	}
	return fp[n-1]
}

// Clip bounds x to [lo, hi].
func Clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}

func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}
