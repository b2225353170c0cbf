package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFT zero-pads data to a power of two and transforms it, so bin k sits at
// k/(NextPow2(len)*dt) Hz.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	padded := make([]float64, NextPow2(len(data)))
	copy(padded, data)
	return fft.FFTReal(padded)
}

// PowerSpectrum returns |X(k)| for the first half of the padded transform.
func PowerSpectrum(data []float64) []float64 {
	spec := FFT(data)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency (Hz) and magnitude of the largest
// non-DC bin. The mean is removed first so a constant offset cannot win.
// Returns 0, 0 for fewer than four samples or dt <= 0.
func DominantFrequency(signal []float64, dt float64) (float64, float64) {
	if len(signal) < 4 || dt <= 0 {
		return 0, 0
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(len(signal))

	centred := make([]float64, len(signal))
	for i, v := range signal {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	best, bestMag := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestMag {
			best, bestMag = k, ps[k]
		}
	}
	if best == 0 {
		return 0, 0
	}

	n := NextPow2(len(signal))
	return float64(best) / (float64(n) * dt), bestMag
}
