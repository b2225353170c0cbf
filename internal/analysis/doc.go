// Package analysis provides frequency-domain tools for closed-loop traces.
//
//   - [FFT]: radix-2 transform, zero-padding to the next power of two
//   - [PowerSpectrum]: one-sided magnitude spectrum
//   - [DominantFrequency]: strongest non-DC component of a sampled signal
//
// A steering controller that rings shows up as a dominant frequency well
// above the scenario's own excitation:
//
//	f, mag := analysis.DominantFrequency(res.Series(outputCurvature), cfg.Dt)
package analysis
