package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

// PowerSpectrum returns the magnitude of the first n/2 DFT bins of samples
// with the mean removed. Bin k is the frequency k/(n·dt).
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n < 2 {
		return nil
	}
	mean := Mean(samples)
	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	bins := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// DominantPeriod returns the period, in seconds, of the strongest non-DC bin.
// It reports false for flat or too-short series.
func DominantPeriod(samples []float64, dt float64) (float64, bool) {
	ps := PowerSpectrum(samples)
	best, bestK := 0.0, 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			best, bestK = ps[k], k
		}
	}
	if bestK == 0 || best < 1e-12 {
		return 0, false
	}
	return float64(len(samples)) * dt / float64(bestK), true
}
