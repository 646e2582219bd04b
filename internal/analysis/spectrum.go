package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the first n/2 frequency bins of
// series after removing its mean and applying a Hann window.
func PowerSpectrum(series []float64) []float64 {
	n := len(series)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(series, nil)
	windowed := make([]float64, n)
	for i, v := range series {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-constant
// frequency of a series sampled every sampleDt. ok is false when the
// series is too short or flat.
func DominantPeriod(series []float64, sampleDt float64) (period float64, ok bool) {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || sampleDt <= 0 {
		return 0, false
	}

	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[best] || best == 0 {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0, false
	}
	return float64(len(series)) * sampleDt / float64(best), true
}
