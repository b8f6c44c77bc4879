// Package effects implements harmonic/percussive source separation, the
// phase vocoder and its time-stretch/pitch-shift applications, and peak
// or RMS gain normalization.
package effects

import (
	"math"

	"github.com/austinkregel/sonare/primitives"
)

// HPSSConfig controls directional median filtering.
type HPSSConfig struct {
	KernelHorizontal int
	KernelVertical   int
	Power            float64
	Alpha            float64
	Hard             bool
	Residual         bool
}

// DefaultHPSSConfig uses 17/17-frame kernels, soft masks with power 2.
func DefaultHPSSConfig() HPSSConfig {
	return HPSSConfig{KernelHorizontal: 17, KernelVertical: 17, Power: 2, Alpha: 1, Hard: false}
}

// HPSSResult holds the separated complex spectra (row-major
// [n_bins x n_frames]), sharing the input's shape.
type HPSSResult struct {
	Harmonic   []complex128
	Percussive []complex128
	Residual   []complex128 // nil unless cfg.Residual
}

// Separate performs harmonic/percussive source separation on a complex
// STFT: harmonic ridges lie horizontally (across time), percussive
// ridges vertically (across frequency), so directional median filtering
// isolates each.
func Separate(spectrum []complex128, nBins, nFrames int, cfg HPSSConfig) HPSSResult {
	mag := make([]float64, len(spectrum))
	for i, z := range spectrum {
		mag[i] = math.Hypot(real(z), imag(z))
	}

	h := medianFilterHorizontal(mag, nBins, nFrames, cfg.KernelHorizontal)
	p := medianFilterVertical(mag, nBins, nFrames, cfg.KernelVertical)

	harmonic := make([]complex128, len(spectrum))
	percussive := make([]complex128, len(spectrum))
	var residual []complex128
	if cfg.Residual {
		residual = make([]complex128, len(spectrum))
	}

	const epsilon = 1e-10
	for i := range spectrum {
		hv, pv := h[i], p[i]
		var mh, mp, mr float64
		if cfg.Hard {
			ratio := 1.0
			if pv > 0 {
				ratio = hv / pv
			}
			switch {
			case cfg.Residual && ratio > 0.5 && ratio < 2:
				mr = 1
			case hv >= pv:
				mh = 1
			default:
				mp = 1
			}
		} else {
			hp := math.Pow(hv, cfg.Power)
			pp := math.Pow(pv, cfg.Power) * cfg.Alpha
			denom := hp + pp + epsilon
			mh = hp / denom
			mp = pp / denom
		}
		harmonic[i] = spectrum[i] * complex(mh, 0)
		percussive[i] = spectrum[i] * complex(mp, 0)
		if residual != nil {
			residual[i] = spectrum[i] * complex(mr, 0)
		}
	}

	return HPSSResult{Harmonic: harmonic, Percussive: percussive, Residual: residual}
}

// medianFilterHorizontal filters each frequency bin's row across time.
func medianFilterHorizontal(mag []float64, nBins, nFrames, kernel int) []float64 {
	out := make([]float64, len(mag))
	row := make([]float64, nFrames)
	for b := 0; b < nBins; b++ {
		copy(row, mag[b*nFrames:(b+1)*nFrames])
		filtered := primitives.RunningMedianFilter(row, kernel)
		copy(out[b*nFrames:(b+1)*nFrames], filtered)
	}
	return out
}

// medianFilterVertical filters each time frame's column across frequency.
func medianFilterVertical(mag []float64, nBins, nFrames, kernel int) []float64 {
	out := make([]float64, len(mag))
	col := make([]float64, nBins)
	for t := 0; t < nFrames; t++ {
		for b := 0; b < nBins; b++ {
			col[b] = mag[b*nFrames+t]
		}
		filtered := primitives.RunningMedianFilter(col, kernel)
		for b := 0; b < nBins; b++ {
			out[b*nFrames+t] = filtered[b]
		}
	}
	return out
}
