package spectrogram

import (
	"math/cmplx"

	"github.com/austinkregel/sonare/primitives"
)

// GriffinLimConfig controls magnitude-only phase reconstruction.
type GriffinLimConfig struct {
	Iterations int
	Momentum   float64
}

// DefaultGriffinLimConfig returns the conventional 32 iterations at
// momentum 0.99.
func DefaultGriffinLimConfig() GriffinLimConfig {
	return GriffinLimConfig{Iterations: 32, Momentum: 0.99}
}

// GriffinLim reconstructs a time-domain signal whose STFT magnitude
// approximates targetMag (row-major [n_bins x n_frames]), starting from a
// zero-phase complex spectrum and alternating iSTFT/STFT while imposing
// targetMag on the rebuilt magnitudes, with momentum-accelerated updates.
func GriffinLim(targetMag []float64, nBins, nFrames int, cfg Config, glc GriffinLimConfig, wc *primitives.WindowCache) []float64 {
	current := make([]complex128, len(targetMag))
	copy(current, toComplex(targetMag))

	previous := make([]complex128, len(current))

	for iter := 0; iter < glc.Iterations; iter++ {
		combined := make([]complex128, len(current))
		for i := range current {
			combined[i] = current[i] + complex(glc.Momentum, 0)*(current[i]-previous[i])
		}

		spec := FromComplex(combined, cfg.NFFT, cfg.HopLength, cfg.SampleRate, nBins, nFrames)
		signal := Inverse(spec, cfg, wc, 0)

		rebuilt := Compute(signal, cfg, wc)

		next := make([]complex128, len(targetMag))
		for i, mag := range targetMag {
			var phase float64
			if i < len(rebuilt.complexData) {
				phase = cmplx.Phase(rebuilt.complexData[i])
			}
			next[i] = cmplx.Rect(mag, phase)
		}

		previous = current
		current = next
	}

	spec := FromComplex(current, cfg.NFFT, cfg.HopLength, cfg.SampleRate, nBins, nFrames)
	return Inverse(spec, cfg, wc, 0)
}

func toComplex(mag []float64) []complex128 {
	out := make([]complex128, len(mag))
	for i, m := range mag {
		out[i] = complex(m, 0)
	}
	return out
}
