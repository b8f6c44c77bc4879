package effects

import (
	"math"

	"github.com/austinkregel/sonare/primitives"
	"github.com/austinkregel/sonare/spectrogram"
)

// TimeStretch changes the duration of samples by rate (rate > 1 shortens,
// rate < 1 lengthens) while preserving pitch: STFT, phase-vocode, iSTFT.
func TimeStretch(samples []float64, cfg spectrogram.Config, wc *primitives.WindowCache, rate float64) []float64 {
	spec := spectrogram.Compute(samples, cfg, wc)

	stretched, nFramesOut := PhaseVocode(spec.Complex(), spec.NBins, spec.NFrames, cfg.HopLength, cfg.SampleRate, rate)
	stretchedSpec := spectrogram.FromComplex(stretched, cfg.NFFT, cfg.HopLength, cfg.SampleRate, spec.NBins, nFramesOut)

	targetLength := int(math.Ceil(float64(len(samples)) / rate))
	return spectrogram.Inverse(stretchedSpec, cfg, wc, targetLength)
}
