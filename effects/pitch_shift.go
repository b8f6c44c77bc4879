package effects

import (
	"math"

	"github.com/austinkregel/sonare/audio"
	"github.com/austinkregel/sonare/primitives"
	"github.com/austinkregel/sonare/spectrogram"
)

// PitchShift raises pitch by ratio (2^(semitones/12)) via time-stretch
// followed by a single resample: time-stretch by ratio leaves the audio
// ratio times shorter at the original pitch, then resampling that short
// signal from an effective rate of sr*ratio back to sr restores the
// original duration while raising the pitch.
func PitchShift(samples []float64, cfg spectrogram.Config, wc *primitives.WindowCache, ratio float64, resampler audio.Resampler) ([]float64, error) {
	stretched := TimeStretch(samples, cfg, wc, ratio)

	f32 := make([]float32, len(stretched))
	for i, v := range stretched {
		f32[i] = float32(v)
	}

	effectiveSR := int(float64(cfg.SampleRate) * ratio)
	resampled, err := resampler.Resample(f32, effectiveSR, cfg.SampleRate)
	if err != nil {
		return nil, audio.Wrap(audio.InvalidParameter, "pitch shift resample failed", err)
	}

	out := make([]float64, len(resampled))
	for i, v := range resampled {
		out[i] = float64(v)
	}
	return out, nil
}

// SemitonesToRatio converts a semitone shift to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}
