// Package feature derives mel spectrograms, MFCCs, chromagrams, onset
// strength envelopes, scalar spectral descriptors, and YIN/pYIN pitch
// tracks from a Spectrogram.
package feature

import (
	"math"

	"github.com/austinkregel/sonare/filterbank"
	"github.com/austinkregel/sonare/spectrogram"
)

// MelSpectrogram holds non-negative power values, row-major
// [n_mels x n_frames].
type MelSpectrogram struct {
	SampleRate int
	HopLength  int
	NMels      int
	NFrames    int
	Data       []float64
}

// ComputeMelSpectrogram projects s's power spectrogram through fb.
func ComputeMelSpectrogram(s *spectrogram.Spectrogram, fb *filterbank.MelFilterbank) *MelSpectrogram {
	data := filterbank.Apply(fb.Matrix, fb.NMels, fb.NBins, s.Power(), s.NFrames)
	return &MelSpectrogram{
		SampleRate: s.SampleRate,
		HopLength:  s.HopLength,
		NMels:      fb.NMels,
		NFrames:    s.NFrames,
		Data:       data,
	}
}

// LogMel returns log(max(mel, eps)) elementwise.
func (m *MelSpectrogram) LogMel(eps float64) []float64 {
	out := make([]float64, len(m.Data))
	for i, v := range m.Data {
		if v < eps {
			v = eps
		}
		out[i] = math.Log(v)
	}
	return out
}

// At returns the value at mel bin m, frame t.
func (ms *MelSpectrogram) At(mel, frame int) float64 {
	return ms.Data[mel*ms.NFrames+frame]
}
