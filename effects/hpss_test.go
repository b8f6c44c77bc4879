package effects

import (
	"math"
	"testing"

	"github.com/austinkregel/sonare/primitives"
	"github.com/austinkregel/sonare/spectrogram"
)

func sineForEffects(n, sr int, freq float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sr))
	}
	return out
}

func TestHPSSSumsToOriginalUnderSoftMasks(t *testing.T) {
	sr := 22050
	cfg := spectrogram.DefaultConfig(sr)
	wc := primitives.NewWindowCache()
	s := spectrogram.Compute(sineForEffects(sr, sr, 440), cfg, wc)

	result := Separate(s.Complex(), s.NBins, s.NFrames, DefaultHPSSConfig())

	for i := range s.Complex() {
		sum := result.Harmonic[i] + result.Percussive[i]
		diff := sum - s.Complex()[i]
		if math.Hypot(real(diff), imag(diff)) > 1e-6 {
			t.Fatalf("index %d: harmonic+percussive should reconstruct original under soft masks", i)
			break
		}
	}
}

func TestHPSSHardMaskIsBinary(t *testing.T) {
	sr := 22050
	cfg := spectrogram.DefaultConfig(sr)
	wc := primitives.NewWindowCache()
	s := spectrogram.Compute(sineForEffects(sr, sr, 440), cfg, wc)

	hpssCfg := DefaultHPSSConfig()
	hpssCfg.Hard = true
	result := Separate(s.Complex(), s.NBins, s.NFrames, hpssCfg)

	for i := range s.Complex() {
		h, p := result.Harmonic[i], result.Percussive[i]
		if h != 0 && p != 0 {
			t.Fatalf("index %d: hard mask should zero exactly one of harmonic/percussive", i)
		}
	}
}
