package effects

import (
	"math"
	"testing"
)

func TestNormalizePeakMatchesTarget(t *testing.T) {
	samples := []float64{0.1, -0.4, 0.2, -0.05}
	cfg := DefaultNormalizeConfig()
	out := Normalize(samples, cfg)

	peak := 0.0
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-cfg.Target) > 1e-9 {
		t.Fatalf("peak after normalization = %v, want %v", peak, cfg.Target)
	}
}

func TestNormalizeRMSMatchesTarget(t *testing.T) {
	samples := sineForEffects(22050, 22050, 440)
	cfg := NormalizeConfig{Mode: NormalizeRMS, Target: 0.2}
	out := Normalize(samples, cfg)

	var sumSq float64
	for _, v := range out {
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(out)))
	if math.Abs(rms-cfg.Target) > 1e-6 {
		t.Fatalf("rms after normalization = %v, want %v", rms, cfg.Target)
	}
}

func TestNormalizeSilentSignalIsUnchanged(t *testing.T) {
	samples := make([]float64, 100)
	out := Normalize(samples, DefaultNormalizeConfig())
	for i, v := range out {
		if v != 0 {
			t.Fatalf("index %d: normalized silence = %v, want 0", i, v)
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	out := Normalize(nil, DefaultNormalizeConfig())
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}
