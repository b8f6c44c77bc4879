package spectrogram

import (
	"math"
	"testing"

	"github.com/austinkregel/sonare/primitives"
)

func TestGriffinLimApproximatesTargetMagnitude(t *testing.T) {
	sr := 22050
	cfg := DefaultConfig(sr)
	wc := primitives.NewWindowCache()

	original := sine(sr/2, sr, 440)
	s := Compute(original, cfg, wc)
	targetMag := s.Magnitude()

	glc := DefaultGriffinLimConfig()
	glc.Iterations = 8 // keep the test fast; convergence trend is what matters
	recon := GriffinLim(targetMag, s.NBins, s.NFrames, cfg, glc, wc)

	reconSpec := Compute(fitLength(recon, len(original)), cfg, wc)
	reconMag := reconSpec.Magnitude()

	if len(reconMag) != len(targetMag) {
		t.Fatalf("magnitude shape mismatch: %d vs %d", len(reconMag), len(targetMag))
	}

	var num, denom float64
	for i := range targetMag {
		diff := reconMag[i] - targetMag[i]
		num += diff * diff
		denom += targetMag[i] * targetMag[i]
	}
	if denom == 0 {
		return
	}
	relErr := math.Sqrt(num / denom)
	if relErr > 0.5 {
		t.Fatalf("relative magnitude error = %v, want a reasonable reconstruction", relErr)
	}
}
