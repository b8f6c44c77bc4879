package effects

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPhaseVocodeOutputFrameCount(t *testing.T) {
	nBins, nFrames := 5, 20
	spectrum := make([]complex128, nBins*nFrames)
	for b := 0; b < nBins; b++ {
		for f := 0; f < nFrames; f++ {
			spectrum[b*nFrames+f] = cmplx.Rect(1, 0)
		}
	}

	_, nOut := PhaseVocode(spectrum, nBins, nFrames, 512, 22050, 2.0)
	want := int(math.Ceil(float64(nFrames) / 2.0))
	if nOut != want {
		t.Fatalf("nFramesOut = %d, want %d", nOut, want)
	}
}

func TestPhaseVocodePreservesMagnitudeForConstantSpectrum(t *testing.T) {
	nBins, nFrames := 4, 10
	spectrum := make([]complex128, nBins*nFrames)
	for b := 0; b < nBins; b++ {
		for f := 0; f < nFrames; f++ {
			spectrum[b*nFrames+f] = cmplx.Rect(3.0, 0)
		}
	}

	out, nOut := PhaseVocode(spectrum, nBins, nFrames, 512, 22050, 1.5)
	for b := 0; b < nBins; b++ {
		for f := 0; f < nOut; f++ {
			mag := cmplx.Abs(out[b*nOut+f])
			if math.Abs(mag-3.0) > 1e-6 {
				t.Fatalf("bin %d frame %d: magnitude = %v, want 3.0", b, f, mag)
			}
		}
	}
}

func TestPhaseVocodeIdentityRateKeepsFrameCount(t *testing.T) {
	nBins, nFrames := 3, 8
	spectrum := make([]complex128, nBins*nFrames)
	for i := range spectrum {
		spectrum[i] = cmplx.Rect(1, float64(i)*0.1)
	}

	_, nOut := PhaseVocode(spectrum, nBins, nFrames, 256, 22050, 1.0)
	if nOut != nFrames {
		t.Fatalf("nFramesOut = %d, want %d at rate 1.0", nOut, nFrames)
	}
}
