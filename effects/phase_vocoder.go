package effects

import (
	"math"
	"math/cmplx"

	"github.com/austinkregel/sonare/primitives"
)

// PhaseVocode time-stretches a complex STFT (row-major [n_bins x
// n_frames]) by rate, producing ceil(n_frames/rate) output frames with
// phases propagated via instantaneous-frequency tracking rather than
// reused verbatim (which would produce phasiness).
func PhaseVocode(spectrum []complex128, nBins, nFrames int, hopLength, sampleRate int, rate float64) ([]complex128, int) {
	if rate <= 0 {
		rate = 1
	}
	nFramesOut := int(math.Ceil(float64(nFrames) / rate))
	if nFramesOut < 1 {
		nFramesOut = 1
	}

	binFreq := make([]float64, nBins)
	for b := range binFreq {
		binFreq[b] = float64(b) * float64(sampleRate) / float64(2*(nBins-1))
	}
	deltaT := float64(hopLength) / float64(sampleRate)

	out := make([]complex128, nBins*nFramesOut)
	phaseAccum := make([]float64, nBins)
	prevInputPhase := make([]float64, nBins)

	at := func(bin, frame int) complex128 {
		if frame < 0 {
			frame = 0
		}
		if frame >= nFrames {
			frame = nFrames - 1
		}
		return spectrum[bin*nFrames+frame]
	}

	for b := 0; b < nBins; b++ {
		prevInputPhase[b] = cmplx.Phase(at(b, 0))
		phaseAccum[b] = prevInputPhase[b]
	}

	for tOut := 0; tOut < nFramesOut; tOut++ {
		tIn := float64(tOut) * rate
		lo := int(math.Floor(tIn))
		hi := lo + 1
		frac := tIn - float64(lo)

		for b := 0; b < nBins; b++ {
			magLo := cmplx.Abs(at(b, lo))
			magHi := cmplx.Abs(at(b, hi))
			mag := magLo*(1-frac) + magHi*frac

			curPhase := cmplx.Phase(at(b, hi))
			expected := 2 * math.Pi * binFreq[b] * deltaT
			measured := curPhase - prevInputPhase[b]
			unwrapped := primitives.WrapPhase(measured - expected)
			fInst := binFreq[b] + unwrapped/(2*math.Pi*deltaT)

			if tOut > 0 {
				phaseAccum[b] += 2 * math.Pi * fInst * deltaT
			}
			prevInputPhase[b] = curPhase

			out[b*nFramesOut+tOut] = cmplx.Rect(mag, phaseAccum[b])
		}
	}

	return out, nFramesOut
}
