// Package filterbank builds mel and chroma frequency-projection matrices
// and applies them to power spectrograms via gonum's GEMM.
package filterbank

import "math"

// NormMode selects mel filterbank row normalisation.
type NormMode int

const (
	NormNone NormMode = iota
	NormSlaney
)

// MelConfig controls mel filterbank construction.
type MelConfig struct {
	NMels int
	FMin  float64
	FMax  float64 // 0 means sr/2
	HTK   bool
	Norm  NormMode
}

// DefaultMelConfig returns a 128-band Slaney-normalised filterbank
// spanning the full Nyquist range.
func DefaultMelConfig() MelConfig {
	return MelConfig{NMels: 128, FMin: 0, FMax: 0, HTK: false, Norm: NormSlaney}
}

// HzToMelSlaney converts Hz to mel using the Slaney convention: linear
// below 1000 Hz, logarithmic above.
func HzToMelSlaney(hz float64) float64 {
	const fsp = 200.0 / 3.0
	if hz < 1000 {
		return hz / fsp
	}
	const minLogHz = 1000.0
	const minLogMel = minLogHz / fsp
	return minLogMel + math.Log(hz/minLogHz)/(math.Log(6.4)/27.0)
}

// MelToHzSlaney is the exact inverse of HzToMelSlaney.
func MelToHzSlaney(mel float64) float64 {
	const fsp = 200.0 / 3.0
	if mel < 1000/fsp {
		return mel * fsp
	}
	const minLogHz = 1000.0
	const minLogMel = minLogHz / fsp
	return minLogHz * math.Exp((mel-minLogMel)*(math.Log(6.4)/27.0))
}

// HzToMelHTK converts Hz to mel using the HTK formula.
func HzToMelHTK(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

// MelToHzHTK is the exact inverse of HzToMelHTK.
func MelToHzHTK(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

func hzToMel(hz float64, htk bool) float64 {
	if htk {
		return HzToMelHTK(hz)
	}
	return HzToMelSlaney(hz)
}

func melToHz(mel float64, htk bool) float64 {
	if htk {
		return MelToHzHTK(mel)
	}
	return MelToHzSlaney(mel)
}

// MelFilterbank is an immutable [n_mels x n_bins] triangular filterbank
// matrix, row-major: row m, bin b at index m*n_bins+b.
type MelFilterbank struct {
	NMels  int
	NBins  int
	Matrix []float64
}

// BuildMel constructs the mel filterbank for an n_fft-point STFT at the
// given sample rate.
func BuildMel(cfg MelConfig, nFFT, sampleRate int) *MelFilterbank {
	nBins := nFFT/2 + 1
	fMax := cfg.FMax
	if fMax <= 0 {
		fMax = float64(sampleRate) / 2
	}

	melMin := hzToMel(cfg.FMin, cfg.HTK)
	melMax := hzToMel(fMax, cfg.HTK)

	// n_mels + 2 equally spaced mel points, converted back to Hz, then to
	// fractional FFT bins.
	points := cfg.NMels + 2
	hzPoints := make([]float64, points)
	for i := 0; i < points; i++ {
		mel := melMin + (melMax-melMin)*float64(i)/float64(points-1)
		hzPoints[i] = melToHz(mel, cfg.HTK)
	}
	binPoints := make([]float64, points)
	for i, hz := range hzPoints {
		binPoints[i] = hz * float64(nFFT) / float64(sampleRate)
	}

	matrix := make([]float64, cfg.NMels*nBins)
	for m := 0; m < cfg.NMels; m++ {
		left, center, right := binPoints[m], binPoints[m+1], binPoints[m+2]
		for b := 0; b < nBins; b++ {
			fb := float64(b)
			var weight float64
			switch {
			case fb >= left && fb <= center && center > left:
				weight = (fb - left) / (center - left)
			case fb > center && fb <= right && right > center:
				weight = (right - fb) / (right - center)
			}
			if weight < 0 {
				weight = 0
			}
			if cfg.Norm == NormSlaney {
				enorm := 2.0 / (hzPoints[m+2] - hzPoints[m])
				weight *= enorm
			}
			matrix[m*nBins+b] = weight
		}
	}

	return &MelFilterbank{NMels: cfg.NMels, NBins: nBins, Matrix: matrix}
}
