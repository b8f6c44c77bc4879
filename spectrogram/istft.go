package spectrogram

import "github.com/austinkregel/sonare/primitives"

// Inverse performs the inverse STFT via overlap-add with window-squared
// envelope normalization (COLA compensation). If targetLength > 0 the
// output is truncated or zero-padded to that length.
func Inverse(s *Spectrogram, cfg Config, wc *primitives.WindowCache, targetLength int) []float64 {
	win := wc.Coefficients(cfg.Window, cfg.NFFT, cfg.WinLength)
	fft := primitives.NewFFT(cfg.NFFT)

	outLen := (s.NFrames-1)*cfg.HopLength + cfg.NFFT
	if outLen < 0 {
		outLen = 0
	}
	signal := make([]float64, outLen)
	envelope := make([]float64, outLen)

	spectrum := make([]complex128, s.NBins)
	for t := 0; t < s.NFrames; t++ {
		for b := 0; b < s.NBins; b++ {
			spectrum[b] = s.At(b, t)
		}
		frame := fft.Inverse(spectrum)
		start := t * cfg.HopLength
		for i := 0; i < cfg.NFFT; i++ {
			signal[start+i] += frame[i] * win[i]
			envelope[start+i] += win[i] * win[i]
		}
	}

	const epsilon = 1e-8
	for i := range signal {
		if envelope[i] > epsilon {
			signal[i] /= envelope[i]
		}
	}

	if cfg.Center {
		pad := cfg.NFFT / 2
		if pad <= len(signal) {
			trimEnd := len(signal) - pad
			if trimEnd < pad {
				trimEnd = pad
			}
			signal = signal[pad:trimEnd]
		}
	}

	if targetLength > 0 {
		signal = fitLength(signal, targetLength)
	}
	return signal
}

func fitLength(x []float64, n int) []float64 {
	if len(x) == n {
		return x
	}
	out := make([]float64, n)
	copy(out, x)
	return out
}
