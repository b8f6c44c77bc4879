package primitives

// Autocorrelate computes the autocorrelation of signal via the
// Wiener-Khinchin theorem: zero-mean the signal, zero-pad to the next
// power of two at least 2n, take |FFT|^2, inverse-transform, and
// normalize by variance*n so lag 0 is 1. Returns n lags (0..n-1).
func Autocorrelate(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	centered := make([]float64, n)
	for i, v := range signal {
		centered[i] = v - mean
		variance += centered[i] * centered[i]
	}
	variance /= float64(n)

	padded := NextPowerOfTwo(2 * n)
	buf := make([]float64, padded)
	copy(buf, centered)

	fft := NewFFT(padded)
	spectrum := fft.Forward(buf)
	power := Power(spectrum)

	powerComplex := make([]complex128, len(power))
	for i, p := range power {
		powerComplex[i] = complex(p, 0)
	}
	corr := fft.Inverse(powerComplex)

	out := make([]float64, n)
	if variance == 0 {
		return out
	}
	denom := variance * float64(n)
	for lag := 0; lag < n; lag++ {
		out[lag] = corr[lag] / denom
	}
	return out
}
