// Package primitives holds the L1 building blocks of the analysis
// pipeline: FFT, windowing, biquad IIR filters, DCT-II, FFT-based
// autocorrelation, and a sliding-window median.
package primitives

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT wraps gonum's real-to-complex FFT, caching the plan for one n_fft.
// Implementations commonly require n_fft to be a power of two; callers
// zero-pad shorter frames.
type FFT struct {
	n    int
	bins int
	fft  *fourier.FFT
}

// NewFFT builds an FFT plan for n real samples, producing n/2+1 complex
// bins.
func NewFFT(n int) *FFT {
	return &FFT{n: n, bins: n/2 + 1, fft: fourier.NewFFT(n)}
}

// N returns the configured transform length.
func (f *FFT) N() int { return f.n }

// Bins returns n/2+1, the number of complex output bins.
func (f *FFT) Bins() int { return f.bins }

// Forward computes the real-to-complex FFT of real (length n, zero-padded
// by the caller if shorter).
func (f *FFT) Forward(real []float64) []complex128 {
	return f.fft.Coefficients(nil, real)
}

// Inverse computes the complex-to-real inverse FFT, producing n real
// samples. gonum's Sequence is unnormalised (Sequence(Coefficients(x)) ==
// n*x), so the result is scaled by 1/n here to invert Forward exactly.
func (f *FFT) Inverse(spectrum []complex128) []float64 {
	out := f.fft.Sequence(nil, spectrum)
	scale := 1 / float64(f.n)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Magnitude returns |z| for each complex bin.
func Magnitude(spectrum []complex128) []float64 {
	out := make([]float64, len(spectrum))
	for i, z := range spectrum {
		out[i] = cmplx.Abs(z)
	}
	return out
}

// Power returns |z|^2 for each complex bin.
func Power(spectrum []complex128) []float64 {
	out := make([]float64, len(spectrum))
	for i, z := range spectrum {
		re, im := real(z), imag(z)
		out[i] = re*re + im*im
	}
	return out
}

// WrapPhase wraps a phase to [-pi, pi], coercing non-finite input to 0.
func WrapPhase(phase float64) float64 {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		return 0
	}
	return math.Remainder(phase, 2*math.Pi)
}
