// Package spectrogram computes the short-time Fourier transform and its
// inverse, plus Griffin-Lim magnitude-only phase reconstruction.
package spectrogram

import (
	"math"

	"github.com/austinkregel/sonare/primitives"
)

// Spectrogram is the complex STFT of a signal, stored row-major as
// [n_bins x n_frames]: bin b, frame t is at index b*n_frames+t. Magnitude
// and power are computed eagerly at construction (not lazily, so a
// Spectrogram is safe to read from multiple goroutines once built).
type Spectrogram struct {
	NFFT      int
	HopLength int
	SampleRate int
	NBins     int
	NFrames   int

	complexData []complex128
	magnitude   []float64
	power       []float64
}

// Config controls STFT framing.
type Config struct {
	NFFT       int
	HopLength  int
	SampleRate int
	Window     primitives.WindowType
	WinLength  int // 0 means == NFFT
	Center     bool
}

// DefaultConfig returns the conventional 2048/512 STFT configuration at
// the given sample rate with a centered Hann window.
func DefaultConfig(sampleRate int) Config {
	return Config{
		NFFT:       2048,
		HopLength:  512,
		SampleRate: sampleRate,
		Window:     primitives.Hann,
		Center:     true,
	}
}

// Compute performs the forward STFT of samples. If cfg.Center is true, the
// input is reflect-padded by NFFT/2 on both sides before framing.
func Compute(samples []float64, cfg Config, wc *primitives.WindowCache) *Spectrogram {
	nBins := cfg.NFFT/2 + 1

	input := samples
	if cfg.Center {
		input = reflectPad(samples, cfg.NFFT/2)
	}

	nFrames := 0
	if len(input) >= cfg.NFFT {
		nFrames = (len(input)-cfg.NFFT)/cfg.HopLength + 1
	}

	win := wc.Coefficients(cfg.Window, cfg.NFFT, cfg.WinLength)
	fft := primitives.NewFFT(cfg.NFFT)

	data := make([]complex128, nBins*nFrames)
	frame := make([]float64, cfg.NFFT)
	for t := 0; t < nFrames; t++ {
		start := t * cfg.HopLength
		for i := 0; i < cfg.NFFT; i++ {
			frame[i] = input[start+i] * win[i]
		}
		spec := fft.Forward(frame)
		for b := 0; b < nBins; b++ {
			data[b*nFrames+t] = spec[b]
		}
	}

	s := &Spectrogram{
		NFFT:       cfg.NFFT,
		HopLength:  cfg.HopLength,
		SampleRate: cfg.SampleRate,
		NBins:      nBins,
		NFrames:    nFrames,
		complexData: data,
	}
	s.computeMagnitudePower()
	return s
}

// FromComplex builds a Spectrogram from an already-computed complex
// matrix (row-major [nBins x nFrames]), used by effects that synthesize
// or modify spectra directly (HPSS masks, phase vocoder output).
func FromComplex(data []complex128, nFFT, hopLength, sampleRate, nBins, nFrames int) *Spectrogram {
	s := &Spectrogram{
		NFFT:        nFFT,
		HopLength:   hopLength,
		SampleRate:  sampleRate,
		NBins:       nBins,
		NFrames:     nFrames,
		complexData: data,
	}
	s.computeMagnitudePower()
	return s
}

func (s *Spectrogram) computeMagnitudePower() {
	s.magnitude = make([]float64, len(s.complexData))
	s.power = make([]float64, len(s.complexData))
	for i, z := range s.complexData {
		re, im := real(z), imag(z)
		p := re*re + im*im
		s.power[i] = p
		s.magnitude[i] = math.Sqrt(p)
	}
}

// At returns the complex value at bin b, frame t.
func (s *Spectrogram) At(bin, frame int) complex128 {
	return s.complexData[bin*s.NFrames+frame]
}

// Magnitude returns the full [n_bins x n_frames] magnitude matrix.
func (s *Spectrogram) Magnitude() []float64 { return s.magnitude }

// Power returns the full [n_bins x n_frames] power matrix.
func (s *Spectrogram) Power() []float64 { return s.power }

// Complex returns the full [n_bins x n_frames] complex matrix.
func (s *Spectrogram) Complex() []complex128 { return s.complexData }

// ToDB converts power to decibels: 10*log10(max(power/ref^2, amin)).
func (s *Spectrogram) ToDB(ref, amin float64) []float64 {
	out := make([]float64, len(s.power))
	refSq := ref * ref
	for i, p := range s.power {
		v := p / refSq
		if v < amin {
			v = amin
		}
		out[i] = 10 * math.Log10(v)
	}
	return out
}

func reflectPad(x []float64, pad int) []float64 {
	n := len(x)
	out := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		out[i] = x[reflectIndex(pad-i, n)]
	}
	copy(out[pad:pad+n], x)
	for i := 0; i < pad; i++ {
		out[pad+n+i] = x[reflectIndex(n-2-i, n)]
	}
	return out
}

func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
