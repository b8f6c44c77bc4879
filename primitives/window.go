package primitives

import "gonum.org/v1/gonum/dsp/window"

// WindowType selects an analysis window shape.
type WindowType int

const (
	Hann WindowType = iota
	Hamming
	Blackman
	Rect
)

// WindowCache caches window coefficient vectors keyed by (type, length),
// avoiding recomputation across STFT calls that share an n_fft. It is an
// explicit, caller-owned cache rather than a package-level global, per the
// "no global/thread-local caches" redesign.
type WindowCache struct {
	cache map[windowKey][]float64
}

type windowKey struct {
	typ WindowType
	n   int
}

// NewWindowCache returns an empty cache ready to use.
func NewWindowCache() *WindowCache {
	return &WindowCache{cache: make(map[windowKey][]float64)}
}

// Coefficients returns the nFFT-length window of the given type and
// winLength (the window is centered and zero-padded when winLength <
// nFFT; winLength <= 0 means winLength == nFFT).
func (c *WindowCache) Coefficients(typ WindowType, nFFT, winLength int) []float64 {
	if winLength <= 0 {
		winLength = nFFT
	}
	key := windowKey{typ, winLength}
	coeffs, ok := c.cache[key]
	if !ok {
		coeffs = computeWindow(typ, winLength)
		c.cache[key] = coeffs
	}
	if winLength == nFFT {
		return coeffs
	}
	// Center in an nFFT-length buffer, zero-padded on both sides.
	out := make([]float64, nFFT)
	start := (nFFT - winLength) / 2
	copy(out[start:start+winLength], coeffs)
	return out
}

func computeWindow(typ WindowType, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 1
	}
	switch typ {
	case Hann:
		return window.Hann(values)
	case Hamming:
		return window.Hamming(values)
	case Blackman:
		return window.Blackman(values)
	default:
		return values // Rectangular: all ones.
	}
}
