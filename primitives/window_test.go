package primitives

import (
	"math"
	"testing"
)

func TestWindowCacheHannShape(t *testing.T) {
	wc := NewWindowCache()
	n := 512
	coeffs := wc.Coefficients(Hann, n, 0)
	if len(coeffs) != n {
		t.Fatalf("len(coeffs) = %d, want %d", len(coeffs), n)
	}
	if coeffs[0] > 1e-6 || coeffs[n-1] > 1e-6 {
		t.Fatalf("Hann window should taper to ~0 at the edges, got %v and %v", coeffs[0], coeffs[n-1])
	}
	mid := coeffs[n/2]
	if mid < 0.9 {
		t.Fatalf("Hann window should peak near 1 at center, got %v", mid)
	}
}

func TestWindowCacheRectIsAllOnes(t *testing.T) {
	wc := NewWindowCache()
	coeffs := wc.Coefficients(Rect, 256, 0)
	for i, v := range coeffs {
		if v != 1 {
			t.Fatalf("rect[%d] = %v, want 1", i, v)
		}
	}
}

func TestWindowCacheCentersShorterWinLength(t *testing.T) {
	wc := NewWindowCache()
	nFFT := 512
	winLength := 256
	coeffs := wc.Coefficients(Hamming, nFFT, winLength)
	if len(coeffs) != nFFT {
		t.Fatalf("len(coeffs) = %d, want %d", len(coeffs), nFFT)
	}
	start := (nFFT - winLength) / 2
	for i := 0; i < start; i++ {
		if coeffs[i] != 0 {
			t.Fatalf("coeffs[%d] = %v, want 0 (zero-padded region)", i, coeffs[i])
		}
	}
	for i := start + winLength; i < nFFT; i++ {
		if coeffs[i] != 0 {
			t.Fatalf("coeffs[%d] = %v, want 0 (zero-padded region)", i, coeffs[i])
		}
	}
}

func TestWindowCacheReusesComputedCoefficients(t *testing.T) {
	wc := NewWindowCache()
	a := wc.Coefficients(Blackman, 1024, 0)
	b := wc.Coefficients(Blackman, 1024, 0)
	if len(wc.cache) != 1 {
		t.Fatalf("len(cache) = %d, want 1 (second call should hit the cache)", len(wc.cache))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cached coefficients differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestWindowCacheDistinctKeysDontCollide(t *testing.T) {
	wc := NewWindowCache()
	wc.Coefficients(Hann, 512, 0)
	wc.Coefficients(Hamming, 512, 0)
	wc.Coefficients(Hann, 256, 0)
	if len(wc.cache) != 3 {
		t.Fatalf("len(cache) = %d, want 3 distinct keys", len(wc.cache))
	}
}

func TestComputeWindowNoNaNOrInf(t *testing.T) {
	for _, typ := range []WindowType{Hann, Hamming, Blackman, Rect} {
		coeffs := computeWindow(typ, 128)
		for i, v := range coeffs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("window type %v produced non-finite value at %d: %v", typ, i, v)
			}
		}
	}
}
