package primitives

import (
	"math"
	"testing"
)

func TestFFTRecoversSineBin(t *testing.T) {
	n := 1024
	sr := 44100.0
	freq := 1000.0
	binWidth := sr / float64(n)
	targetBin := int(math.Round(freq / binWidth))

	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / sr)
	}

	f := NewFFT(n)
	spectrum := f.Forward(signal)
	mag := Magnitude(spectrum)

	peak := 0
	for i, v := range mag {
		if v > mag[peak] {
			peak = i
		}
	}
	if peak != targetBin {
		t.Fatalf("peak bin = %d, want %d", peak, targetBin)
	}
}

func TestFFTInverseRoundTrip(t *testing.T) {
	n := 512
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2*math.Pi*5*float64(i)/float64(n)) + 0.3*math.Cos(2*math.Pi*20*float64(i)/float64(n))
	}

	f := NewFFT(n)
	spectrum := f.Forward(signal)
	recovered := f.Inverse(spectrum)

	if len(recovered) != n {
		t.Fatalf("len(recovered) = %d, want %d", len(recovered), n)
	}
	for i := range signal {
		if math.Abs(signal[i]-recovered[i]) > 1e-9 {
			t.Fatalf("round trip mismatch at %d: %v vs %v", i, signal[i], recovered[i])
		}
	}
}

func TestFFTBinsAndN(t *testing.T) {
	f := NewFFT(1024)
	if f.N() != 1024 {
		t.Fatalf("N() = %d, want 1024", f.N())
	}
	if f.Bins() != 513 {
		t.Fatalf("Bins() = %d, want 513", f.Bins())
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 1024: 1024, 1025: 2048}
	for in, want := range cases {
		if got := NextPowerOfTwo(in); got != want {
			t.Fatalf("NextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMagnitudeAndPowerConsistent(t *testing.T) {
	spectrum := []complex128{complex(3, 4), complex(0, 0), complex(1, 0)}
	mag := Magnitude(spectrum)
	power := Power(spectrum)
	for i := range spectrum {
		if math.Abs(mag[i]*mag[i]-power[i]) > 1e-9 {
			t.Fatalf("mag^2 != power at %d: %v vs %v", i, mag[i]*mag[i], power[i])
		}
	}
	if mag[0] != 5 {
		t.Fatalf("Magnitude(3+4i) = %v, want 5", mag[0])
	}
}

func TestWrapPhaseRange(t *testing.T) {
	if math.Abs(WrapPhase(3*math.Pi)-(-math.Pi)) > 1e-9 && math.Abs(WrapPhase(3*math.Pi)-math.Pi) > 1e-9 {
		t.Fatalf("WrapPhase(3pi) = %v, want +-pi", WrapPhase(3*math.Pi))
	}
	if WrapPhase(math.NaN()) != 0 {
		t.Fatalf("WrapPhase(NaN) = %v, want 0", WrapPhase(math.NaN()))
	}
	if WrapPhase(math.Inf(1)) != 0 {
		t.Fatalf("WrapPhase(+Inf) = %v, want 0", WrapPhase(math.Inf(1)))
	}
}
