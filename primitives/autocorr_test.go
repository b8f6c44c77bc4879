package primitives

import (
	"math"
	"testing"
)

func sineSignal(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	return out
}

func TestAutocorrelateEmpty(t *testing.T) {
	if got := Autocorrelate(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestAutocorrelateConstantSignalIsZero(t *testing.T) {
	signal := make([]float64, 64)
	for i := range signal {
		signal[i] = 5
	}
	corr := Autocorrelate(signal)
	for i, v := range corr {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("corr[%d] = %v, want ~0 for a constant (zero-variance) signal", i, v)
		}
	}
}

func TestAutocorrelateLagZeroIsOne(t *testing.T) {
	signal := sineSignal(256, 16)
	corr := Autocorrelate(signal)
	if math.Abs(corr[0]-1.0) > 1e-6 {
		t.Fatalf("corr[0] = %v, want ~1", corr[0])
	}
}

func TestAutocorrelatePeaksAtPeriod(t *testing.T) {
	period := 20.0
	signal := sineSignal(400, period)
	corr := Autocorrelate(signal)

	// Peak at the period lag should be near 1 and clearly above nearby lags.
	lag := int(period)
	if corr[lag] < 0.9 {
		t.Fatalf("corr[%d] = %v, want close to 1 at the fundamental period", lag, corr[lag])
	}
	if corr[lag] <= corr[lag+5] {
		t.Fatalf("expected corr at period lag (%v) to exceed a lag further away (%v)", corr[lag], corr[lag+5])
	}
}
