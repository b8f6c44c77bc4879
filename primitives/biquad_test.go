package primitives

import (
	"math"
	"testing"
)

func TestBiquadLowpassAttenuatesHighFrequency(t *testing.T) {
	sampleRate := 44100.0
	lp := ButterworthLowpass(200, sampleRate)

	n := 4096
	low := make([]float64, n)
	high := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		low[i] = math.Sin(2 * math.Pi * 50 * t)
		high[i] = math.Sin(2 * math.Pi * 8000 * t)
	}

	lp.ProcessBuffer(low)
	lp.Reset()
	lp.ProcessBuffer(high)

	rms := func(x []float64) float64 {
		var sum float64
		for _, v := range x[n/2:] {
			sum += v * v
		}
		return math.Sqrt(sum / float64(len(x[n/2:])))
	}

	if rms(high) > 0.1*rms(low) {
		t.Fatalf("lowpass did not sufficiently attenuate high frequency: low rms=%v high rms=%v", rms(low), rms(high))
	}
}

func TestBiquadResetClearsState(t *testing.T) {
	f := ButterworthLowpass(500, 44100)
	f.Process(1)
	f.Process(1)
	f.Reset()
	if f.z1 != 0 || f.z2 != 0 {
		t.Fatal("reset should zero internal state")
	}
}

func TestFiltFiltPreservesLength(t *testing.T) {
	sampleRate := 44100.0
	n := 2048
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 100 * float64(i) / sampleRate)
	}
	lp := ButterworthLowpass(1000, sampleRate)
	out := FiltFilt(lp, signal)
	if len(out) != n {
		t.Fatalf("length changed: %d vs %d", len(out), n)
	}
}

func TestNotchAttenuatesCenterFrequency(t *testing.T) {
	sampleRate := 44100.0
	notch := Notch(1000, sampleRate, 4)

	n := 4096
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
	}
	notch.ProcessBuffer(signal)

	var sum float64
	for _, v := range signal[n/2:] {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(signal[n/2:])))
	if rms > 0.2 {
		t.Fatalf("notch should attenuate its center frequency, rms=%v", rms)
	}
}
