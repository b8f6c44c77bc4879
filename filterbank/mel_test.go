package filterbank

import (
	"math"
	"testing"
)

func TestMelHzRoundTripSlaney(t *testing.T) {
	for _, hz := range []float64{0, 100, 500, 1000, 2000, 8000, 11025} {
		mel := HzToMelSlaney(hz)
		back := MelToHzSlaney(mel)
		if math.Abs(back-hz) > 0.1 {
			t.Errorf("hz=%v: round trip = %v, want within 0.1", hz, back)
		}
	}
}

func TestMelHzRoundTripHTK(t *testing.T) {
	for _, hz := range []float64{0, 100, 500, 1000, 2000, 8000, 11025} {
		mel := HzToMelHTK(hz)
		back := MelToHzHTK(mel)
		if math.Abs(back-hz) > 0.1 {
			t.Errorf("hz=%v: round trip = %v, want within 0.1", hz, back)
		}
	}
}

func TestMelFilterbankRowsNonNegativeAndNonZero(t *testing.T) {
	cfg := DefaultMelConfig()
	cfg.NMels = 40
	fb := BuildMel(cfg, 2048, 22050)

	for m := 0; m < fb.NMels; m++ {
		row := fb.Matrix[m*fb.NBins : (m+1)*fb.NBins]
		var sum float64
		for _, v := range row {
			if v < 0 {
				t.Fatalf("row %d has negative entry %v", m, v)
			}
			sum += v
		}
		if sum == 0 {
			t.Fatalf("row %d is all zero", m)
		}
	}
}

func TestMelFilterbankSlaneyPeakBoundedByEnorm(t *testing.T) {
	cfg := MelConfig{NMels: 40, FMin: 0, FMax: 0, HTK: false, Norm: NormSlaney}
	nFFT, sr := 2048, 22050
	fb := BuildMel(cfg, nFFT, sr)

	melMin := HzToMelSlaney(0)
	melMax := HzToMelSlaney(float64(sr) / 2)
	points := cfg.NMels + 2
	hzPoints := make([]float64, points)
	for i := 0; i < points; i++ {
		mel := melMin + (melMax-melMin)*float64(i)/float64(points-1)
		hzPoints[i] = MelToHzSlaney(mel)
	}

	// The triangle peak (weight at its center bin, before interpolation
	// rounding) must not exceed the Slaney area-normalisation constant.
	for m := 1; m < cfg.NMels-1; m++ {
		row := fb.Matrix[m*fb.NBins : (m+1)*fb.NBins]
		var peak float64
		for _, v := range row {
			if v > peak {
				peak = v
			}
		}
		expectedEnorm := 2.0 / (hzPoints[m+2] - hzPoints[m])
		if peak <= 0 || expectedEnorm <= 0 {
			continue
		}
		if peak > expectedEnorm*1.01 {
			t.Fatalf("row %d peak %v exceeds enorm %v", m, peak, expectedEnorm)
		}
	}
}
