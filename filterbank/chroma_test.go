package filterbank

import (
	"math"
	"testing"
)

func TestChromaFilterbankRowsNonNegative(t *testing.T) {
	cfg := DefaultChromaConfig()
	fb := BuildChroma(cfg, 2048, 22050, 440)

	for c := 0; c < fb.NChroma; c++ {
		row := fb.Matrix[c*fb.NBins : (c+1)*fb.NBins]
		for _, v := range row {
			if v < 0 {
				t.Fatalf("row %d has negative entry %v", c, v)
			}
		}
	}
}

func TestChromaFilterbankRowsSumToOneWhenPopulated(t *testing.T) {
	cfg := DefaultChromaConfig()
	fb := BuildChroma(cfg, 2048, 22050, 440)

	for c := 0; c < fb.NChroma; c++ {
		row := fb.Matrix[c*fb.NBins : (c+1)*fb.NBins]
		var sum float64
		for _, v := range row {
			sum += v
		}
		if sum == 0 {
			continue // some rows may receive no bins at very low n_fft
		}
		if math.Abs(sum-1.0) > 0.01 {
			t.Fatalf("row %d sum = %v, want ~1", c, sum)
		}
	}
}

func TestChromaDimensions(t *testing.T) {
	cfg := DefaultChromaConfig()
	fb := BuildChroma(cfg, 1024, 22050, 440)
	if fb.NBins != 1024/2+1 {
		t.Fatalf("NBins = %d, want %d", fb.NBins, 1024/2+1)
	}
	if len(fb.Matrix) != fb.NChroma*fb.NBins {
		t.Fatalf("matrix length = %d, want %d", len(fb.Matrix), fb.NChroma*fb.NBins)
	}
}
