package filterbank

import "testing"

func TestApplyIdentityLikeFilterbank(t *testing.T) {
	// A 2x2 filterbank that just copies bin 0 into row 0 and bin 1 into row 1.
	fbMatrix := []float64{1, 0, 0, 1}
	spec := []float64{3, 4, 5, 6} // [2 bins x 2 frames]

	out := Apply(fbMatrix, 2, 2, spec, 2)
	want := []float64{3, 4, 5, 6}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestApplySumsAcrossBins(t *testing.T) {
	// A 1x3 filterbank summing all three bins per frame.
	fbMatrix := []float64{1, 1, 1}
	spec := []float64{
		1, 2, // bin 0, frames 0..1
		3, 4, // bin 1
		5, 6, // bin 2
	}
	out := Apply(fbMatrix, 1, 3, spec, 2)
	want := []float64{9, 12}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}
