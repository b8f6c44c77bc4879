package primitives

import "testing"

func TestDCTCacheReusesMatrix(t *testing.T) {
	c := NewDCTCache(4)
	a := c.Matrix(13, 40)
	b := c.Matrix(13, 40)
	if len(a) != 13 || len(a[0]) != 40 {
		t.Fatalf("shape = %dx%d, want 13x40", len(a), len(a[0]))
	}
	if &a[0][0] != &b[0][0] {
		t.Fatal("expected cached matrix to be reused")
	}
}

func TestDCTCacheEviction(t *testing.T) {
	c := NewDCTCache(2)
	c.Matrix(10, 20)
	c.Matrix(11, 20)
	c.Matrix(12, 20)
	if len(c.entries) != 2 {
		t.Fatalf("cache size = %d, want 2", len(c.entries))
	}
	if _, ok := c.entries[dctKey{10, 20}]; ok {
		t.Fatal("oldest entry should have been evicted")
	}
}

func TestDCTOrthonormalRoundTrip(t *testing.T) {
	c := NewDCTCache(1)
	m := c.Matrix(8, 8)
	input := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	coeffs := Apply(m, input)

	// D is orthonormal, so Dᵀ·(D·x) reconstructs x.
	recon := make([]float64, 8)
	for n := 0; n < 8; n++ {
		var sum float64
		for k := 0; k < 8; k++ {
			sum += m[k][n] * coeffs[k]
		}
		recon[n] = sum
	}
	for i := range input {
		if diff := recon[i] - input[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("reconstruction[%d] = %v, want %v", i, recon[i], input[i])
		}
	}
}

func TestLifterNoOpWhenZero(t *testing.T) {
	in := []float64{1, 2, 3}
	out := Lifter(in, 0)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("lifter with L=0 should be identity, got %v", out)
		}
	}
}

func TestLifterBoostsHigherCoefficients(t *testing.T) {
	in := []float64{1, 1, 1, 1}
	out := Lifter(in, 22)
	if out[0] != in[0] {
		t.Fatalf("coefficient 0 should be unscaled, got %v", out[0])
	}
	if out[1] <= in[1] {
		t.Fatalf("coefficient 1 should be boosted, got %v", out[1])
	}
}
