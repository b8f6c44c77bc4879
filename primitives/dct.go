package primitives

import "math"

// DCTCache caches orthonormal DCT-II matrices keyed by (nOutput, nInput),
// evicting the oldest entry once it grows past maxCached entries. Owned
// explicitly by the caller rather than a package-level cache.
type DCTCache struct {
	order   []dctKey
	entries map[dctKey][][]float64
	max     int
}

type dctKey struct{ nOutput, nInput int }

// NewDCTCache returns a cache that evicts past maxCached matrices.
func NewDCTCache(maxCached int) *DCTCache {
	if maxCached <= 0 {
		maxCached = 8
	}
	return &DCTCache{entries: make(map[dctKey][][]float64), max: maxCached}
}

// Matrix returns the orthonormal nOutput x nInput DCT-II matrix,
// D[k][n] = scale(k) * sqrt(2/nInput) * cos(pi/nInput * (n+0.5) * k),
// with D·Dᵀ = I when nOutput == nInput.
func (c *DCTCache) Matrix(nOutput, nInput int) [][]float64 {
	key := dctKey{nOutput, nInput}
	if m, ok := c.entries[key]; ok {
		return m
	}
	m := buildDCTMatrix(nOutput, nInput)
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = m
	return m
}

func buildDCTMatrix(nOutput, nInput int) [][]float64 {
	m := make([][]float64, nOutput)
	base := math.Sqrt(2.0 / float64(nInput))
	for k := 0; k < nOutput; k++ {
		row := make([]float64, nInput)
		scale := base
		if k == 0 {
			scale = base / math.Sqrt2
		}
		for n := 0; n < nInput; n++ {
			row[n] = scale * math.Cos(math.Pi/float64(nInput)*(float64(n)+0.5)*float64(k))
		}
		m[k] = row
	}
	return m
}

// Apply multiplies the nOutput x nInput DCT matrix by input (length
// nInput), returning the nOutput coefficients.
func Apply(matrix [][]float64, input []float64) []float64 {
	out := make([]float64, len(matrix))
	for k, row := range matrix {
		var sum float64
		n := len(row)
		if len(input) < n {
			n = len(input)
		}
		for i := 0; i < n; i++ {
			sum += row[i] * input[i]
		}
		out[k] = sum
	}
	return out
}

// Lifter scales cepstral coefficient k by 1 + (L/2)*sin(pi*k/L), boosting
// higher coefficients; a no-op when L <= 0.
func Lifter(coeffs []float64, L int) []float64 {
	if L <= 0 {
		return coeffs
	}
	out := make([]float64, len(coeffs))
	for k, c := range coeffs {
		out[k] = c * (1 + (float64(L)/2)*math.Sin(math.Pi*float64(k)/float64(L)))
	}
	return out
}
