package analysis

import "testing"

func TestSelfSimilarityMatrixDiagonalIsOne(t *testing.T) {
	features := []float64{
		1, 0, 0, 1, // dim 0 over 4 frames
		0, 1, 0, 1, // dim 1
	}
	ssm := SelfSimilarityMatrix(features, 2, 4)
	for i := 0; i < 4; i++ {
		if ssm[i*4+i] != 1 {
			t.Fatalf("diagonal[%d] = %v, want 1", i, ssm[i*4+i])
		}
	}
}

func TestSelfSimilarityMatrixSymmetric(t *testing.T) {
	features := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	ssm := SelfSimilarityMatrix(features, 2, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if ssm[i*4+j] != ssm[j*4+i] {
				t.Fatalf("SSM not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestPickBoundariesEnforcesMinSpacing(t *testing.T) {
	novelty := make([]float64, 20)
	novelty[5] = 0.9
	novelty[6] = 0.95
	novelty[14] = 0.8

	cfg := BoundaryConfig{KernelSize: 4, Threshold: 0.1, PeakDistanceSec: 1, FrameDuration: 0.1}
	boundaries := PickBoundaries(novelty, cfg)
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i].Frame-boundaries[i-1].Frame < 10 {
			t.Fatalf("boundaries too close: %d and %d", boundaries[i-1].Frame, boundaries[i].Frame)
		}
	}
}
