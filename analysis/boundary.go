package analysis

import "math"

// Boundary is a detected structural transition.
type Boundary struct {
	Time     float64
	Frame    int
	Strength float64
}

// BoundaryConfig controls self-similarity novelty detection.
type BoundaryConfig struct {
	KernelSize     int
	Threshold      float64
	PeakDistanceSec float64
	FrameDuration  float64
}

// DefaultBoundaryConfig uses a 32-frame checkerboard kernel and a 4s
// minimum peak spacing.
func DefaultBoundaryConfig(frameDuration float64) BoundaryConfig {
	return BoundaryConfig{KernelSize: 32, Threshold: 0.1, PeakDistanceSec: 4, FrameDuration: frameDuration}
}

// SelfSimilarityMatrix computes S[i,j] = cosine(f_i, f_j) for a
// [n_dims x n_frames] feature matrix, row-major, returning an
// [n_frames x n_frames] matrix.
func SelfSimilarityMatrix(features []float64, nDims, nFrames int) []float64 {
	vectors := make([][]float64, nFrames)
	for t := 0; t < nFrames; t++ {
		v := make([]float64, nDims)
		for d := 0; d < nDims; d++ {
			v[d] = features[d*nFrames+t]
		}
		vectors[t] = v
	}

	ssm := make([]float64, nFrames*nFrames)
	for i := 0; i < nFrames; i++ {
		ssm[i*nFrames+i] = 1
		for j := i + 1; j < nFrames; j++ {
			sim := cosineSimilarity(vectors[i], vectors[j])
			ssm[i*nFrames+j] = sim
			ssm[j*nFrames+i] = sim
		}
	}
	return ssm
}

// CheckerboardNovelty computes the novelty curve from a self-similarity
// matrix using a K x K kernel whose four quadrants have signs (+,-,-,+).
func CheckerboardNovelty(ssm []float64, nFrames, kernelSize int) []float64 {
	half := kernelSize / 2
	novelty := make([]float64, nFrames)

	for i := 0; i < nFrames; i++ {
		var sum float64
		var count int
		for di := -half; di < half; di++ {
			for dj := -half; dj < half; dj++ {
				row := i + di
				col := i + dj
				if row < 0 || row >= nFrames || col < 0 || col >= nFrames {
					continue
				}
				sign := 1.0
				if (di < 0) != (dj < 0) {
					sign = -1.0
				}
				sum += sign * ssm[row*nFrames+col]
				count++
			}
		}
		if count > 0 {
			novelty[i] = sum / float64(count)
		}
	}

	return normalizeNovelty(novelty)
}

func normalizeNovelty(novelty []float64) []float64 {
	out := make([]float64, len(novelty))
	maxV := 0.0
	for _, v := range novelty {
		if v < 0 {
			v = 0
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == 0 {
		return out
	}
	for i, v := range novelty {
		if v < 0 {
			v = 0
		}
		out[i] = v / maxV
	}
	return out
}

// PickBoundaries enforces a minimum peak spacing over the novelty curve,
// keeping the stronger peak whenever two conflict.
func PickBoundaries(novelty []float64, cfg BoundaryConfig) []Boundary {
	minSpacing := int(math.Round(cfg.PeakDistanceSec / cfg.FrameDuration))
	if minSpacing < 1 {
		minSpacing = 1
	}

	var peaks []Boundary
	for i := 1; i < len(novelty)-1; i++ {
		if novelty[i] < cfg.Threshold {
			continue
		}
		if novelty[i] <= novelty[i-1] || novelty[i] <= novelty[i+1] {
			continue
		}
		peaks = append(peaks, Boundary{Time: float64(i) * cfg.FrameDuration, Frame: i, Strength: novelty[i]})
	}

	return enforceSpacing(peaks, minSpacing)
}

func enforceSpacing(peaks []Boundary, minSpacing int) []Boundary {
	if len(peaks) == 0 {
		return nil
	}
	var kept []Boundary
	for _, p := range peaks {
		conflict := -1
		for i, k := range kept {
			if abs(p.Frame-k.Frame) < minSpacing {
				conflict = i
				break
			}
		}
		if conflict == -1 {
			kept = append(kept, p)
			continue
		}
		if p.Strength > kept[conflict].Strength {
			kept[conflict] = p
		}
	}
	return kept
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
