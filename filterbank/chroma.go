package filterbank

import "math"

// ChromaConfig controls chroma filterbank construction.
type ChromaConfig struct {
	NChroma  int
	Tuning   float64 // fractional semitone offset
	FMin     float64
	NOctaves int
}

// DefaultChromaConfig returns the conventional 12-bin chroma filterbank
// with no tuning offset.
func DefaultChromaConfig() ChromaConfig {
	return ChromaConfig{NChroma: 12, Tuning: 0, FMin: 0, NOctaves: 7}
}

// ChromaFilterbank is an immutable [n_chroma x n_bins] matrix, row-major:
// row c, bin b at index c*n_bins+b. Each row sums to ~1.
type ChromaFilterbank struct {
	NChroma int
	NBins   int
	Matrix  []float64
}

// BuildChroma constructs the chroma filterbank for an n_fft-point STFT at
// the given sample rate, tuned to the tuningRefHz reference pitch.
func BuildChroma(cfg ChromaConfig, nFFT, sampleRate int, tuningRefHz float64) *ChromaFilterbank {
	nBins := nFFT/2 + 1
	matrix := make([]float64, cfg.NChroma*nBins)

	for b := 1; b < nBins; b++ {
		freq := float64(b) * float64(sampleRate) / float64(nFFT)
		if freq < cfg.FMin || freq <= 0 {
			continue
		}
		pos := float64(cfg.NChroma)*math.Log2(freq/tuningRefHz) - cfg.Tuning
		pos = math.Mod(pos, float64(cfg.NChroma))
		if pos < 0 {
			pos += float64(cfg.NChroma)
		}

		lower := int(math.Floor(pos))
		frac := pos - float64(lower)
		upper := (lower + 1) % cfg.NChroma
		lower %= cfg.NChroma

		matrix[lower*nBins+b] += 1 - frac
		matrix[upper*nBins+b] += frac
	}

	fb := &ChromaFilterbank{NChroma: cfg.NChroma, NBins: nBins, Matrix: matrix}
	fb.normalizeRows()
	return fb
}

func (fb *ChromaFilterbank) normalizeRows() {
	for c := 0; c < fb.NChroma; c++ {
		row := fb.Matrix[c*fb.NBins : (c+1)*fb.NBins]
		var sum float64
		for _, v := range row {
			sum += v
		}
		if sum <= 0 {
			continue
		}
		for i := range row {
			row[i] /= sum
		}
	}
}
