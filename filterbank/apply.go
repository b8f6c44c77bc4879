package filterbank

import "gonum.org/v1/gonum/mat"

// Apply computes filterbank · spectrogram, the hot inner loop of mel and
// chroma projection, delegating to gonum's GEMM instead of a hand-rolled
// double loop. filterbankMatrix is row-major [nRows x nBins], spectrogram
// is row-major [nBins x nFrames]; the result is row-major [nRows x nFrames].
func Apply(filterbankMatrix []float64, nRows, nBins int, spectrogram []float64, nFrames int) []float64 {
	fb := mat.NewDense(nRows, nBins, filterbankMatrix)
	spec := mat.NewDense(nBins, nFrames, spectrogram)

	var result mat.Dense
	result.Mul(fb, spec)

	out := make([]float64, nRows*nFrames)
	for r := 0; r < nRows; r++ {
		copy(out[r*nFrames:(r+1)*nFrames], result.RawRowView(r))
	}
	return out
}
