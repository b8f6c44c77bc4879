package feature

import (
	"math"
	"sort"

	"github.com/austinkregel/sonare/spectrogram"
)

// SpectralFeatures holds per-frame scalar descriptors.
type SpectralFeatures struct {
	Centroid  []float64
	Bandwidth []float64
	Rolloff   []float64
	Flatness  []float64
	ZCR       []float64
	RMS       []float64
}

// ComputeSpectralFeatures derives centroid, bandwidth, rolloff, flatness,
// ZCR, and RMS per frame from a Spectrogram and the original time-domain
// samples (for ZCR/RMS, computed frame-synchronously).
func ComputeSpectralFeatures(s *spectrogram.Spectrogram, samples []float64, rolloffRatio float64) *SpectralFeatures {
	if rolloffRatio <= 0 {
		rolloffRatio = 0.85
	}
	n := s.NFrames
	f := &SpectralFeatures{
		Centroid:  make([]float64, n),
		Bandwidth: make([]float64, n),
		Rolloff:   make([]float64, n),
		Flatness:  make([]float64, n),
		ZCR:       make([]float64, n),
		RMS:       make([]float64, n),
	}

	binFreq := make([]float64, s.NBins)
	for b := range binFreq {
		binFreq[b] = float64(b) * float64(s.SampleRate) / float64(s.NFFT)
	}

	mag := s.Magnitude()
	for t := 0; t < n; t++ {
		col := make([]float64, s.NBins)
		for b := 0; b < s.NBins; b++ {
			col[b] = mag[b*n+t]
		}

		f.Centroid[t] = spectralCentroid(col, binFreq)
		f.Bandwidth[t] = spectralBandwidth(col, binFreq, f.Centroid[t], 2)
		f.Rolloff[t] = spectralRolloff(col, binFreq, rolloffRatio)
		f.Flatness[t] = spectralFlatness(col)
	}

	frameLen := s.NFFT
	hop := s.HopLength
	for t := 0; t < n; t++ {
		start := t * hop
		end := start + frameLen
		if end > len(samples) {
			end = len(samples)
		}
		if start >= end {
			continue
		}
		frame := samples[start:end]
		f.ZCR[t] = zeroCrossingRate(frame)
		f.RMS[t] = rmsEnergy(frame)
	}

	return f
}

func spectralCentroid(mag, freq []float64) float64 {
	var num, denom float64
	for i, m := range mag {
		num += freq[i] * m
		denom += m
	}
	if denom == 0 {
		return 0
	}
	return num / denom
}

func spectralBandwidth(mag, freq []float64, centroid float64, p float64) float64 {
	var num, denom float64
	for i, m := range mag {
		num += math.Pow(math.Abs(freq[i]-centroid), p) * m
		denom += m
	}
	if denom == 0 {
		return 0
	}
	return math.Pow(num/denom, 1/p)
}

func spectralRolloff(mag, freq []float64, ratio float64) float64 {
	var total float64
	for _, m := range mag {
		total += m
	}
	if total == 0 {
		return 0
	}
	target := ratio * total
	var cumulative float64
	for i, m := range mag {
		cumulative += m
		if cumulative >= target {
			return freq[i]
		}
	}
	if len(freq) == 0 {
		return 0
	}
	return freq[len(freq)-1]
}

func spectralFlatness(mag []float64) float64 {
	n := len(mag)
	if n == 0 {
		return 0
	}
	var logSum, arithSum float64
	const eps = 1e-10
	for _, m := range mag {
		v := m
		if v < eps {
			v = eps
		}
		logSum += math.Log(v)
		arithSum += v
	}
	geoMean := math.Exp(logSum / float64(n))
	arithMean := arithSum / float64(n)
	if arithMean == 0 {
		return 0
	}
	return geoMean / arithMean
}

func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	var crossings int
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

func rmsEnergy(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// SpectralContrast computes, per frame, log(peak)-log(valley) within
// nBands octave-like bands plus one residual band holding the global
// log-mean. peak/valley use the top/bottom quantile (alpha) of
// magnitudes within each band.
func SpectralContrast(s *spectrogram.Spectrogram, nBands int, alpha float64) [][]float64 {
	if nBands < 1 {
		nBands = 6
	}
	if alpha <= 0 || alpha >= 0.5 {
		alpha = 0.02
	}
	mag := s.Magnitude()
	n := s.NFrames

	// Octave-like band edges across the bin range [1, NBins-1].
	edges := make([]int, nBands+1)
	edges[0] = 1
	edges[nBands] = s.NBins
	for b := 1; b < nBands; b++ {
		frac := float64(b) / float64(nBands)
		edges[b] = 1 + int(frac*float64(s.NBins-1))
	}

	out := make([][]float64, nBands+1)
	for b := range out {
		out[b] = make([]float64, n)
	}

	const eps = 1e-10
	for t := 0; t < n; t++ {
		var globalSum float64
		var globalCount int
		for b := 0; b < nBands; b++ {
			start, end := edges[b], edges[b+1]
			if end <= start {
				continue
			}
			vals := make([]float64, end-start)
			for i := start; i < end; i++ {
				v := mag[i*n+t]
				if v < eps {
					v = eps
				}
				vals[i-start] = v
				globalSum += math.Log(v)
				globalCount++
			}
			sort.Float64s(vals)
			k := int(alpha * float64(len(vals)))
			if k < 1 {
				k = 1
			}
			if k > len(vals) {
				k = len(vals)
			}
			var valleySum, peakSum float64
			for i := 0; i < k; i++ {
				valleySum += vals[i]
				peakSum += vals[len(vals)-1-i]
			}
			valley := valleySum / float64(k)
			peak := peakSum / float64(k)
			out[b][t] = math.Log(peak) - math.Log(valley)
		}
		if globalCount > 0 {
			out[nBands][t] = globalSum / float64(globalCount)
		}
	}
	return out
}
