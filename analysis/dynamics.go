package analysis

import (
	"math"
	"sort"
)

// DynamicsProfile summarises loudness variation over a track.
type DynamicsProfile struct {
	LoudnessRangeDB float64
	CrestFactor     float64
	Envelope        []bool // true = "loud" segment, per frame
}

// DynamicsAnalyzer derives RMS-based loudness statistics.
type DynamicsAnalyzer struct{}

// NewDynamicsAnalyzer builds a dynamics analyzer.
func NewDynamicsAnalyzer() *DynamicsAnalyzer { return &DynamicsAnalyzer{} }

// Analyze computes loudness range (dB between the 95th and 5th
// percentile RMS), crest factor (peak/RMS), and a coarse loud/quiet
// envelope segmentation relative to the median RMS.
func (d *DynamicsAnalyzer) Analyze(rms []float64) DynamicsProfile {
	if len(rms) == 0 {
		return DynamicsProfile{}
	}

	sorted := append([]float64(nil), rms...)
	sort.Float64s(sorted)

	p05 := percentile(sorted, 0.05)
	p95 := percentile(sorted, 0.95)
	median := percentile(sorted, 0.5)

	var loudnessRange float64
	if p05 > 0 {
		loudnessRange = 20 * math.Log10(p95/p05)
	}

	peak := sorted[len(sorted)-1]
	var meanRMS float64
	for _, v := range rms {
		meanRMS += v
	}
	meanRMS /= float64(len(rms))
	crest := 0.0
	if meanRMS > 0 {
		crest = peak / meanRMS
	}

	envelope := make([]bool, len(rms))
	for i, v := range rms {
		envelope[i] = v >= median
	}

	return DynamicsProfile{LoudnessRangeDB: loudnessRange, CrestFactor: crest, Envelope: envelope}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
