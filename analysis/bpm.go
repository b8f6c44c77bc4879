package analysis

import (
	"math"
	"sort"

	"github.com/austinkregel/sonare/primitives"
)

// BpmEstimate is the result of tempo estimation.
type BpmEstimate struct {
	BPM        float64
	Confidence float64
}

// BpmConfig controls tempo search.
type BpmConfig struct {
	SampleRate int
	HopLength  int
	BpmMin     float64
	BpmMax     float64
	StartBpm   float64
}

// DefaultBpmConfig searches 40-240 BPM with a 120 BPM prior.
func DefaultBpmConfig(sampleRate, hopLength int) BpmConfig {
	return BpmConfig{SampleRate: sampleRate, HopLength: hopLength, BpmMin: 40, BpmMax: 240, StartBpm: 120}
}

func bpmToLag(bpm float64, sampleRate, hopLength int) int {
	if bpm <= 0 {
		return 1
	}
	return int(60 * float64(sampleRate) / (bpm * float64(hopLength)))
}

func lagToBpm(lag int, sampleRate, hopLength int) float64 {
	if lag <= 0 {
		return 0
	}
	return 60 * float64(sampleRate) / (float64(lag) * float64(hopLength))
}

// BpmAnalyzer estimates tempo from an onset strength envelope via
// autocorrelation, harmonic clustering, and a musical-range heuristic.
type BpmAnalyzer struct {
	cfg BpmConfig
}

// NewBpmAnalyzer builds an analyzer with the given configuration.
func NewBpmAnalyzer(cfg BpmConfig) *BpmAnalyzer {
	return &BpmAnalyzer{cfg: cfg}
}

type tempoCandidate struct {
	bpm    float64
	weight float64
}

// Estimate computes the dominant tempo of an onset strength envelope.
func (a *BpmAnalyzer) Estimate(onsetEnvelope []float64) BpmEstimate {
	corr := primitives.Autocorrelate(onsetEnvelope)

	lagMax := bpmToLag(a.cfg.BpmMin, a.cfg.SampleRate, a.cfg.HopLength)
	if lagMax >= len(corr) {
		lagMax = len(corr) - 1
	}
	lagMin := bpmToLag(a.cfg.BpmMax, a.cfg.SampleRate, a.cfg.HopLength)
	if lagMin < 1 {
		lagMin = 1
	}

	candidates := findTempoPeaks(corr, lagMin, lagMax, a.cfg.SampleRate, a.cfg.HopLength)
	if len(candidates) == 0 {
		return BpmEstimate{BPM: a.cfg.StartBpm, Confidence: 0}
	}

	multiset := buildWeightedMultiset(candidates)
	histogram := buildHistogram(multiset, 0.5)
	clusters := harmonicCluster(histogram)

	return smartChoice(clusters)
}

func findTempoPeaks(corr []float64, lagMin, lagMax, sampleRate, hopLength int) []tempoCandidate {
	var out []tempoCandidate
	for lag := lagMin + 1; lag < lagMax && lag < len(corr)-1; lag++ {
		if corr[lag] > corr[lag-1] && corr[lag] > corr[lag+1] && corr[lag] > 0 {
			out = append(out, tempoCandidate{
				bpm:    lagToBpm(lag, sampleRate, hopLength),
				weight: corr[lag],
			})
		}
	}
	return out
}

func buildWeightedMultiset(candidates []tempoCandidate) []float64 {
	var out []float64
	for _, c := range candidates {
		reps := int(math.Round(c.weight * 100))
		if reps < 1 {
			reps = 1
		}
		for i := 0; i < reps; i++ {
			out = append(out, c.bpm)
		}
	}
	return out
}

type histBin struct {
	bpm   float64
	votes int
}

func buildHistogram(multiset []float64, binWidth float64) []histBin {
	counts := make(map[int]int)
	for _, bpm := range multiset {
		bin := int(math.Round(bpm / binWidth))
		counts[bin]++
	}
	bins := make([]histBin, 0, len(counts))
	for bin, votes := range counts {
		bins = append(bins, histBin{bpm: float64(bin) * binWidth, votes: votes})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].votes > bins[j].votes })

	k := 15
	if k > len(bins) {
		k = len(bins)
	}
	return bins[:k]
}

type tempoCluster struct {
	base  float64
	votes int
	bins  []histBin
}

var harmonicRatios = []float64{1, 2, 3, 0.5, 1.0 / 3, 1.5, 2.0 / 3}

func harmonicCluster(bins []histBin) []tempoCluster {
	const epsilon = 0.03
	var clusters []tempoCluster
	for _, b := range bins {
		placed := false
		for i := range clusters {
			ratio := b.bpm / clusters[i].base
			for _, r := range harmonicRatios {
				if math.Abs(ratio-r) < epsilon || math.Abs(ratio-1/r) < epsilon {
					clusters[i].votes += b.votes
					clusters[i].bins = append(clusters[i].bins, b)
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			clusters = append(clusters, tempoCluster{base: b.bpm, votes: b.votes, bins: []histBin{b}})
		}
	}
	return clusters
}

func smartChoice(clusters []tempoCluster) BpmEstimate {
	if len(clusters) == 0 {
		return BpmEstimate{}
	}

	total := 0
	for _, c := range clusters {
		total += c.votes
	}

	baseIdx := 0
	for i, c := range clusters {
		if c.votes > clusters[baseIdx].votes {
			baseIdx = i
		}
	}
	base := clusters[baseIdx]

	// Prefer a strictly-higher-BPM cluster if it carries >= 15% of total votes.
	for i, c := range clusters {
		if i == baseIdx {
			continue
		}
		if c.base > base.base && float64(c.votes) >= 0.15*float64(total) {
			rep := representativeBin(c)
			return BpmEstimate{BPM: rep.bpm, Confidence: safeDiv(c.votes, total)}
		}
	}

	// Peak votes within the base cluster.
	peakVotes := 0
	for _, b := range base.bins {
		if b.votes > peakVotes {
			peakVotes = b.votes
		}
	}

	if bpm, ok := bestInRange(base.bins, 80, 180, 0.3*float64(peakVotes)); ok {
		return BpmEstimate{BPM: bpm, Confidence: safeDiv(base.votes, total)}
	}
	if bpm, ok := bestInRange(base.bins, 60, 200, 0.5*float64(peakVotes)); ok {
		return BpmEstimate{BPM: bpm, Confidence: safeDiv(base.votes, total)}
	}

	rep := representativeBin(base)
	return BpmEstimate{BPM: rep.bpm, Confidence: safeDiv(base.votes, total)}
}

func bestInRange(bins []histBin, lo, hi, minVotes float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, b := range bins {
		if b.bpm >= lo && b.bpm <= hi && float64(b.votes) >= minVotes {
			if b.bpm > best {
				best = b.bpm
				found = true
			}
		}
	}
	return best, found
}

func representativeBin(c tempoCluster) histBin {
	best := c.bins[0]
	for _, b := range c.bins[1:] {
		if b.votes > best.votes {
			best = b
		}
	}
	return best
}

func safeDiv(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
