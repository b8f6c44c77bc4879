package analysis

import "math"

// Beat is one detected beat instant.
type Beat struct {
	Frame    int
	Time     float64
	Strength float64
}

// TimeSignature is a detected meter.
type TimeSignature struct {
	Numerator   int
	Denominator int
	Confidence  float64
}

// BeatConfig controls the dynamic-programming beat tracker.
type BeatConfig struct {
	SampleRate int
	HopLength  int
	BPM        float64
	Tightness  float64
	Trim       bool
}

// DefaultBeatConfig uses tightness 100 with trimming enabled.
func DefaultBeatConfig(sampleRate, hopLength int, bpm float64) BeatConfig {
	return BeatConfig{SampleRate: sampleRate, HopLength: hopLength, BPM: bpm, Tightness: 100, Trim: true}
}

// BeatAnalyzer tracks a beat grid via dynamic programming over an onset
// strength envelope, grounded on the classic Ellis beat tracker.
type BeatAnalyzer struct {
	cfg BeatConfig
}

// NewBeatAnalyzer builds an analyzer with the given configuration.
func NewBeatAnalyzer(cfg BeatConfig) *BeatAnalyzer {
	return &BeatAnalyzer{cfg: cfg}
}

// Track runs the DP beat tracker over a normalized-to-[0,1] onset
// strength envelope and returns the beat grid with a BPM refined from the
// mean inter-beat interval.
func (a *BeatAnalyzer) Track(onsetEnvelope []float64) ([]Beat, float64) {
	n := len(onsetEnvelope)
	if n == 0 || a.cfg.BPM <= 0 {
		return nil, a.cfg.BPM
	}

	local := normalizeToUnit(onsetEnvelope)
	period := 60 * float64(a.cfg.SampleRate) / (a.cfg.BPM * float64(a.cfg.HopLength))

	cumulative := make([]float64, n)
	backpointer := make([]int, n)
	for i := range backpointer {
		backpointer[i] = -1
	}

	for i := 0; i < n; i++ {
		if float64(i) < 1.5*period {
			cumulative[i] = local[i]
			continue
		}
		lo := i - int(2*period)
		hi := i - int(period/2)
		if lo < 0 {
			lo = 0
		}
		if hi >= i {
			hi = i - 1
		}
		best := math.Inf(-1)
		bestJ := -1
		for j := lo; j <= hi; j++ {
			cost := a.cfg.Tightness * sq((float64(i-j)-period)/period)
			score := cumulative[j] - cost
			if score > best {
				best = score
				bestJ = j
			}
		}
		if bestJ == -1 {
			cumulative[i] = local[i]
		} else {
			cumulative[i] = best + local[i]
			backpointer[i] = bestJ
		}
	}

	// Finalize at the best index in the last 2P frames.
	tailStart := n - int(2*period)
	if tailStart < 0 {
		tailStart = 0
	}
	bestIdx := tailStart
	for i := tailStart; i < n; i++ {
		if cumulative[i] > cumulative[bestIdx] {
			bestIdx = i
		}
	}

	var frames []int
	for i := bestIdx; i >= 0; i = backpointer[i] {
		frames = append(frames, i)
		if backpointer[i] == -1 {
			break
		}
	}
	reverseInts(frames)

	if a.cfg.Trim {
		frames = trimWeakBeats(frames, local, 0.1)
	}

	beats := make([]Beat, len(frames))
	frameDuration := float64(a.cfg.HopLength) / float64(a.cfg.SampleRate)
	for i, f := range frames {
		beats[i] = Beat{Frame: f, Time: float64(f) * frameDuration, Strength: local[f]}
	}

	refinedBPM := a.cfg.BPM
	if len(beats) > 1 {
		var totalInterval float64
		for i := 1; i < len(beats); i++ {
			totalInterval += beats[i].Time - beats[i-1].Time
		}
		meanInterval := totalInterval / float64(len(beats)-1)
		if meanInterval > 0 {
			refinedBPM = 60 / meanInterval
		}
	}

	return beats, refinedBPM
}

func trimWeakBeats(frames []int, local []float64, threshold float64) []int {
	start := 0
	for start < len(frames) && local[frames[start]] < threshold {
		start++
	}
	end := len(frames)
	for end > start && local[frames[end-1]] < threshold {
		end--
	}
	return frames[start:end]
}

func normalizeToUnit(x []float64) []float64 {
	maxV := 0.0
	for _, v := range x {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, len(x))
	if maxV == 0 {
		return out
	}
	for i, v := range x {
		out[i] = v / maxV
	}
	return out
}

func sq(v float64) float64 { return v * v }

func reverseInts(x []int) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// EstimateTimeSignature searches meters {3,4,6} and their phase offsets
// for the one whose on-beat mean strength dominates off-beat strength.
func EstimateTimeSignature(beats []Beat) TimeSignature {
	candidates := []int{3, 4, 6}
	bestRatio := 0.0
	bestM := 4
	for _, m := range candidates {
		_, ratio := bestPhaseForMeter(beats, m)
		if ratio > bestRatio {
			bestRatio = ratio
			bestM = m
		}
	}
	confidence := bestRatio / 2
	if confidence > 1 {
		confidence = 1
	}
	return TimeSignature{Numerator: bestM, Denominator: 4, Confidence: confidence}
}

func bestPhaseForMeter(beats []Beat, m int) (int, float64) {
	bestPhase := 0
	bestRatio := 0.0
	for phase := 0; phase < m; phase++ {
		var onSum, onCount, offSum, offCount float64
		for i, b := range beats {
			if i%m == phase {
				onSum += b.Strength
				onCount++
			} else {
				offSum += b.Strength
				offCount++
			}
		}
		if onCount == 0 || offCount == 0 || offSum == 0 {
			continue
		}
		ratio := (onSum / onCount) / (offSum / offCount)
		if ratio > bestRatio {
			bestRatio = ratio
			bestPhase = phase
		}
	}
	return bestPhase, bestRatio
}
