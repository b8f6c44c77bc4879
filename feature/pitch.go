package feature

import "math"

// PitchResult is one frame's YIN estimate.
type PitchResult struct {
	F0         float64
	Confidence float64
	Voiced     bool
}

// YINConfig controls monophonic pitch tracking.
type YINConfig struct {
	SampleRate int
	MinFreq    float64
	MaxFreq    float64
	Threshold  float64
}

// DefaultYINConfig covers roughly C2..C7 with the conventional 0.1
// threshold.
func DefaultYINConfig(sampleRate int) YINConfig {
	return YINConfig{SampleRate: sampleRate, MinFreq: 65, MaxFreq: 2000, Threshold: 0.1}
}

// differenceFunction computes d[tau] = Σ_j (x[j]-x[j+tau])^2 for
// tau in [0, maxTau).
func differenceFunction(frame []float64, maxTau int) []float64 {
	w := len(frame) - maxTau
	if w < 1 {
		w = 1
	}
	d := make([]float64, maxTau)
	for tau := 0; tau < maxTau; tau++ {
		var sum float64
		for j := 0; j < w; j++ {
			diff := frame[j] - frame[j+tau]
			sum += diff * diff
		}
		d[tau] = sum
	}
	return d
}

// cumulativeMeanNormalizedDifference computes d'[tau] = d[tau]*tau /
// Σ_{k=1..tau} d[k], with d'[0] = 1.
func cumulativeMeanNormalizedDifference(d []float64) []float64 {
	n := len(d)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	out[0] = 1
	var runningSum float64
	for tau := 1; tau < n; tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			out[tau] = 1
			continue
		}
		out[tau] = d[tau] * float64(tau) / runningSum
	}
	return out
}

// YIN estimates the fundamental frequency of one frame.
func YIN(frame []float64, cfg YINConfig) PitchResult {
	minPeriod := int(float64(cfg.SampleRate) / cfg.MaxFreq)
	maxPeriod := int(float64(cfg.SampleRate) / cfg.MinFreq)
	if minPeriod < 2 {
		minPeriod = 2
	}
	if maxPeriod >= len(frame) {
		maxPeriod = len(frame) - 1
	}
	if maxPeriod <= minPeriod {
		return PitchResult{}
	}

	d := differenceFunction(frame, maxPeriod+1)
	dPrime := cumulativeMeanNormalizedDifference(d)

	tau := -1
	for t := minPeriod; t <= maxPeriod; t++ {
		if dPrime[t] < cfg.Threshold {
			if t+1 < len(dPrime) && dPrime[t+1] < dPrime[t] {
				continue // keep descending to the local min
			}
			tau = t
			break
		}
	}
	if tau == -1 {
		// No candidate below threshold: take the global min in range.
		best := minPeriod
		for t := minPeriod + 1; t <= maxPeriod; t++ {
			if dPrime[t] < dPrime[best] {
				best = t
			}
		}
		tau = best
	}

	refined := parabolicInterpolate(dPrime, tau)
	if refined <= 0 {
		return PitchResult{}
	}
	confidence := 1 - dPrime[tau]
	if confidence < 0 {
		confidence = 0
	}
	return PitchResult{
		F0:         float64(cfg.SampleRate) / refined,
		Confidence: confidence,
		Voiced:     dPrime[tau] < cfg.Threshold,
	}
}

func parabolicInterpolate(d []float64, tau int) float64 {
	if tau <= 0 || tau >= len(d)-1 {
		return float64(tau)
	}
	s0, s1, s2 := d[tau-1], d[tau], d[tau+1]
	denom := s0 - 2*s1 + s2
	if denom == 0 {
		return float64(tau)
	}
	shift := 0.5 * (s0 - s2) / denom
	return float64(tau) + shift
}

// PYINConfig controls probabilistic YIN decoding.
type PYINConfig struct {
	YIN       YINConfig
	TopK      int
	BetaAlpha float64
	BetaBeta  float64
	UnvoicedProb float64
	JumpSigmaCents float64
}

// DefaultPYINConfig returns the conventional K=20, Beta(1,18), 50-cent
// jump sigma configuration.
func DefaultPYINConfig(sampleRate int) PYINConfig {
	return PYINConfig{
		YIN:            DefaultYINConfig(sampleRate),
		TopK:           20,
		BetaAlpha:      1,
		BetaBeta:       18,
		UnvoicedProb:   0.01,
		JumpSigmaCents: 50,
	}
}

type pyinCandidate struct {
	tau    int
	f0     float64
	prob   float64
	voiced bool
}

// PYIN decodes a frame sequence (each a time-domain window) into f0,
// voiced_flag, and voiced_prob per frame via Viterbi decoding over
// per-frame candidate sets weighted by a Beta(alpha,beta) PDF.
func PYIN(frames [][]float64, cfg PYINConfig) []PitchResult {
	nFrames := len(frames)
	if nFrames == 0 {
		return nil
	}

	candidateSets := make([][]pyinCandidate, nFrames)
	for i, frame := range frames {
		candidateSets[i] = pyinFrameCandidates(frame, cfg)
	}

	return viterbiDecode(candidateSets, cfg)
}

func pyinFrameCandidates(frame []float64, cfg PYINConfig) []pyinCandidate {
	minPeriod := int(float64(cfg.YIN.SampleRate) / cfg.YIN.MaxFreq)
	maxPeriod := int(float64(cfg.YIN.SampleRate) / cfg.YIN.MinFreq)
	if minPeriod < 2 {
		minPeriod = 2
	}
	if maxPeriod >= len(frame) {
		maxPeriod = len(frame) - 1
	}

	candidates := []pyinCandidate{{tau: -1, f0: 0, prob: cfg.UnvoicedProb, voiced: false}}
	if maxPeriod <= minPeriod {
		return candidates
	}

	d := differenceFunction(frame, maxPeriod+1)
	dPrime := cumulativeMeanNormalizedDifference(d)

	for t := minPeriod + 1; t < maxPeriod; t++ {
		if dPrime[t] < dPrime[t-1] && dPrime[t] < dPrime[t+1] {
			refined := parabolicInterpolate(dPrime, t)
			if refined <= 0 {
				continue
			}
			weight := betaPDF(clamp01(dPrime[t]), cfg.BetaAlpha, cfg.BetaBeta)
			candidates = append(candidates, pyinCandidate{
				tau:    t,
				f0:     float64(cfg.YIN.SampleRate) / refined,
				prob:   weight,
				voiced: true,
			})
		}
	}

	sortCandidatesByProbDesc(candidates)
	if len(candidates) > cfg.TopK {
		candidates = candidates[:cfg.TopK]
	}

	var total float64
	for _, c := range candidates {
		total += c.prob
	}
	if total > 0 {
		for i := range candidates {
			candidates[i].prob /= total
		}
	}
	return candidates
}

func sortCandidatesByProbDesc(c []pyinCandidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].prob > c[j-1].prob; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func betaPDF(x, alpha, beta float64) float64 {
	if x <= 0 || x >= 1 {
		if alpha == 1 {
			return math.Pow(1-x, beta-1)
		}
		return 0
	}
	return math.Pow(x, alpha-1) * math.Pow(1-x, beta-1)
}

// viterbiDecode finds the MAP path over candidate sets; transitions favor
// staying voiced, penalize pitch jumps by exp(-cents^2/(2*sigma^2)), and
// use a fixed voiced<->unvoiced transition probability.
func viterbiDecode(sets [][]pyinCandidate, cfg PYINConfig) []PitchResult {
	nFrames := len(sets)
	const voicedTransition = 0.01

	logProb := make([][]float64, nFrames)
	backptr := make([][]int, nFrames)

	for i := 0; i < nFrames; i++ {
		logProb[i] = make([]float64, len(sets[i]))
		backptr[i] = make([]int, len(sets[i]))
		for j, c := range sets[i] {
			p := c.prob
			if p <= 0 {
				p = 1e-12
			}
			if i == 0 {
				logProb[i][j] = math.Log(p)
				backptr[i][j] = -1
				continue
			}
			best := math.Inf(-1)
			bestK := 0
			for k, prev := range sets[i-1] {
				trans := transitionLogProb(prev, c, voicedTransition, cfg.JumpSigmaCents)
				score := logProb[i-1][k] + trans
				if score > best {
					best = score
					bestK = k
				}
			}
			logProb[i][j] = best + math.Log(p)
			backptr[i][j] = bestK
		}
	}

	// Backtrack from the best final state.
	path := make([]int, nFrames)
	best := math.Inf(-1)
	for j, lp := range logProb[nFrames-1] {
		if lp > best {
			best = lp
			path[nFrames-1] = j
		}
	}
	for i := nFrames - 1; i > 0; i-- {
		path[i-1] = backptr[i][path[i]]
	}

	out := make([]PitchResult, nFrames)
	for i, j := range path {
		c := sets[i][j]
		out[i] = PitchResult{F0: c.f0, Confidence: c.prob, Voiced: c.voiced}
	}
	return out
}

func transitionLogProb(prev, cur pyinCandidate, voicedTransition, sigmaCents float64) float64 {
	if prev.voiced != cur.voiced {
		return math.Log(voicedTransition)
	}
	if !prev.voiced && !cur.voiced {
		return math.Log(1 - voicedTransition)
	}
	cents := 1200 * math.Log2(cur.f0/prev.f0)
	return math.Log(1-voicedTransition) + (-(cents * cents) / (2 * sigmaCents * sigmaCents))
}
