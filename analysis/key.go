package analysis

import "gonum.org/v1/gonum/stat"

// Mode is the major/minor tonality of a detected key.
type Mode int

const (
	Major Mode = iota
	Minor
)

// Key is a detected tonal center.
type Key struct {
	Root       int // 0=C .. 11=B
	Mode       Mode
	Confidence float64
}

// KeyConfig controls key estimation.
type KeyConfig struct {
	Profiles KeyProfileSet
	Boosts   KeyBoosts
}

// DefaultKeyConfig uses Krumhansl-Schmuckler profiles with no boosts.
func DefaultKeyConfig() KeyConfig {
	return KeyConfig{Profiles: KrumhanslSchmuckler}
}

type keyCandidate struct {
	root  int
	minor bool
	corr  float64
}

// EstimateKey correlates the mean chroma vector against all 24 rotated
// key profiles and returns the best match with a confidence blending the
// top correlation and the gap to the runner-up.
func EstimateKey(meanChroma []float64, cfg KeyConfig) Key {
	candidates := make([]keyCandidate, 0, 24)
	for root := 0; root < 12; root++ {
		for _, minor := range []bool{false, true} {
			profile := applyBoosts(profileFor(cfg.Profiles, minor), minor, cfg.Boosts)
			boosted := rotateProfile(profile, root)
			corr := pearsonCorrelation(meanChroma, boosted[:])
			candidates = append(candidates, keyCandidate{root: root, minor: minor, corr: corr})
		}
	}

	sortCandidatesByCorrDesc(candidates)

	top := candidates[0]
	mode := Major
	if top.minor {
		mode = Minor
	}

	confidence := topGapConfidence(candidates)
	return Key{Root: top.root, Mode: mode, Confidence: confidence}
}

func sortCandidatesByCorrDesc(c []keyCandidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].corr > c[j-1].corr; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

// topGapConfidence blends the normalized top correlation with the gap to
// the runner-up: a gap >= 0.2 yields full confidence from the gap term.
func topGapConfidence(sorted []keyCandidate) float64 {
	if len(sorted) == 0 {
		return 0
	}
	top := sorted[0].corr
	normalized := (top + 1) / 2
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}
	if len(sorted) == 1 {
		return normalized
	}
	gap := sorted[0].corr - sorted[1].corr
	gapFactor := gap / 0.2
	if gapFactor > 1 {
		gapFactor = 1
	}
	if gapFactor < 0 {
		gapFactor = 0
	}
	return 0.5*normalized + 0.5*gapFactor
}

func pearsonCorrelation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	return stat.Correlation(a[:n], b[:n], nil)
}
