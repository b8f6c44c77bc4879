package analysis

import "testing"

func TestEstimateKeyOnPureCMajorChroma(t *testing.T) {
	// A chroma vector matching the C major profile's characteristic shape.
	chroma := make([]float64, 12)
	for i, v := range ksMajorProfile {
		chroma[i] = v
	}
	key := EstimateKey(chroma, DefaultKeyConfig())
	if key.Root != 0 || key.Mode != Major {
		t.Fatalf("got root=%d mode=%v, want root=0 Major", key.Root, key.Mode)
	}
}

func TestEstimateKeyRotatesWithRoot(t *testing.T) {
	rotated := rotateProfile(ksMajorProfile, 7) // G major
	chroma := rotated[:]
	key := EstimateKey(chroma, DefaultKeyConfig())
	if key.Root != 7 {
		t.Fatalf("got root=%d, want 7 (G)", key.Root)
	}
}

func TestTopGapConfidenceFullWhenClearGap(t *testing.T) {
	candidates := []keyCandidate{{corr: 0.9}, {corr: 0.5}}
	conf := topGapConfidence(candidates)
	if conf < 0.9 {
		t.Fatalf("confidence = %v, want high when gap is large", conf)
	}
}
