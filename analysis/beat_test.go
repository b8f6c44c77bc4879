package analysis

import (
	"math"
	"testing"
)

func TestBeatTrackerProducesRoughlyPeriodicBeats(t *testing.T) {
	sr, hop := 22050, 512
	bpm := 120.0
	envelope := syntheticOnsetEnvelope(sr, hop, bpm, 10)

	cfg := DefaultBeatConfig(sr, hop, bpm)
	analyzer := NewBeatAnalyzer(cfg)
	beats, refined := analyzer.Track(envelope)

	if len(beats) < 2 {
		t.Fatalf("got %d beats, want several", len(beats))
	}
	if math.Abs(refined-bpm) > 15 {
		t.Fatalf("refined BPM = %v, want close to %v", refined, bpm)
	}
}

func TestEstimateTimeSignaturePrefers4_4(t *testing.T) {
	var beats []Beat
	for i := 0; i < 32; i++ {
		strength := 0.3
		if i%4 == 0 {
			strength = 1.0
		}
		beats = append(beats, Beat{Frame: i, Time: float64(i) * 0.5, Strength: strength})
	}
	ts := EstimateTimeSignature(beats)
	if ts.Numerator != 4 {
		t.Fatalf("numerator = %d, want 4", ts.Numerator)
	}
}
