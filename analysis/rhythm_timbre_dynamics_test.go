package analysis

import "testing"

func TestRhythmAnalyzerPerfectGridIsHighAlignment(t *testing.T) {
	var beats []Beat
	var onsets []float64
	for i := 0; i < 16; i++ {
		t := float64(i) * 0.5
		beats = append(beats, Beat{Frame: i, Time: t, Strength: 1})
		onsets = append(onsets, t)
	}
	analyzer := NewRhythmAnalyzer()
	profile := analyzer.Analyze(onsets, beats)
	if profile.BeatAlignment < 0.9 {
		t.Fatalf("alignment = %v, want close to 1 for onsets exactly on the beat grid", profile.BeatAlignment)
	}
}

func TestTimbreAnalyzerBoundedOutputs(t *testing.T) {
	centroid := []float64{1000, 1200, 900}
	mel := make([]float64, 10*3)
	for i := range mel {
		mel[i] = 1
	}
	mfcc := make([]float64, 13*3)
	for i := range mfcc {
		mfcc[i] = float64(i % 5)
	}
	analyzer := NewTimbreAnalyzer()
	profile := analyzer.Analyze(centroid, 11025, mel, 10, 3, mfcc, 13, 3)
	if profile.Brightness < 0 || profile.Brightness > 1 {
		t.Fatalf("brightness = %v, want in [0,1]", profile.Brightness)
	}
	if profile.Warmth < 0 || profile.Warmth > 1 {
		t.Fatalf("warmth = %v, want in [0,1]", profile.Warmth)
	}
}

func TestDynamicsAnalyzerEnvelopeMatchesMedianSplit(t *testing.T) {
	rms := []float64{0.1, 0.2, 0.9, 0.95, 0.1}
	analyzer := NewDynamicsAnalyzer()
	profile := analyzer.Analyze(rms)
	if len(profile.Envelope) != len(rms) {
		t.Fatalf("envelope length = %d, want %d", len(profile.Envelope), len(rms))
	}
	if profile.CrestFactor <= 0 {
		t.Fatalf("crest factor = %v, want positive", profile.CrestFactor)
	}
}
