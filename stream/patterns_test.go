package stream

import "testing"

func barsFromPattern(pattern []progressionChord, repeats, key int) []BarChord {
	var bars []BarChord
	idx := 0
	for r := 0; r < repeats; r++ {
		for _, c := range pattern {
			root := (key + c.degree) % 12
			bars = append(bars, BarChord{BarIndex: idx, Root: root, Quality: c.quality, Confidence: 1.0})
			idx++
		}
	}
	return bars
}

func TestDetectProgressionPatternRecognizesRoyalRoad(t *testing.T) {
	royalRoad := patternLibrary[0].chords
	if patternLibrary[0].name != "royalRoad" {
		t.Fatalf("expected patternLibrary[0] to be royalRoad")
	}

	bars := barsFromPattern(royalRoad, 3, 0) // key of C
	name, score, all := detectProgressionPattern(bars, 0)
	if name != "royalRoad" {
		t.Fatalf("detected pattern = %q, want royalRoad", name)
	}
	if score < 0.99 {
		t.Fatalf("score = %v, want ~1.0 for exact repetition", score)
	}
	if len(all) != len(patternLibrary) {
		t.Fatalf("len(all) = %d, want %d", len(all), len(patternLibrary))
	}
}

func TestDetectProgressionPatternTooFewBars(t *testing.T) {
	bars := []BarChord{{Root: 0, Quality: 0, Confidence: 1}}
	name, _, _ := detectProgressionPattern(bars, 0)
	if name != "" {
		t.Fatalf("expected no pattern with fewer than 4 bars, got %q", name)
	}
}

func TestAreChordsConfusableSharedNotes(t *testing.T) {
	// A minor (A,C,E) vs F major (F,A,C) share A and C.
	if !areChordsConfusable(9, 1, 5, 0) {
		t.Fatalf("A minor and F major should be confusable")
	}
	// C major (C,E,G) vs F#major (F#,A#,C#) share nothing.
	if areChordsConfusable(0, 0, 6, 0) {
		t.Fatalf("C major and F#major should not be confusable")
	}
}

func TestComputeVotedPatternPicksMajorityPerPosition(t *testing.T) {
	basic := patternLibrary[4].chords // basic145: I IV V I
	bars := barsFromPattern(basic, 3, 0)

	voted := computeVotedPattern(bars, 4, 0, false)
	if len(voted) != 4 {
		t.Fatalf("len(voted) = %d, want 4", len(voted))
	}
	for i, c := range basic {
		expectedRoot := (0 + c.degree) % 12
		if voted[i].Root != expectedRoot || voted[i].Quality != c.quality {
			t.Fatalf("position %d: voted = {%d,%d}, want {%d,%d}", i, voted[i].Root, voted[i].Quality, expectedRoot, c.quality)
		}
	}
}

func TestCorrectVotedPatternLocksAfterEnoughBars(t *testing.T) {
	royalRoad := patternLibrary[0].chords
	bars := barsFromPattern(royalRoad, 4, 0) // 16 bars, well past 2*4 lock threshold
	voted := computeVotedPattern(bars, 4, 0, false)

	_, name, score, canLock := correctVotedPattern(voted, bars, 0, 0, 0)
	if name != "royalRoad" {
		t.Fatalf("corrected pattern name = %q, want royalRoad", name)
	}
	if score < 0.99 {
		t.Fatalf("score = %v, want ~1.0", score)
	}
	if !canLock {
		t.Fatalf("expected canLock = true with 16 bars for a 4-chord pattern")
	}
}
