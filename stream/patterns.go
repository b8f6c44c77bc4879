package stream

// progressionChord is a (scale degree, quality) pair relative to the
// tonic; quality 0=Major, 1=Minor, matching the ChordQuality encoding
// used by the bar-vote index (root*4+quality).
type progressionChord struct {
	degree  int
	quality int
}

type progressionPattern struct {
	name   string
	chords []progressionChord
}

// patternLibrary holds named three-or-more-chord progressions expressed
// relative to the tonic. Degrees follow the chromatic scale-step
// convention used in the original (0=I, 2=II, 4=III, 5=IV, 7=V, 9=VI,
// 11=VII), not the diatonic scale degree.
var patternLibrary = []progressionPattern{
	{"royalRoad", []progressionChord{{0, 0}, {7, 0}, {9, 1}, {5, 0}}},
	{"komuro", []progressionChord{{9, 1}, {5, 0}, {7, 0}, {0, 0}}},
	{"canon", []progressionChord{{0, 0}, {7, 0}, {9, 1}, {4, 1}, {5, 0}, {0, 0}, {5, 0}, {7, 0}}},
	{"justTheTwoOfUs", []progressionChord{{5, 0}, {4, 1}, {9, 1}}},
	{"basic145", []progressionChord{{0, 0}, {5, 0}, {7, 0}, {0, 0}}},
	{"blues12", []progressionChord{
		{0, 0}, {0, 0}, {0, 0}, {0, 0},
		{5, 0}, {5, 0}, {0, 0}, {0, 0},
		{7, 0}, {5, 0}, {0, 0}, {7, 0},
	}},
	{"axis", []progressionChord{{9, 1}, {5, 0}, {0, 0}, {7, 0}}},
	{"fifties", []progressionChord{{0, 0}, {9, 1}, {5, 0}, {7, 0}}},
	{"sensitive", []progressionChord{{0, 0}, {7, 0}, {9, 1}, {4, 1}}},
}

// chordNotes returns the pitch classes of a triad (major third for
// quality 0, minor third for quality 1); used to test confusability.
func chordNotes(root, quality int) [3]int {
	third := 4
	if quality == 1 {
		third = 3
	}
	return [3]int{root % 12, (root + third) % 12, (root + 7) % 12}
}

func sharedNoteCount(root1, quality1, root2, quality2 int) int {
	n1 := chordNotes(root1, quality1)
	n2 := chordNotes(root2, quality2)
	shared := 0
	for _, a := range n1 {
		for _, b := range n2 {
			if a == b {
				shared++
				break
			}
		}
	}
	return shared
}

func areChordsConfusable(root1, quality1, root2, quality2 int) bool {
	return sharedNoteCount(root1, quality1, root2, quality2) >= 2
}

// diatonicChords lists the seven diatonic (degree, quality) pairs for a
// major or minor key, used to apply the voted-pattern diatonic bonus.
func diatonicChords(minor bool) []progressionChord {
	if !minor {
		return []progressionChord{{0, 0}, {2, 1}, {4, 1}, {5, 0}, {7, 0}, {9, 1}, {11, 2}}
	}
	return []progressionChord{{0, 1}, {2, 2}, {3, 0}, {5, 1}, {7, 0}, {8, 0}, {10, 0}}
}

// computeVotedPattern aggregates bar-chord votes at each of L pattern
// positions, applies a diatonic bonus, and returns the per-position
// argmax as an L-chord voted pattern.
func computeVotedPattern(bars []BarChord, patternLength, detectedKey int, keyMinor bool) []BarChord {
	if len(bars) == 0 || patternLength <= 0 {
		return nil
	}
	diatonic := diatonicChords(keyMinor)
	voted := make([]BarChord, patternLength)

	for pos := 0; pos < patternLength; pos++ {
		var confidenceSum [48]float64
		var voteCount [48]int
		totalVotes := 0

		for i := pos; i < len(bars); i += patternLength {
			idx := bars[i].Root*4 + bars[i].Quality
			if idx < 0 || idx >= 48 {
				continue
			}
			confidenceSum[idx] += bars[i].Confidence
			voteCount[idx]++
		}

		bestIdx, bestScore := 0, 0.0
		for i := 0; i < 48; i++ {
			totalVotes += voteCount[i]
			score := confidenceSum[i]
			if score < 0.01 {
				continue
			}
			root, quality := i/4, i%4
			relRoot := ((root - detectedKey) % 12 + 12) % 12
			for _, d := range diatonic {
				if relRoot == d.degree && quality == d.quality {
					score *= 1.15
					break
				}
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		confidence := 0.0
		if totalVotes > 0 {
			confidence = float64(voteCount[bestIdx]) / float64(totalVotes)
		}
		voted[pos] = BarChord{BarIndex: pos, Root: bestIdx / 4, Quality: bestIdx % 4, Confidence: confidence}
	}
	return voted
}

// correctVotedPattern finds the best-matching library pattern for the
// voted pattern (requiring at least L-1 exact-or-confusable matches),
// overwrites confusable positions with the library's expected chord,
// and reports whether enough bars have accumulated to lock the result.
func correctVotedPattern(voted []BarChord, bars []BarChord, detectedKey int, expectedDuration, barDuration float64) (corrected []BarChord, patternName string, score float64, canLock bool) {
	patternLength := len(voted)
	if patternLength < 4 {
		return voted, "", 0, false
	}

	minBarsForLock := patternLength * 2
	if expectedDuration > 0 && barDuration > 0 {
		expectedTotalBars := int(expectedDuration / barDuration)
		if quarter := expectedTotalBars / 4; quarter > minBarsForLock {
			minBarsForLock = quarter
		}
	}
	canLock = len(bars) >= minBarsForLock

	bestScore := 0.0
	var bestName string
	var bestCorrections []struct {
		pos, root, quality int
	}

	for _, pattern := range patternLibrary {
		if len(pattern.chords) != patternLength {
			continue
		}
		exact, confusable := 0, 0
		var corrections []struct{ pos, root, quality int }
		for pos := 0; pos < patternLength; pos++ {
			expectedRoot := (detectedKey + pattern.chords[pos].degree) % 12
			expectedQuality := pattern.chords[pos].quality
			if voted[pos].Root == expectedRoot && voted[pos].Quality == expectedQuality {
				exact++
			} else if areChordsConfusable(voted[pos].Root, voted[pos].Quality, expectedRoot, expectedQuality) {
				confusable++
				corrections = append(corrections, struct{ pos, root, quality int }{pos, expectedRoot, expectedQuality})
			}
		}
		total := exact + confusable
		s := (float64(exact) + 0.7*float64(confusable)) / float64(patternLength)
		if total >= patternLength-1 && s > bestScore {
			bestScore = s
			bestName = pattern.name
			bestCorrections = corrections
		}
	}

	out := make([]BarChord, len(voted))
	copy(out, voted)
	if bestScore >= 0.75 {
		for _, c := range bestCorrections {
			out[c.pos].Root = c.root
			out[c.pos].Quality = c.quality
		}
		return out, bestName, bestScore, canLock
	}
	return out, "", bestScore, false
}

// chordSimilarity scores a detected bar chord against an expected
// (root, quality) pair for whole-song pattern matching.
func chordSimilarity(root, quality, expectedRoot, expectedQuality int) float64 {
	if root == expectedRoot && quality == expectedQuality {
		return 1.0
	}
	if root == expectedRoot {
		return 0.6
	}

	diff := root - expectedRoot
	if diff < 0 {
		diff = -diff
	}
	if diff > 6 {
		diff = 12 - diff
	}

	similarity := 0.0
	switch {
	case diff == 0:
		similarity = 0.6
	case diff == 7 || diff == 5:
		similarity = 0.3
	case diff == 3 || diff == 4:
		similarity = 0.25
	case diff == 2:
		similarity = 0.15
	case diff == 1:
		similarity = 0.2
	}
	if quality == expectedQuality {
		similarity += 0.1
	}
	return similarity
}

// detectProgressionPattern scores every library pattern against the
// whole bar-chord history and returns the best match plus the full
// ranked list.
func detectProgressionPattern(bars []BarChord, detectedKey int) (name string, score float64, all []PatternScore) {
	if len(bars) < 4 {
		return "", 0, nil
	}

	for _, pattern := range patternLibrary {
		patternLen := len(pattern.chords)
		if patternLen == 0 {
			continue
		}
		totalScore, maxPossible := 0.0, 0.0
		for i, bar := range bars {
			expected := pattern.chords[i%patternLen]
			expectedRoot := (detectedKey + expected.degree) % 12
			similarity := chordSimilarity(bar.Root, bar.Quality, expectedRoot, expected.quality)
			totalScore += similarity * bar.Confidence
			maxPossible += bar.Confidence
		}
		s := 0.0
		if maxPossible > 0 {
			s = totalScore / maxPossible
		}
		all = append(all, PatternScore{Name: pattern.name, Score: s})
		if s > score {
			score = s
			name = pattern.name
		}
	}

	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].Score > all[j-1].Score; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	if score >= 0.75 {
		return name, score, all
	}
	return "", score, all
}
