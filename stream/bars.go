package stream

import (
	"math"

	"github.com/austinkregel/sonare/analysis"
)

// updateBarChordTracking activates once BPM confidence clears
// kBpmConfidenceThreshold, retroactively bins stored chroma history into
// bars, then votes into the current bar each frame thereafter.
func (a *Analyzer) updateBarChordTracking(currentTime float64) {
	if !a.barTrackingActive {
		if a.estimate.BPMConfidence >= kBpmConfidenceThreshold && a.estimate.BPM > 0 {
			a.barTrackingActive = true
			a.barDuration = kBeatsPerBar * 60 / a.estimate.BPM
			a.currentBarIndex = 0
			a.barStartTime = currentTime

			a.computeRetroactiveBarChords()

			a.barChordVotes = [48]int{}
			a.barVoteCount = 0

			a.estimate.BarDuration = a.barDuration
			a.estimate.CurrentBar = a.currentBarIndex
		}
		return
	}

	newBarDuration := kBeatsPerBar * 60 / a.estimate.BPM
	if math.Abs(newBarDuration-a.barDuration) > 0.1 {
		a.barDuration = newBarDuration
		a.estimate.BarDuration = a.barDuration
	}

	if len(a.chordTemplates) > 0 && len(a.chromaHistory) > 0 {
		smoothed := medianChroma(a.chromaHistory)
		chord, corr := analysis.FindBestChord(smoothed[:], a.chordTemplates)
		if corr >= kChordConfidenceThreshold {
			idx := chord.Root*4 + int(chord.Quality)
			if idx >= 0 && idx < 48 {
				a.barChordVotes[idx]++
				a.barVoteCount++
			}
		}
	}

	if currentTime < a.barStartTime+a.barDuration {
		return
	}

	if a.barVoteCount > 0 {
		bestIdx, bestVotes := 0, a.barChordVotes[0]
		for i := 1; i < 48; i++ {
			if a.barChordVotes[i] > bestVotes {
				bestVotes = a.barChordVotes[i]
				bestIdx = i
			}
		}
		confidence := float64(bestVotes) / float64(a.barVoteCount)
		a.estimate.BarChordProgression = append(a.estimate.BarChordProgression, BarChord{
			BarIndex:   a.currentBarIndex,
			Root:       bestIdx / 4,
			Quality:    bestIdx % 4,
			StartTime:  a.barStartTime,
			Confidence: confidence,
		})

		if (a.currentBarIndex+1)%4 == 0 {
			a.recomputePatterns()
		}
	}

	a.currentBarIndex++
	a.barStartTime = currentTime
	a.barChordVotes = [48]int{}
	a.barVoteCount = 0
	a.estimate.CurrentBar = a.currentBarIndex
}

// computeRetroactiveBarChords bins the full chroma history (captured
// before bar tracking activated) into bars and votes a chord for each,
// so bar-synchronous output isn't missing the song's opening bars.
func (a *Analyzer) computeRetroactiveBarChords() {
	if len(a.fullChromaHistory) == 0 || a.barDuration <= 0 {
		return
	}

	secondsPerFrame := a.cfg.FrameDuration()
	framesPerBar := int(a.barDuration/secondsPerFrame + 0.5)
	if framesPerBar <= 0 {
		return
	}

	totalFrames := len(a.fullChromaHistory)
	retroactiveBars := totalFrames / framesPerBar

	a.estimate.BarChordProgression = a.estimate.BarChordProgression[:0]

	for bar := 0; bar < retroactiveBars; bar++ {
		startFrame := bar * framesPerBar
		endFrame := startFrame + framesPerBar
		if endFrame > totalFrames {
			endFrame = totalFrames
		}

		var votes [48]int
		voteCount := 0

		for f := startFrame; f < endFrame; f++ {
			smoothStart := f - kChordSmoothingFrames/2
			if smoothStart < 0 {
				smoothStart = 0
			}
			smoothEnd := f + kChordSmoothingFrames/2
			if smoothEnd > totalFrames {
				smoothEnd = totalFrames
			}

			var smoothed [12]float64
			smoothCount := smoothEnd - smoothStart
			for sf := smoothStart; sf < smoothEnd; sf++ {
				for c := 0; c < 12; c++ {
					smoothed[c] += a.fullChromaHistory[sf][c]
				}
			}
			if smoothCount > 0 {
				inv := 1 / float64(smoothCount)
				for c := range smoothed {
					smoothed[c] *= inv
				}
			}

			chord, corr := analysis.FindBestChord(smoothed[:], a.chordTemplates)
			if corr >= kChordConfidenceThreshold {
				idx := chord.Root*4 + int(chord.Quality)
				if idx >= 0 && idx < 48 {
					votes[idx]++
					voteCount++
				}
			}
		}

		bestIdx, bestVotes := 0, votes[0]
		for i := 1; i < 48; i++ {
			if votes[i] > bestVotes {
				bestVotes = votes[i]
				bestIdx = i
			}
		}
		confidence := 0.0
		if voteCount > 0 {
			confidence = float64(bestVotes) / float64(voteCount)
		}

		a.estimate.BarChordProgression = append(a.estimate.BarChordProgression, BarChord{
			BarIndex:   bar,
			Root:       bestIdx / 4,
			Quality:    bestIdx % 4,
			StartTime:  float64(bar) * a.barDuration,
			Confidence: confidence,
		})
	}

	a.currentBarIndex = retroactiveBars
	a.barStartTime = float64(retroactiveBars) * a.barDuration

	a.recomputePatterns()
}

// recomputePatterns refreshes the voted pattern and whole-song
// progression detection from the current bar-chord history. Once the
// pattern has been locked the voted pattern is left unchanged; the
// whole-song detection still runs.
func (a *Analyzer) recomputePatterns() {
	bars := a.estimate.BarChordProgression
	if len(bars) == 0 {
		return
	}

	if !a.patternLocked {
		const patternLength = 4
		voted := computeVotedPattern(bars, patternLength, maxInt(a.estimate.Key, 0), a.estimate.KeyMinor)
		a.estimate.PatternLength = patternLength
		a.estimate.VotedPattern = voted

		corrected, name, score, canLock := correctVotedPattern(voted, bars, maxInt(a.estimate.Key, 0), a.expectedDuration, a.barDuration)
		a.estimate.VotedPattern = corrected
		if name != "" {
			a.estimate.DetectedPatternName = name
			a.estimate.DetectedPatternScore = score
			if canLock {
				a.patternLocked = true
			}
		}
	}

	name, score, all := detectProgressionPattern(bars, maxInt(a.estimate.Key, 0))
	a.estimate.AllPatternScores = all
	if name != "" {
		a.estimate.DetectedPatternName = name
		a.estimate.DetectedPatternScore = score
	} else if a.estimate.DetectedPatternName == "" {
		a.estimate.DetectedPatternScore = score
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
