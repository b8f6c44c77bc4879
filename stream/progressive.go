package stream

import (
	"math"

	"github.com/austinkregel/sonare/analysis"
)

func (a *Analyzer) updateProgressiveEstimate(currentTime float64) {
	a.estimate.AccumulatedSeconds = currentTime
	a.estimate.UsedFrames = a.frameCount
	a.estimate.Updated = false

	if a.cfg.ComputeChroma && a.chromaFrameCount > 0 {
		a.updateKeyEstimate(currentTime)
		a.updateFrameChordProgression(currentTime)
	}

	if a.cfg.ComputeOnset {
		a.updateBpmEstimate(currentTime)
	}

	if a.cfg.ComputeChroma && a.chromaFrameCount > 0 {
		a.updateBatchChordReplay(currentTime)
		a.updateBarChordTracking(currentTime)
	}
}

func (a *Analyzer) updateKeyEstimate(currentTime float64) {
	if currentTime-a.lastKeyUpdateTime < a.cfg.KeyUpdateIntervalSec {
		return
	}

	meanChroma := make([]float64, 12)
	sum := 0.0
	for c := 0; c < 12; c++ {
		meanChroma[c] = a.chromaSum[c] / float64(a.chromaFrameCount)
		sum += meanChroma[c]
	}
	if sum > 1e-10 {
		for c := range meanChroma {
			meanChroma[c] /= sum
		}
	}

	key := analysis.EstimateKey(meanChroma, analysis.DefaultKeyConfig())

	a.estimate.Key = key.Root
	a.estimate.KeyMinor = key.Mode == analysis.Minor

	timeFactor := math.Min(1, currentTime/30)
	a.estimate.KeyConfidence = key.Confidence * timeFactor

	a.lastKeyUpdateTime = currentTime
	a.estimate.Updated = true
}

func (a *Analyzer) updateFrameChordProgression(currentTime float64) {
	if len(a.chordTemplates) == 0 || len(a.chromaHistory) == 0 {
		return
	}

	smoothed := medianChroma(a.chromaHistory)
	best, corr := analysis.FindBestChord(smoothed[:], a.chordTemplates)
	newRoot, newQuality := best.Root, int(best.Quality)
	newConfidence := math.Max(0, corr)

	if newConfidence >= kChordConfidenceThreshold {
		a.estimate.ChordRoot = newRoot
		a.estimate.ChordQuality = newQuality
		a.estimate.ChordConfidence = newConfidence
	} else {
		a.estimate.ChordConfidence = newConfidence
	}

	if newConfidence < kChordConfidenceThreshold {
		return
	}

	frameDuration := a.cfg.FrameDuration()
	if newRoot == a.prevChordRoot && newQuality == a.prevChordQuality {
		a.chordStableTime += frameDuration
		return
	}

	if a.prevChordRoot >= 0 && a.chordStableTime >= kChordMinDurationSec {
		chordStart := currentTime - a.chordStableTime
		last := len(a.estimate.ChordProgression) - 1
		if last < 0 || a.estimate.ChordProgression[last].Root != a.prevChordRoot ||
			a.estimate.ChordProgression[last].Quality != a.prevChordQuality {
			a.estimate.ChordProgression = append(a.estimate.ChordProgression, ChordChange{
				Root:       a.prevChordRoot,
				Quality:    a.prevChordQuality,
				StartTime:  chordStart,
				Confidence: newConfidence,
			})
		}
	}

	a.prevChordRoot = newRoot
	a.prevChordQuality = newQuality
	a.chordStableTime = frameDuration
}

func (a *Analyzer) updateBpmEstimate(currentTime float64) {
	nOnset := len(a.onsetAccumulator)
	a.estimate.BPMCandidateCount = nOnset

	if currentTime-a.lastBpmUpdateTime < a.cfg.BpmUpdateIntervalSec || nOnset < kMinOnsetFramesForBpm {
		return
	}

	bpmCfg := analysis.DefaultBpmConfig(a.internalSR, a.cfg.HopLength)
	result := analysis.NewBpmAnalyzer(bpmCfg).Estimate(a.onsetAccumulator)

	a.estimate.BPM = result.BPM
	timeFactor := math.Min(1, currentTime/30)
	a.estimate.BPMConfidence = result.Confidence * timeFactor

	a.lastBpmUpdateTime = currentTime
	a.estimate.Updated = true
}

// updateBatchChordReplay periodically re-runs the batch chord analyzer
// over all accumulated chroma, giving the streaming progression the
// same eventual result as offline analysis once enough data exists.
func (a *Analyzer) updateBatchChordReplay(currentTime float64) {
	const chordAnalysisIntervalSec = 2.0
	const minFramesForAnalysis = 50

	if currentTime-a.lastChordAnalysisTime < chordAnalysisIntervalSec || a.chromaFrameCount < minFramesForAnalysis {
		return
	}

	nFrames := a.chromaFrameCount
	transposed := make([]float64, 12*nFrames)
	for f := 0; f < nFrames; f++ {
		for c := 0; c < 12; c++ {
			transposed[c*nFrames+f] = a.accumulatedChroma[f*12+c]
		}
	}

	chordCfg := analysis.ChordConfig{SmoothingWindowSec: 2.0, MinDurationSec: 0.3, UseSevenths: false}
	chords := analysis.NewChordAnalyzer(chordCfg).Analyze(transposed, 12, nFrames, a.cfg.FrameDuration())

	a.estimate.ChordProgression = a.estimate.ChordProgression[:0]
	for _, c := range chords {
		a.estimate.ChordProgression = append(a.estimate.ChordProgression, ChordChange{
			Root:       c.Root,
			Quality:    int(c.Quality),
			StartTime:  c.Start,
			Confidence: c.Confidence,
		})
	}

	a.lastChordAnalysisTime = currentTime
	a.estimate.Updated = true
}
