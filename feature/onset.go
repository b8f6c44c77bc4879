package feature

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// OnsetConfig controls onset strength envelope extraction.
type OnsetConfig struct {
	Lag      int
	Detrend  bool
	Center   bool // z-score across time
	NBands   int  // 0 or 1 disables the multi-band variant
}

// DefaultOnsetConfig returns lag=1, no detrend/center, single band.
func DefaultOnsetConfig() OnsetConfig {
	return OnsetConfig{Lag: 1, Detrend: false, Center: false, NBands: 1}
}

// OnsetStrength computes the log-power mel difference envelope:
// o[t] = Σ_mel max(0, logS[m,t] - logS[m,t-lag]) for t >= lag.
func OnsetStrength(mel *MelSpectrogram, cfg OnsetConfig) []float64 {
	logMel := mel.LogMel(1e-10)
	lag := cfg.Lag
	if lag < 1 {
		lag = 1
	}

	out := make([]float64, mel.NFrames)
	for t := lag; t < mel.NFrames; t++ {
		var sum float64
		for m := 0; m < mel.NMels; m++ {
			diff := logMel[m*mel.NFrames+t] - logMel[m*mel.NFrames+t-lag]
			if diff > 0 {
				sum += diff
			}
		}
		out[t] = sum
	}

	return postprocessOnset(out, cfg)
}

// OnsetStrengthMultiBand splits mel bins into cfg.NBands contiguous
// groups and emits one envelope per band.
func OnsetStrengthMultiBand(mel *MelSpectrogram, cfg OnsetConfig) [][]float64 {
	nBands := cfg.NBands
	if nBands < 1 {
		nBands = 1
	}
	logMel := mel.LogMel(1e-10)
	lag := cfg.Lag
	if lag < 1 {
		lag = 1
	}

	bandSize := mel.NMels / nBands
	if bandSize < 1 {
		bandSize = 1
	}

	bands := make([][]float64, nBands)
	for b := 0; b < nBands; b++ {
		start := b * bandSize
		end := start + bandSize
		if b == nBands-1 || end > mel.NMels {
			end = mel.NMels
		}
		env := make([]float64, mel.NFrames)
		for t := lag; t < mel.NFrames; t++ {
			var sum float64
			for m := start; m < end; m++ {
				diff := logMel[m*mel.NFrames+t] - logMel[m*mel.NFrames+t-lag]
				if diff > 0 {
					sum += diff
				}
			}
			env[t] = sum
		}
		bands[b] = postprocessOnset(env, cfg)
	}
	return bands
}

// OnsetDetectConfig controls discrete onset peak-picking over an onset
// strength envelope (librosa-style pre_max/post_max/pre_avg/post_avg).
type OnsetDetectConfig struct {
	Threshold      float64 // 0 = adaptive (use Delta over the local mean only)
	PreMax         int
	PostMax        int
	PreAvg         int
	PostAvg        int
	Delta          float64
	Wait           int
	Backtrack      bool
	BacktrackRange int
}

// DefaultOnsetDetectConfig mirrors librosa's defaults, scaled to a
// typical 512-sample hop at 22050 Hz.
func DefaultOnsetDetectConfig() OnsetDetectConfig {
	return OnsetDetectConfig{
		PreMax: 3, PostMax: 3, PreAvg: 3, PostAvg: 3,
		Delta: 0.07, Wait: 10, Backtrack: false, BacktrackRange: 10,
	}
}

// DetectOnsets picks discrete onset frames from a continuous onset
// strength envelope: a frame is accepted when it is the local maximum
// over [i-PreMax, i+PostMax] and exceeds the local average over
// [i-PreAvg, i+PostAvg] plus Delta (or a fixed Threshold when nonzero).
// A frame is rejected regardless of local-max status if it falls within
// Wait frames of the last accepted onset.
func DetectOnsets(envelope []float64, cfg OnsetDetectConfig) []int {
	n := len(envelope)
	if n == 0 {
		return nil
	}

	var onsets []int
	lastAccepted := -1 - cfg.Wait

	for i := 0; i < n; i++ {
		maxStart := clampIndex(i-cfg.PreMax, n)
		maxEnd := clampIndex(i+cfg.PostMax+1, n)
		if floats.Max(envelope[maxStart:maxEnd]) != envelope[i] {
			continue
		}

		avgStart := clampIndex(i-cfg.PreAvg, n)
		avgEnd := clampIndex(i+cfg.PostAvg+1, n)
		localMean := floats.Sum(envelope[avgStart:avgEnd]) / float64(avgEnd-avgStart)

		threshold := localMean + cfg.Delta
		if cfg.Threshold > 0 {
			threshold = cfg.Threshold
		}
		if envelope[i] < threshold {
			continue
		}

		if i-lastAccepted <= cfg.Wait {
			continue
		}

		onsets = append(onsets, i)
		lastAccepted = i
	}

	if cfg.Backtrack {
		for idx, frame := range onsets {
			onsets[idx] = backtrackToLocalMin(envelope, frame, cfg.BacktrackRange)
		}
	}

	return onsets
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// backtrackToLocalMin walks backward from an accepted onset frame to the
// nearest local minimum within backtrackRange, so the reported onset sits
// at the envelope's rise rather than its peak.
func backtrackToLocalMin(envelope []float64, frame, backtrackRange int) int {
	best := frame
	for i := frame; i > 0 && frame-i < backtrackRange; i-- {
		if envelope[i] > envelope[i-1] {
			best = i - 1
		} else {
			break
		}
	}
	return best
}

func postprocessOnset(env []float64, cfg OnsetConfig) []float64 {
	if cfg.Detrend {
		mean := stat.Mean(env, nil)
		for i := range env {
			env[i] -= mean
		}
	}
	if cfg.Center {
		mean := stat.Mean(env, nil)
		std := stat.StdDev(env, nil)
		if std > 0 {
			for i := range env {
				env[i] = (env[i] - mean) / std
			}
		}
	}
	return env
}
