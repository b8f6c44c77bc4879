package analysis

import (
	"sync"

	"github.com/austinkregel/sonare/feature"
	"github.com/austinkregel/sonare/filterbank"
	"github.com/austinkregel/sonare/primitives"
	"github.com/austinkregel/sonare/spectrogram"
)

// ProgressFunc is invoked between analysis stages, in order:
// "bpm","key","beats","chords","sections","timbre","dynamics","rhythm","complete".
type ProgressFunc func(stage string)

// MusicAnalyzer lazily computes and caches every L4 analyzer's result
// over one Spectrogram/Chroma/Mel triple. Each accessor is guarded by a
// sync.Once so dependent analyzers (e.g. Beats needs Bpm) compute their
// own dependency through the same struct rather than holding a pointer
// to another analyzer, avoiding the cyclic-construction problem of a
// mutable pointer graph.
type MusicAnalyzer struct {
	spec     *spectrogram.Spectrogram
	samples  []float64
	sr       int
	hop      int

	melFB    *filterbank.MelFilterbank
	chromaFB *filterbank.ChromaFilterbank
	dctCache *primitives.DCTCache

	progress ProgressFunc

	melOnce sync.Once
	mel     *feature.MelSpectrogram

	chromaOnce sync.Once
	chroma     *feature.Chroma

	onsetOnce sync.Once
	onset     []float64

	bpmOnce sync.Once
	bpm     BpmEstimate

	beatsOnce sync.Once
	beats     []Beat
	refinedBPM float64

	keyOnce sync.Once
	key     Key

	chordsOnce sync.Once
	chords     []Chord

	sectionsOnce sync.Once
	sections     []Section

	timbreOnce sync.Once
	timbre     TimbreProfile

	dynamicsOnce sync.Once
	dynamics     DynamicsProfile

	rhythmOnce sync.Once
	rhythm     RhythmProfile

	mfccOnce sync.Once
	mfcc     *feature.MFCC

	spectralOnce sync.Once
	spectral     *feature.SpectralFeatures
}

// NewMusicAnalyzer builds a facade over a precomputed Spectrogram and the
// original samples (needed for the ZCR/RMS spectral features).
func NewMusicAnalyzer(spec *spectrogram.Spectrogram, samples []float64, melFB *filterbank.MelFilterbank, chromaFB *filterbank.ChromaFilterbank, progress ProgressFunc) *MusicAnalyzer {
	return &MusicAnalyzer{
		spec:     spec,
		samples:  samples,
		sr:       spec.SampleRate,
		hop:      spec.HopLength,
		melFB:    melFB,
		chromaFB: chromaFB,
		dctCache: primitives.NewDCTCache(4),
		progress: progress,
	}
}

func (a *MusicAnalyzer) report(stage string) {
	if a.progress != nil {
		a.progress(stage)
	}
}

// Mel returns the mel spectrogram, computing it once.
func (a *MusicAnalyzer) Mel() *feature.MelSpectrogram {
	a.melOnce.Do(func() {
		a.mel = feature.ComputeMelSpectrogram(a.spec, a.melFB)
	})
	return a.mel
}

// Chroma returns the chromagram, computing it once.
func (a *MusicAnalyzer) Chroma() *feature.Chroma {
	a.chromaOnce.Do(func() {
		a.chroma = feature.ComputeChroma(a.spec, a.chromaFB)
	})
	return a.chroma
}

// MFCC returns the cepstral coefficients, computing them once.
func (a *MusicAnalyzer) MFCC() *feature.MFCC {
	a.mfccOnce.Do(func() {
		a.mfcc = feature.ComputeMFCC(a.Mel(), feature.DefaultMFCCConfig(), a.dctCache)
	})
	return a.mfcc
}

// Spectral returns scalar spectral features, computing them once.
func (a *MusicAnalyzer) Spectral() *feature.SpectralFeatures {
	a.spectralOnce.Do(func() {
		a.spectral = feature.ComputeSpectralFeatures(a.spec, a.samples, 0.85)
	})
	return a.spectral
}

// OnsetStrength returns the onset envelope, computing it once.
func (a *MusicAnalyzer) OnsetStrength() []float64 {
	a.onsetOnce.Do(func() {
		a.onset = feature.OnsetStrength(a.Mel(), feature.DefaultOnsetConfig())
	})
	return a.onset
}

// Bpm returns the tempo estimate, computing it once.
func (a *MusicAnalyzer) Bpm() BpmEstimate {
	a.bpmOnce.Do(func() {
		a.report("bpm")
		analyzer := NewBpmAnalyzer(DefaultBpmConfig(a.sr, a.hop))
		a.bpm = analyzer.Estimate(a.OnsetStrength())
	})
	return a.bpm
}

// Beats returns the beat grid and refined BPM, computing them once.
func (a *MusicAnalyzer) Beats() ([]Beat, float64) {
	a.beatsOnce.Do(func() {
		a.report("beats")
		cfg := DefaultBeatConfig(a.sr, a.hop, a.Bpm().BPM)
		analyzer := NewBeatAnalyzer(cfg)
		a.beats, a.refinedBPM = analyzer.Track(a.OnsetStrength())
	})
	return a.beats, a.refinedBPM
}

// Key returns the key estimate, computing it once.
func (a *MusicAnalyzer) Key() Key {
	a.keyOnce.Do(func() {
		a.report("key")
		a.key = EstimateKey(a.Chroma().MeanVector(), DefaultKeyConfig())
	})
	return a.key
}

// Chords returns the segmented chord progression, computing it once.
func (a *MusicAnalyzer) Chords() []Chord {
	a.chordsOnce.Do(func() {
		a.report("chords")
		chroma := a.Chroma()
		frameDuration := float64(a.hop) / float64(a.sr)
		analyzer := NewChordAnalyzer(DefaultChordConfig())
		a.chords = analyzer.Analyze(chroma.Data, chroma.NChroma, chroma.NFrames, frameDuration)
	})
	return a.chords
}

// Sections returns the labelled structural sections, computing them once.
func (a *MusicAnalyzer) Sections() []Section {
	a.sectionsOnce.Do(func() {
		a.report("sections")
		mfcc := a.MFCC()
		frameDuration := float64(a.hop) / float64(a.sr)
		boundaryCfg := DefaultBoundaryConfig(frameDuration)

		ssm := SelfSimilarityMatrix(mfcc.Data, mfcc.NMFCC, mfcc.NFrames)
		novelty := CheckerboardNovelty(ssm, mfcc.NFrames, boundaryCfg.KernelSize)
		boundaries := PickBoundaries(novelty, boundaryCfg)

		duration := float64(mfcc.NFrames) * frameDuration
		rms := a.Spectral().RMS
		a.sections = LabelSections(boundaries, duration, rms, frameDuration, DefaultSectionConfig())
	})
	return a.sections
}

// Timbre returns the timbre profile, computing it once.
func (a *MusicAnalyzer) Timbre() TimbreProfile {
	a.timbreOnce.Do(func() {
		a.report("timbre")
		mel := a.Mel()
		mfcc := a.MFCC()
		nyquist := float64(a.sr) / 2
		analyzer := NewTimbreAnalyzer()
		a.timbre = analyzer.Analyze(a.Spectral().Centroid, nyquist, mel.Data, mel.NMels, mel.NFrames, mfcc.Data, mfcc.NMFCC, mfcc.NFrames)
	})
	return a.timbre
}

// Dynamics returns the dynamics profile, computing it once.
func (a *MusicAnalyzer) Dynamics() DynamicsProfile {
	a.dynamicsOnce.Do(func() {
		a.report("dynamics")
		analyzer := NewDynamicsAnalyzer()
		a.dynamics = analyzer.Analyze(a.Spectral().RMS)
	})
	return a.dynamics
}

// Rhythm returns the rhythm profile, computing it once.
func (a *MusicAnalyzer) Rhythm() RhythmProfile {
	a.rhythmOnce.Do(func() {
		a.report("rhythm")
		beats, _ := a.Beats()
		onsetTimes := onsetTimesFromEnvelope(a.OnsetStrength(), a.sr, a.hop)
		analyzer := NewRhythmAnalyzer()
		a.rhythm = analyzer.Analyze(onsetTimes, beats)
	})
	return a.rhythm
}

// RunAll forces every analyzer to compute, reporting "complete" at the
// end; useful when a caller wants everything eagerly.
func (a *MusicAnalyzer) RunAll() {
	a.Bpm()
	a.Key()
	a.Beats()
	a.Chords()
	a.Sections()
	a.Timbre()
	a.Dynamics()
	a.Rhythm()
	a.report("complete")
}

func onsetTimesFromEnvelope(envelope []float64, sampleRate, hop int) []float64 {
	frameDuration := float64(hop) / float64(sampleRate)
	threshold := peakThreshold(envelope)
	var times []float64
	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] > threshold && envelope[i] > envelope[i-1] && envelope[i] > envelope[i+1] {
			times = append(times, float64(i)*frameDuration)
		}
	}
	return times
}

func peakThreshold(envelope []float64) float64 {
	maxV := 0.0
	for _, v := range envelope {
		if v > maxV {
			maxV = v
		}
	}
	return 0.3 * maxV
}
