package stream

import (
	"math"
	"sort"

	"github.com/austinkregel/sonare/analysis"
	"github.com/austinkregel/sonare/audio"
	"github.com/austinkregel/sonare/filterbank"
	"github.com/austinkregel/sonare/primitives"
)

// Analyzer processes PCM in chunks, maintaining overlap state between
// calls, and produces StreamFrames plus a continuously refined
// ProgressiveEstimate. It is single-threaded and cooperative: Process
// never blocks and has no suspension points. Callers wanting concurrent
// streams should use one Analyzer per stream.
type Analyzer struct {
	cfg        Config
	resampler  audio.Resampler
	internalSR int
	resample   bool
	resampleRatio float64

	fft          *primitives.FFT
	window       []float64
	melFB        *filterbank.MelFilterbank
	chromaFB     *filterbank.ChromaFilterbank
	frequencies  []float64
	chordTemplates []analysis.ChordTemplate

	cumulativeSamples int
	frameCount        int
	emittedFrameCount int
	normalizationGain float64

	overlapBuffer []float64
	outputBuffer  []StreamFrame

	prevMelLog   []float64
	hasPrevFrame bool

	onsetAccumulator  []float64
	chromaSum         [12]float64
	chromaFrameCount  int
	accumulatedChroma []float64 // frame-major: frame*12+c

	lastKeyUpdateTime     float64
	lastBpmUpdateTime     float64
	lastChordAnalysisTime float64

	chromaHistory     [][12]float64
	fullChromaHistory [][12]float64

	prevChordRoot    int
	prevChordQuality int
	chordStableTime  float64

	barTrackingActive bool
	barDuration       float64
	currentBarIndex   int
	barStartTime      float64
	barChordVotes     [48]int
	barVoteCount      int
	patternLocked     bool
	expectedDuration  float64

	estimate ProgressiveEstimate
}

// NewAnalyzer builds an analyzer for the given configuration. resampler
// is only invoked when cfg.SampleRate exceeds the 48kHz direct-analysis
// threshold; pass nil when the caller guarantees a lower rate.
func NewAnalyzer(cfg Config, resampler audio.Resampler) *Analyzer {
	a := &Analyzer{cfg: cfg, resampler: resampler, normalizationGain: 1}

	if cfg.SampleRate > kMaxDirectSampleRate {
		a.resample = true
		a.internalSR = kInternalSampleRate
		a.resampleRatio = float64(kInternalSampleRate) / float64(cfg.SampleRate)
	} else {
		a.internalSR = cfg.SampleRate
		a.resampleRatio = 1
	}

	a.fft = primitives.NewFFT(cfg.NFFT)
	wc := primitives.NewWindowCache()
	a.window = wc.Coefficients(cfg.Window, cfg.NFFT, 0)

	nBins := cfg.NBins()

	if cfg.ComputeMel {
		melCfg := filterbank.DefaultMelConfig()
		melCfg.NMels = cfg.NMels
		melCfg.FMin = cfg.FMin
		fmax := cfg.EffectiveFMax()
		if a.resample {
			if internalNyquist := float64(a.internalSR) / 2; fmax > internalNyquist {
				fmax = internalNyquist
			}
		}
		melCfg.FMax = fmax
		a.melFB = filterbank.BuildMel(melCfg, cfg.NFFT, a.internalSR)
	}

	if cfg.ComputeChroma {
		a.chromaFB = buildChromaFilterbank(cfg.NFFT, a.internalSR, cfg.TuningRefHz)
		a.chordTemplates = analysis.GenerateTriadTemplates()
	}

	if cfg.ComputeSpectral {
		a.frequencies = make([]float64, nBins)
		binWidth := float64(a.internalSR) / float64(cfg.NFFT)
		for i := range a.frequencies {
			a.frequencies[i] = float64(i) * binWidth
		}
	}

	if cfg.ComputeMel {
		a.prevMelLog = make([]float64, cfg.NMels)
	}

	a.overlapBuffer = make([]float64, 0, cfg.Overlap()+cfg.NFFT)
	a.prevChordRoot, a.prevChordQuality = -1, -1
	a.estimate.Key = -1
	a.estimate.ChordRoot = -1
	a.currentBarIndex = -1

	return a
}

func buildChromaFilterbank(nFFT, sampleRate int, tuningRefHz float64) *filterbank.ChromaFilterbank {
	chromaCfg := filterbank.DefaultChromaConfig()
	chromaCfg.NChroma = 12
	chromaCfg.FMin = 65 // skip sub-bass per the streaming analyzer's fixed floor
	return filterbank.BuildChroma(chromaCfg, nFFT, sampleRate, tuningRefHz)
}

// Process consumes a PCM chunk, using the analyzer's running cumulative
// sample counter for timestamps.
func (a *Analyzer) Process(samples []float64) error {
	return a.processInternal(samples)
}

// ProcessAt consumes a PCM chunk, syncing the cumulative sample counter
// to an externally tracked absolute offset first. Use this when precise
// synchronization with an external clock (e.g. an audio device's
// playback position) is required.
func (a *Analyzer) ProcessAt(samples []float64, sampleOffset int) error {
	a.cumulativeSamples = sampleOffset
	return a.processInternal(samples)
}

func (a *Analyzer) processInternal(samples []float64) error {
	if len(samples) == 0 {
		return nil
	}

	processSamples := samples
	if a.resample {
		if a.resampler == nil {
			return audio.NewError(audio.InvalidParameter, "stream analyzer configured for resampling but no resampler was supplied")
		}
		f32 := make([]float32, len(samples))
		for i, v := range samples {
			f32[i] = float32(v)
		}
		resampled, err := a.resampler.Resample(f32, a.cfg.SampleRate, a.internalSR)
		if err != nil {
			return audio.Wrap(audio.InvalidParameter, "stream resample failed", err)
		}
		processSamples = make([]float64, len(resampled))
		for i, v := range resampled {
			processSamples[i] = float64(v)
		}
	}

	prevLen := len(a.overlapBuffer)
	a.overlapBuffer = append(a.overlapBuffer, make([]float64, len(processSamples))...)
	if a.normalizationGain != 1 {
		for i, v := range processSamples {
			a.overlapBuffer[prevLen+i] = v * a.normalizationGain
		}
	} else {
		copy(a.overlapBuffer[prevLen:], processSamples)
	}

	nFFT, hop := a.cfg.NFFT, a.cfg.HopLength
	for len(a.overlapBuffer) >= nFFT {
		frameSampleOffset := a.cumulativeSamples
		frame := a.processSingleFrame(a.overlapBuffer[:nFFT], frameSampleOffset)

		a.emittedFrameCount++
		if a.emittedFrameCount >= a.cfg.EmitEveryNFrames {
			a.emittedFrameCount = 0
			a.outputBuffer = append(a.outputBuffer, frame)
		}

		a.overlapBuffer = a.overlapBuffer[:copy(a.overlapBuffer, a.overlapBuffer[hop:])]
		a.cumulativeSamples += int(float64(hop) / a.resampleRatio)
		a.frameCount++

		currentTime := float64(a.cumulativeSamples) / float64(a.cfg.SampleRate)
		a.updateProgressiveEstimate(currentTime)
	}
	return nil
}

func (a *Analyzer) processSingleFrame(frameStart []float64, sampleOffset int) StreamFrame {
	frame := StreamFrame{
		Timestamp:  float64(sampleOffset) / float64(a.cfg.SampleRate),
		FrameIndex: a.frameCount,
		ChordRoot:  -1,
	}

	mag, power := a.computeSTFT(frameStart)

	if a.cfg.ComputeMagnitude {
		downsample := a.cfg.MagnitudeDownsample
		if downsample < 1 {
			downsample = 1
		}
		outBins := len(mag) / downsample
		frame.Magnitude = make([]float64, outBins)
		for i := 0; i < outBins; i++ {
			frame.Magnitude[i] = mag[i*downsample]
		}
	}

	var melLog []float64
	if a.cfg.ComputeMel {
		mel := filterbank.Apply(a.melFB.Matrix, a.melFB.NMels, a.melFB.NBins, power, 1)
		melLog = make([]float64, len(mel))
		for i, v := range mel {
			melLog[i] = math.Log(math.Max(v, 1e-10))
		}
		frame.Mel = mel
	}

	if a.cfg.ComputeChroma {
		chroma := filterbank.Apply(a.chromaFB.Matrix, a.chromaFB.NChroma, a.chromaFB.NBins, power, 1)
		normalizeL2(chroma)
		frame.Chroma = chroma

		for i := 0; i < 12; i++ {
			a.chromaSum[i] += chroma[i]
		}
		a.chromaFrameCount++
		a.accumulatedChroma = append(a.accumulatedChroma, chroma...)

		var cur [12]float64
		copy(cur[:], chroma)
		a.chromaHistory = append(a.chromaHistory, cur)
		if len(a.chromaHistory) > kChordSmoothingFrames {
			a.chromaHistory = a.chromaHistory[1:]
		}
		if len(a.fullChromaHistory) < kMaxChromaHistoryFrames {
			a.fullChromaHistory = append(a.fullChromaHistory, cur)
		}

		if len(a.chordTemplates) > 0 {
			smoothed := medianChroma(a.chromaHistory)
			best, corr := analysis.FindBestChord(smoothed[:], a.chordTemplates)
			if corr >= kChordConfidenceThreshold {
				frame.ChordRoot = best.Root
				frame.ChordQuality = int(best.Quality)
				frame.ChordConfidence = corr
			} else {
				if a.prevChordRoot >= 0 {
					frame.ChordRoot = a.prevChordRoot
					frame.ChordQuality = a.prevChordQuality
				} else {
					frame.ChordRoot = 0
					frame.ChordQuality = 0
				}
				frame.ChordConfidence = math.Max(0, corr)
			}
		}
	}

	if a.cfg.ComputeOnset {
		hadPrevFrame := a.hasPrevFrame
		frame.OnsetStrength = a.computeOnset(melLog)
		frame.OnsetValid = hadPrevFrame
		if frame.OnsetValid {
			a.onsetAccumulator = append(a.onsetAccumulator, frame.OnsetStrength)
		}
	}

	if a.cfg.ComputeSpectral {
		frame.SpectralCentroid = spectralCentroidFrame(mag, a.frequencies)
		frame.SpectralFlatness = spectralFlatnessFrame(mag)
	}

	frame.RMSEnergy = rmsFrame(frameStart)

	return frame
}

func (a *Analyzer) computeSTFT(frameStart []float64) (magnitude, power []float64) {
	windowed := make([]float64, a.cfg.NFFT)
	for i := range windowed {
		windowed[i] = frameStart[i] * a.window[i]
	}
	spectrum := a.fft.Forward(windowed)
	return primitives.Magnitude(spectrum), primitives.Power(spectrum)
}

func (a *Analyzer) computeOnset(melLog []float64) float64 {
	if !a.cfg.ComputeMel {
		return 0
	}
	onset := 0.0
	if a.hasPrevFrame {
		for m := range melLog {
			if diff := melLog[m] - a.prevMelLog[m]; diff > 0 {
				onset += diff
			}
		}
	}
	copy(a.prevMelLog, melLog)
	a.hasPrevFrame = true
	return onset
}

func normalizeL2(v []float64) {
	sumSq := 0.0
	for _, x := range v {
		sumSq += x * x
	}
	norm := math.Sqrt(sumSq)
	if norm <= 1e-10 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

func spectralCentroidFrame(mag, freqs []float64) float64 {
	sumWeighted, sumMag := 0.0, 0.0
	for k, m := range mag {
		sumWeighted += freqs[k] * m
		sumMag += m
	}
	if sumMag <= 1e-10 {
		return 0
	}
	return sumWeighted / sumMag
}

func spectralFlatnessFrame(mag []float64) float64 {
	sum, logSum := 0.0, 0.0
	count := 0
	for _, m := range mag {
		if m > 1e-10 {
			sum += m
			logSum += math.Log(m)
			count++
		}
	}
	if count == 0 || sum < 1e-10 {
		return 0
	}
	arithmeticMean := sum / float64(count)
	geometricMean := math.Exp(logSum / float64(count))
	return geometricMean / arithmeticMean
}

func rmsFrame(samples []float64) float64 {
	sumSq := 0.0
	for _, v := range samples {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

// medianChroma returns, per chroma bin, the median across all frames in
// history — more robust to single-frame outliers than averaging.
func medianChroma(history [][12]float64) [12]float64 {
	var result [12]float64
	n := len(history)
	if n == 0 {
		return result
	}
	values := make([]float64, n)
	for c := 0; c < 12; c++ {
		for f := 0; f < n; f++ {
			values[f] = history[f][c]
		}
		sort.Float64s(values)
		if n%2 == 0 {
			result[c] = (values[n/2-1] + values[n/2]) / 2
		} else {
			result[c] = values[n/2]
		}
	}
	return result
}

// AvailableFrames returns the number of StreamFrames waiting to be read.
func (a *Analyzer) AvailableFrames() int { return len(a.outputBuffer) }

// ReadFrames drains up to maxFrames completed StreamFrames.
func (a *Analyzer) ReadFrames(maxFrames int) []StreamFrame {
	n := maxFrames
	if n > len(a.outputBuffer) {
		n = len(a.outputBuffer)
	}
	out := a.outputBuffer[:n]
	a.outputBuffer = a.outputBuffer[n:]
	return out
}

// CurrentTime returns the stream-time position in seconds.
func (a *Analyzer) CurrentTime() float64 {
	return float64(a.cumulativeSamples) / float64(a.cfg.SampleRate)
}

// SetExpectedDuration informs the pattern-lock heuristic of the song's
// total expected duration, tightening the lock threshold.
func (a *Analyzer) SetExpectedDuration(seconds float64) { a.expectedDuration = seconds }

// SetNormalizationGain scales incoming samples before analysis, clamped
// to [0.01, 100] to avoid degenerate gain configuration.
func (a *Analyzer) SetNormalizationGain(gain float64) {
	if gain < 0.01 {
		gain = 0.01
	}
	if gain > 100 {
		gain = 100
	}
	a.normalizationGain = gain
}

// SetTuningRefHz rebuilds the chroma filterbank for a new reference
// pitch (clamped to [220, 880] Hz, i.e. A3 to A5).
func (a *Analyzer) SetTuningRefHz(refHz float64) {
	if refHz < 220 {
		refHz = 220
	}
	if refHz > 880 {
		refHz = 880
	}
	a.cfg.TuningRefHz = refHz
	if a.cfg.ComputeChroma {
		a.chromaFB = buildChromaFilterbank(a.cfg.NFFT, a.internalSR, refHz)
	}
}

// Reset discards all internal state, optionally continuing the
// cumulative sample counter from baseSampleOffset.
func (a *Analyzer) Reset(baseSampleOffset int) {
	a.cumulativeSamples = baseSampleOffset
	a.frameCount = 0
	a.emittedFrameCount = 0
	a.overlapBuffer = a.overlapBuffer[:0]
	a.outputBuffer = nil

	if a.cfg.ComputeMel {
		for i := range a.prevMelLog {
			a.prevMelLog[i] = 0
		}
	}
	a.hasPrevFrame = false

	a.onsetAccumulator = nil
	a.chromaSum = [12]float64{}
	a.chromaFrameCount = 0
	a.accumulatedChroma = nil
	a.lastKeyUpdateTime = 0
	a.lastBpmUpdateTime = 0
	a.lastChordAnalysisTime = 0
	a.estimate = ProgressiveEstimate{Key: -1, ChordRoot: -1}

	a.prevChordRoot, a.prevChordQuality = -1, -1
	a.chordStableTime = 0
	a.chromaHistory = nil
	a.fullChromaHistory = nil

	a.barTrackingActive = false
	a.barDuration = 0
	a.currentBarIndex = -1
	a.barStartTime = 0
	a.barChordVotes = [48]int{}
	a.barVoteCount = 0
	a.patternLocked = false
}

// Stats finalizes pattern detection and returns a snapshot of
// cumulative processing state.
func (a *Analyzer) Stats() AnalyzerStats {
	a.recomputePatterns()
	return AnalyzerStats{
		TotalFrames:     a.frameCount,
		TotalSamples:    a.cumulativeSamples,
		DurationSeconds: float64(a.cumulativeSamples) / float64(a.cfg.SampleRate),
		Estimate:        a.estimate,
	}
}
