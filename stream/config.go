// Package stream implements a real-time, chunk-at-a-time analyzer:
// push PCM as it arrives, pull completed StreamFrames and progressive
// BPM/key/chord estimates from an internal ring. Everything here is
// single-threaded and cooperative; there are no suspension points
// inside Process.
package stream

import "github.com/austinkregel/sonare/primitives"

// OutputFormat selects the precision of a drained buffer.
type OutputFormat int

const (
	Float32 OutputFormat = iota
	Int16
	Uint8
)

// Config controls StreamAnalyzer construction.
type Config struct {
	SampleRate int
	NFFT       int
	HopLength  int
	Window     primitives.WindowType

	ComputeMagnitude bool
	ComputeMel       bool
	ComputeChroma    bool
	ComputeOnset     bool
	ComputeSpectral  bool

	NMels int
	FMin  float64
	FMax  float64 // 0 = sr/2

	TuningRefHz float64

	OutputFormat        OutputFormat
	EmitEveryNFrames    int
	MagnitudeDownsample int

	KeyUpdateIntervalSec float64
	BpmUpdateIntervalSec float64
}

// DefaultConfig mirrors the original library's defaults: 2048/512 STFT,
// Hann window, all features on, 128 mel bands, emit every frame.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:           sampleRate,
		NFFT:                 2048,
		HopLength:            512,
		Window:               primitives.Hann,
		ComputeMagnitude:     true,
		ComputeMel:           true,
		ComputeChroma:        true,
		ComputeOnset:         true,
		ComputeSpectral:      true,
		NMels:                128,
		FMin:                 0,
		FMax:                 0,
		TuningRefHz:          440,
		OutputFormat:         Float32,
		EmitEveryNFrames:     1,
		MagnitudeDownsample:  1,
		KeyUpdateIntervalSec: 5,
		BpmUpdateIntervalSec: 10,
	}
}

// NBins returns n_fft/2+1.
func (c Config) NBins() int { return c.NFFT/2 + 1 }

// Overlap returns n_fft - hop_length, the number of samples retained
// between process() calls.
func (c Config) Overlap() int { return c.NFFT - c.HopLength }

// FrameDuration returns hop_length/sample_rate in seconds.
func (c Config) FrameDuration() float64 {
	return float64(c.HopLength) / float64(c.SampleRate)
}

// EffectiveFMax returns FMax, or sr/2 when FMax is 0.
func (c Config) EffectiveFMax() float64 {
	if c.FMax > 0 {
		return c.FMax
	}
	return float64(c.SampleRate) / 2
}

// QuantizeConfig controls the clamp ranges used by the quantized read
// APIs; values outside [min,max] are clipped before scaling.
type QuantizeConfig struct {
	MelDBMin    float64
	MelDBMax    float64
	OnsetMax    float64
	RMSMax      float64
	CentroidMax float64
}

// DefaultQuantizeConfig matches the dB and magnitude ranges typical of
// music signals: mel in [-80, 0] dB, onset up to 50, RMS up to 1,
// centroid up to 11025 Hz (Nyquist at a 22050 Hz internal rate).
func DefaultQuantizeConfig() QuantizeConfig {
	return QuantizeConfig{MelDBMin: -80, MelDBMax: 0, OnsetMax: 50, RMSMax: 1, CentroidMax: 11025}
}

// Internal resampling thresholds: inputs above kMaxDirectSampleRate are
// downsampled to kInternalSampleRate before analysis, keeping filterbank
// and FFT sizes independent of the caller's sample rate.
const (
	kMaxDirectSampleRate = 48000
	kInternalSampleRate  = 44100
)

// Bar-synchronous chord tracking constants (spec 4.13/4.14).
const (
	kBeatsPerBar              = 4
	kBpmConfidenceThreshold   = 0.5
	kChordConfidenceThreshold = 0.5
	kChordMinDurationSec      = 0.2
	kChordSmoothingFrames     = 20
	kMaxChromaHistoryFrames   = 4000
	kMinOnsetFramesForBpm     = 100
)
