package stream

// StreamFrame holds every computed feature for one STFT frame. Slice
// fields are nil when the corresponding Config.Compute* flag is off.
type StreamFrame struct {
	Timestamp  float64 // stream time in seconds, not host playback time
	FrameIndex int

	Magnitude []float64 // [n_bins/downsample], present if ComputeMagnitude
	Mel       []float64 // [n_mels], present if ComputeMel
	Chroma    []float64 // [12], present if ComputeChroma

	SpectralCentroid float64
	SpectralFlatness float64
	RMSEnergy        float64

	OnsetStrength float64
	OnsetValid    bool // false for the very first frame (no prior log-mel)

	ChordRoot       int // 0-11; -1 when chroma is off, 0 until a first chord is detected
	ChordQuality    int // analysis.ChordQuality cast to int, 0 when unknown
	ChordConfidence float64
}

// ChordChange is one frame-based chord-progression entry: the chord
// held stable for at least kChordMinDurationSec before changing.
type ChordChange struct {
	Root       int
	Quality    int
	StartTime  float64
	Confidence float64
}

// BarChord is one bar's winning chord from bar-synchronous voting.
type BarChord struct {
	BarIndex   int
	Root       int
	Quality    int
	StartTime  float64
	Confidence float64
}

// PatternScore pairs a library pattern name with its whole-song match
// score.
type PatternScore struct {
	Name  string
	Score float64
}

// ProgressiveEstimate is the analyzer's current best guess at BPM, key,
// chord, and chord progression, refined as more audio is processed.
type ProgressiveEstimate struct {
	BPM              float64
	BPMConfidence    float64
	BPMCandidateCount int

	Key           int // 0-11, -1 = unknown
	KeyMinor      bool
	KeyConfidence float64

	ChordRoot       int
	ChordQuality    int
	ChordConfidence float64

	ChordProgression []ChordChange

	BarDuration         float64
	CurrentBar          int
	BarChordProgression []BarChord
	VotedPattern         []BarChord
	PatternLength        int
	DetectedPatternName  string
	DetectedPatternScore float64
	AllPatternScores     []PatternScore

	AccumulatedSeconds float64
	UsedFrames         int
	Updated            bool
}

// AnalyzerStats summarizes cumulative processing state.
type AnalyzerStats struct {
	TotalFrames     int
	TotalSamples    int
	DurationSeconds float64
	Estimate        ProgressiveEstimate
}

// FrameBuffer is a structure-of-arrays view of drained StreamFrames:
// contiguous per-feature arrays concatenated in frame order. Mel and
// chroma are row-major with the frame axis outermost, so
// buffer.Mel[f*NMels+m] is frame f, bin m.
type FrameBuffer struct {
	NFrames int
	NMels   int

	Timestamps       []float64
	Mel              []float64
	Chroma           []float64
	OnsetStrength    []float64
	RMSEnergy        []float64
	SpectralCentroid []float64
	SpectralFlatness []float64
	ChordRoot        []int
	ChordQuality     []int
	ChordConfidence  []float64
}

// QuantizedFrameBufferU8 mirrors FrameBuffer with mel/chroma/scalars
// linearly quantized to 0..255, reducing bandwidth 4x versus Float32.
type QuantizedFrameBufferU8 struct {
	NFrames int
	NMels   int

	Timestamps       []float64
	Mel              []uint8
	Chroma           []uint8
	OnsetStrength    []uint8
	RMSEnergy        []uint8
	SpectralCentroid []uint8
	SpectralFlatness []uint8
}

// QuantizedFrameBufferI16 mirrors FrameBuffer with mel/chroma/scalars
// linearly quantized to the int16 range, halving bandwidth versus
// Float32 with more headroom than the U8 variant.
type QuantizedFrameBufferI16 struct {
	NFrames int
	NMels   int

	Timestamps       []float64
	Mel              []int16
	Chroma           []int16
	OnsetStrength    []int16
	RMSEnergy        []int16
	SpectralCentroid []int16
	SpectralFlatness []int16
}
