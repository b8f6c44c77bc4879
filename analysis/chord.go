package analysis

// Chord is a detected chord segment.
type Chord struct {
	Root       int
	Quality    ChordQuality
	Start      float64
	End        float64
	Confidence float64
}

// ChordConfig controls chord recognition.
type ChordConfig struct {
	SmoothingWindowSec float64
	MinDurationSec     float64
	UseSevenths        bool
}

// DefaultChordConfig returns a 0.2s smoothing window, 0.1s minimum
// segment duration, and triad-only templates.
func DefaultChordConfig() ChordConfig {
	return ChordConfig{SmoothingWindowSec: 0.2, MinDurationSec: 0.1, UseSevenths: false}
}

// ChordAnalyzer detects a per-frame chord stream from a chromagram and
// segments it into contiguous chord regions.
type ChordAnalyzer struct {
	cfg       ChordConfig
	templates []ChordTemplate
}

// NewChordAnalyzer builds an analyzer with the given configuration.
func NewChordAnalyzer(cfg ChordConfig) *ChordAnalyzer {
	templates := GenerateTriadTemplates()
	if cfg.UseSevenths {
		templates = GenerateAllChordTemplates()
	}
	return &ChordAnalyzer{cfg: cfg, templates: templates}
}

// Analyze detects and segments chords from a [12 x n_frames] chroma
// matrix sampled at frameDuration seconds per frame.
func (a *ChordAnalyzer) Analyze(chroma []float64, nChroma, nFrames int, frameDuration float64) []Chord {
	smoothed := smoothChroma(chroma, nChroma, nFrames, a.cfg.SmoothingWindowSec, frameDuration)

	perFrameRoot := make([]int, nFrames)
	perFrameQuality := make([]ChordQuality, nFrames)
	perFrameScore := make([]float64, nFrames)
	for t := 0; t < nFrames; t++ {
		vec := make([]float64, nChroma)
		for m := 0; m < nChroma; m++ {
			vec[m] = smoothed[m*nFrames+t]
		}
		best, score := FindBestChord(vec, a.templates)
		perFrameRoot[t] = best.Root
		perFrameQuality[t] = best.Quality
		perFrameScore[t] = score
	}

	return segmentChords(perFrameRoot, perFrameQuality, perFrameScore, frameDuration, a.cfg.MinDurationSec)
}

func smoothChroma(chroma []float64, nChroma, nFrames int, windowSec, frameDuration float64) []float64 {
	if windowSec <= 0 || frameDuration <= 0 {
		out := make([]float64, len(chroma))
		copy(out, chroma)
		return out
	}
	halfFrames := int(windowSec / frameDuration / 2)
	out := make([]float64, len(chroma))
	for t := 0; t < nFrames; t++ {
		lo := t - halfFrames
		hi := t + halfFrames
		if lo < 0 {
			lo = 0
		}
		if hi >= nFrames {
			hi = nFrames - 1
		}
		count := float64(hi - lo + 1)
		for m := 0; m < nChroma; m++ {
			var sum float64
			for s := lo; s <= hi; s++ {
				sum += chroma[m*nFrames+s]
			}
			out[m*nFrames+t] = sum / count
		}
	}
	return out
}

func segmentChords(roots []int, qualities []ChordQuality, scores []float64, frameDuration, minDuration float64) []Chord {
	n := len(roots)
	if n == 0 {
		return nil
	}

	var segments []Chord
	segStart := 0
	for t := 1; t <= n; t++ {
		if t < n && roots[t] == roots[segStart] && qualities[t] == qualities[segStart] {
			continue
		}
		var sum float64
		for s := segStart; s < t; s++ {
			sum += scores[s]
		}
		segments = append(segments, Chord{
			Root:       roots[segStart],
			Quality:    qualities[segStart],
			Start:      float64(segStart) * frameDuration,
			End:        float64(t) * frameDuration,
			Confidence: sum / float64(t-segStart),
		})
		segStart = t
	}

	return mergeShortSegments(segments, minDuration)
}

func mergeShortSegments(segments []Chord, minDuration float64) []Chord {
	if len(segments) == 0 {
		return segments
	}
	merged := []Chord{segments[0]}
	for _, s := range segments[1:] {
		dur := s.End - s.Start
		prev := &merged[len(merged)-1]
		if dur < minDuration {
			// Fold the short segment into its predecessor.
			prevDur := prev.End - prev.Start
			prev.End = s.End
			total := prevDur + dur
			if total > 0 {
				prev.Confidence = (prev.Confidence*prevDur + s.Confidence*dur) / total
			}
			continue
		}
		if prev.Root == s.Root && prev.Quality == s.Quality {
			prevDur := prev.End - prev.Start
			prev.End = s.End
			total := prevDur + dur
			if total > 0 {
				prev.Confidence = (prev.Confidence*prevDur + s.Confidence*dur) / total
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// degreeNumerals maps scale degree (0..11, chromatic) to its Roman
// numeral base, uppercase form, for major-key reference; minor-key
// lowering is applied by the caller per-quality.
var degreeNumerals = [12]string{"I", "bII", "II", "bIII", "III", "IV", "bV", "V", "bVI", "VI", "bVII", "VII"}

// RomanNumeral translates a chord to a Roman numeral relative to key.
func RomanNumeral(chord Chord, key Key) string {
	degree := ((chord.Root - key.Root) % 12 + 12) % 12
	numeral := degreeNumerals[degree]

	lower := chord.Quality == Minor3 || chord.Quality == Dim || chord.Quality == Min7
	if lower {
		numeral = toLower(numeral)
	}

	switch chord.Quality {
	case Dim:
		numeral += "°"
	case Aug:
		numeral += "+"
	case Dom7:
		numeral += "7"
	case Maj7:
		numeral += "maj7"
	case Min7:
		numeral += "7"
	}
	return numeral
}

func toLower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
