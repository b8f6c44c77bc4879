// Package main is a thin demo CLI over the sonare core library. It reads
// raw mono PCM from stdin and prints whatever analysis the core produces;
// it does no decoding, resampling, or file I/O of its own, since those
// stay outside the library's scope.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/austinkregel/sonare/analysis"
	"github.com/austinkregel/sonare/filterbank"
	"github.com/austinkregel/sonare/primitives"
	"github.com/austinkregel/sonare/spectrogram"
	"github.com/austinkregel/sonare/stream"
)

// Config holds the demo's command-line configuration.
type Config struct {
	SampleRate int
	Format     string // "s16le" or "f32le"
	Mode       string // "batch" or "stream"
	ChunkSize  int
	Verbose    bool
}

func main() {
	cfg := parseFlags()

	if cfg.Verbose {
		log.Printf("[DEMO] sonare demo starting, mode=%s sr=%d format=%s", cfg.Mode, cfg.SampleRate, cfg.Format)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.IntVar(&cfg.SampleRate, "sr", 44100, "sample rate of the incoming PCM, in Hz")
	flag.StringVar(&cfg.Format, "format", "s16le", "PCM sample format: s16le or f32le")
	flag.StringVar(&cfg.Mode, "mode", "batch", "analysis mode: batch or stream")
	flag.IntVar(&cfg.ChunkSize, "chunk", 4096, "samples read per stdin chunk in stream mode")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()

	return cfg
}

func run(cfg *Config) error {
	switch cfg.Mode {
	case "batch":
		return runBatch(cfg)
	case "stream":
		return runStream(cfg)
	default:
		return fmt.Errorf("unknown mode %q (want batch or stream)", cfg.Mode)
	}
}

func runBatch(cfg *Config) error {
	samples, err := readAllSamples(os.Stdin, cfg.Format)
	if err != nil {
		return fmt.Errorf("failed to read PCM from stdin: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples read from stdin")
	}
	log.Printf("[DEMO] read %d samples (%.2fs)", len(samples), float64(len(samples))/float64(cfg.SampleRate))

	wc := primitives.NewWindowCache()
	specCfg := spectrogram.DefaultConfig(cfg.SampleRate)
	spec := spectrogram.Compute(samples, specCfg, wc)

	melFB := filterbank.BuildMel(filterbank.DefaultMelConfig(), specCfg.NFFT, cfg.SampleRate)
	chromaFB := filterbank.BuildChroma(filterbank.DefaultChromaConfig(), specCfg.NFFT, cfg.SampleRate, 440)

	progress := func(stage string) {
		if cfg.Verbose {
			log.Printf("[DEMO] stage complete: %s", stage)
		}
	}

	analyzer := analysis.NewMusicAnalyzer(spec, samples, melFB, chromaFB, progress)
	analyzer.RunAll()

	printBatchReport(analyzer)
	return nil
}

func runStream(cfg *Config) error {
	streamCfg := stream.DefaultConfig(cfg.SampleRate)
	a := stream.NewAnalyzer(streamCfg, nil)

	reader := bufio.NewReader(os.Stdin)
	chunk := make([]float64, cfg.ChunkSize)

	for {
		n, err := readSampleChunk(reader, cfg.Format, chunk)
		if n > 0 {
			if procErr := a.Process(chunk[:n]); procErr != nil {
				return fmt.Errorf("stream processing failed: %w", procErr)
			}
			for _, frame := range a.ReadFrames(a.AvailableFrames()) {
				if cfg.Verbose {
					log.Printf("[DEMO] frame %d t=%.3fs onset=%.3f rms=%.3f chord=%s%s",
						frame.FrameIndex, frame.Timestamp, frame.OnsetStrength, frame.RMSEnergy,
						noteName(frame.ChordRoot), qualityLabel(frame.ChordQuality))
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read PCM chunk: %w", err)
		}
	}

	stats := a.Stats()
	printStreamReport(stats)
	return nil
}

func printBatchReport(a *analysis.MusicAnalyzer) {
	bpm := a.Bpm()
	key := a.Key()
	chords := a.Chords()
	sections := a.Sections()

	fmt.Printf("BPM: %.1f (confidence %.2f)\n", bpm.BPM, bpm.Confidence)
	fmt.Printf("Key: %s %s (confidence %.2f)\n", noteName(key.Root), modeLabel(key.Mode), key.Confidence)
	fmt.Printf("Chords: %d segments\n", len(chords))
	for _, c := range chords {
		fmt.Printf("  %6.2fs - %6.2fs  %s%s  (%.2f)\n", c.Start, c.End, noteName(c.Root), c.Quality, c.Confidence)
	}
	fmt.Printf("Form: %s\n", analysis.Form(sections))
	fmt.Printf("Timbre: brightness=%.2f warmth=%.2f\n", a.Timbre().Brightness, a.Timbre().Warmth)
	fmt.Printf("Dynamics: loudness range=%.2f dB\n", a.Dynamics().LoudnessRangeDB)
}

func printStreamReport(stats stream.AnalyzerStats) {
	est := stats.Estimate
	fmt.Printf("Processed %d frames (%.2fs)\n", stats.TotalFrames, stats.DurationSeconds)
	fmt.Printf("BPM: %.1f (confidence %.2f)\n", est.BPM, est.BPMConfidence)
	fmt.Printf("Key: %s (confidence %.2f)\n", noteName(est.Key), est.KeyConfidence)
	if est.DetectedPatternName != "" {
		fmt.Printf("Progression pattern: %s (score %.2f)\n", est.DetectedPatternName, est.DetectedPatternScore)
	}
	for _, c := range est.ChordProgression {
		fmt.Printf("  %6.2fs  %s%s\n", c.StartTime, noteName(c.Root), qualityLabel(c.Quality))
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(pitchClass int) string {
	if pitchClass < 0 || pitchClass > 11 {
		return "?"
	}
	return noteNames[pitchClass]
}

func modeLabel(m analysis.Mode) string {
	if m == analysis.Minor {
		return "minor"
	}
	return "major"
}

func qualityLabel(q int) string {
	switch analysis.ChordQuality(q) {
	case analysis.Major3:
		return ""
	case analysis.Minor3:
		return "m"
	default:
		return analysis.ChordQuality(q).String()
	}
}

// readAllSamples reads every sample from r into a float64 slice, converting
// from the given wire format.
func readAllSamples(r io.Reader, format string) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeSamples(data, format)
}

func decodeSamples(data []byte, format string) ([]float64, error) {
	switch format {
	case "s16le":
		n := len(data) / 2
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = float64(v) / 32768.0
		}
		return samples, nil
	case "f32le":
		n := len(data) / 4
		samples := make([]float64, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(data[i*4:])
			samples[i] = float64(math.Float32frombits(bits))
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want s16le or f32le)", format)
	}
}

// readSampleChunk fills dst with up to len(dst) decoded samples, returning
// the count actually read. It may return n > 0 alongside io.EOF for the
// final partial chunk.
func readSampleChunk(r *bufio.Reader, format string, dst []float64) (int, error) {
	bytesPerSample := 2
	if format == "f32le" {
		bytesPerSample = 4
	}
	buf := make([]byte, len(dst)*bytesPerSample)
	n, err := io.ReadFull(r, buf)
	if n == 0 {
		return 0, err
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	usable := n - (n % bytesPerSample)
	decoded, decodeErr := decodeSamples(buf[:usable], format)
	if decodeErr != nil {
		return 0, decodeErr
	}
	copy(dst, decoded)
	return len(decoded), err
}
