// Package audio defines the buffer type and error taxonomy shared across
// the sonare core. It never decodes files or resamples; those are left to
// external collaborators (see Resampler).
package audio

import "fmt"

// Kind classifies a core error. All kinds are recoverable at the call site.
type Kind int

const (
	// InvalidParameter covers zero-length audio, non-positive sample rates,
	// bpm_min >= bpm_max, even median kernels, and similar argument errors.
	InvalidParameter Kind = iota
	// InvalidFormat is reserved for the audio-IO collaborator.
	InvalidFormat
	// DecodeFailed is reserved for the audio-IO collaborator.
	DecodeFailed
	// FileNotFound is reserved for the audio-IO collaborator.
	FileNotFound
	// OutOfMemory marks a large allocation failure.
	OutOfMemory
	// NotImplemented marks a selected feature that isn't implemented.
	NotImplemented
)

func (k Kind) String() string {
	switch k {
	case InvalidParameter:
		return "InvalidParameter"
	case InvalidFormat:
		return "InvalidFormat"
	case DecodeFailed:
		return "DecodeFailed"
	case FileNotFound:
		return "FileNotFound"
	case OutOfMemory:
		return "OutOfMemory"
	case NotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Error is the core's error type: a Kind plus a human message and an
// optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sonare: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("sonare: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind that wraps err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Buffer is a read-only mono PCM audio buffer.
type Buffer struct {
	samples []float32
	sr      int
}

// NewBuffer wraps samples (mono, already downmixed by the caller) at the
// given sample rate. The core never resamples implicitly.
func NewBuffer(samples []float32, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, NewError(InvalidParameter, "sample rate must be positive")
	}
	return &Buffer{samples: samples, sr: sampleRate}, nil
}

// Samples returns the underlying PCM data. Callers must not mutate it.
func (b *Buffer) Samples() []float32 { return b.samples }

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Empty reports whether the buffer holds no samples.
func (b *Buffer) Empty() bool { return len(b.samples) == 0 }

// SampleRate returns the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sr }

// Duration returns the buffer's duration in seconds.
func (b *Buffer) Duration() float64 {
	return float64(len(b.samples)) / float64(b.sr)
}

// Resampler converts PCM between sample rates. The core calls it but never
// implements it; callers resample before constructing a Buffer, or supply
// one to components (e.g. the streaming analyzer) that need it internally.
type Resampler interface {
	Resample(samples []float32, srcSR, dstSR int) ([]float32, error)
}

// FramesToTime converts a frame index to a time in seconds.
func FramesToTime(frame, sr, hopLength int) float64 {
	return float64(frame*hopLength) / float64(sr)
}

// TimeToFrames converts a time in seconds to a frame index, flooring.
func TimeToFrames(t float64, sr, hopLength int) int {
	return int(t * float64(sr) / float64(hopLength))
}
