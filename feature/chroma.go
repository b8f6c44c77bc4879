package feature

import (
	"math"

	"github.com/austinkregel/sonare/filterbank"
	"github.com/austinkregel/sonare/spectrogram"
)

// Chroma holds non-negative pitch-class energies, row-major
// [n_chroma x n_frames].
type Chroma struct {
	SampleRate int
	HopLength  int
	NChroma    int
	NFrames    int
	Data       []float64
}

// ComputeChroma projects s's power spectrogram through fb and L2-normalises
// each frame column.
func ComputeChroma(s *spectrogram.Spectrogram, fb *filterbank.ChromaFilterbank) *Chroma {
	data := filterbank.Apply(fb.Matrix, fb.NChroma, fb.NBins, s.Power(), s.NFrames)
	c := &Chroma{
		SampleRate: s.SampleRate,
		HopLength:  s.HopLength,
		NChroma:    fb.NChroma,
		NFrames:    s.NFrames,
		Data:       data,
	}
	c.normalizeFrames()
	return c
}

func (c *Chroma) normalizeFrames() {
	for t := 0; t < c.NFrames; t++ {
		var sumSq float64
		for m := 0; m < c.NChroma; m++ {
			v := c.Data[m*c.NFrames+t]
			sumSq += v * v
		}
		if sumSq == 0 {
			continue
		}
		norm := math.Sqrt(sumSq)
		for m := 0; m < c.NChroma; m++ {
			c.Data[m*c.NFrames+t] /= norm
		}
	}
}

// At returns the value at chroma bin m, frame t.
func (c *Chroma) At(bin, frame int) float64 { return c.Data[bin*c.NFrames+frame] }

// Frame returns a copy of the 12-dim (or n_chroma-dim) vector at frame t.
func (c *Chroma) Frame(t int) []float64 {
	out := make([]float64, c.NChroma)
	for m := 0; m < c.NChroma; m++ {
		out[m] = c.Data[m*c.NFrames+t]
	}
	return out
}

// MeanVector returns the mean chroma vector across all frames.
func (c *Chroma) MeanVector() []float64 {
	out := make([]float64, c.NChroma)
	if c.NFrames == 0 {
		return out
	}
	for m := 0; m < c.NChroma; m++ {
		var sum float64
		for t := 0; t < c.NFrames; t++ {
			sum += c.Data[m*c.NFrames+t]
		}
		out[m] = sum / float64(c.NFrames)
	}
	return out
}
