package feature

import (
	"math"

	"github.com/austinkregel/sonare/primitives"
)

// MFCC holds cepstral coefficients, row-major [n_mfcc x n_frames].
type MFCC struct {
	NMFCC   int
	NFrames int
	Data    []float64
}

// MFCCConfig controls cepstral extraction.
type MFCCConfig struct {
	NMFCC  int
	MaxDB  float64 // reference level, 0 = the input's peak dB; dB floor is MaxDB-80
	Lifter int     // 0 disables liftering
}

// DefaultMFCCConfig returns the conventional 13-coefficient, unliftered
// configuration.
func DefaultMFCCConfig() MFCCConfig {
	return MFCCConfig{NMFCC: 13, MaxDB: 0, Lifter: 0}
}

// ComputeMFCC converts mel power to dB (clipped to a dynamic-range floor
// of MaxDB-80), then applies DCT-II per frame keeping the first NMFCC
// coefficients.
func ComputeMFCC(mel *MelSpectrogram, cfg MFCCConfig, dctCache *primitives.DCTCache) *MFCC {
	db := melPowerToDB(mel.Data, cfg.MaxDB)
	matrix := dctCache.Matrix(cfg.NMFCC, mel.NMels)

	out := make([]float64, cfg.NMFCC*mel.NFrames)
	column := make([]float64, mel.NMels)
	for t := 0; t < mel.NFrames; t++ {
		for m := 0; m < mel.NMels; m++ {
			column[m] = db[m*mel.NFrames+t]
		}
		coeffs := primitives.Apply(matrix, column)
		if cfg.Lifter > 0 {
			coeffs = primitives.Lifter(coeffs, cfg.Lifter)
		}
		for k := 0; k < cfg.NMFCC; k++ {
			out[k*mel.NFrames+t] = coeffs[k]
		}
	}

	return &MFCC{NMFCC: cfg.NMFCC, NFrames: mel.NFrames, Data: out}
}

func melPowerToDB(power []float64, maxDB float64) []float64 {
	db := make([]float64, len(power))
	top := math.Inf(-1)
	for i, v := range power {
		if v < 1e-10 {
			v = 1e-10
		}
		db[i] = 10 * math.Log10(v)
		if db[i] > top {
			top = db[i]
		}
	}
	if maxDB == 0 {
		maxDB = top
	}
	floor := maxDB - 80
	for i, v := range db {
		if v < floor {
			db[i] = floor
		}
	}
	return db
}

// Delta computes a first-derivative estimate over a centered odd-width
// window: Δ[t] = Σ i·(x[t+i]-x[t-i]) / (2·Σ i²), edges clamped.
func Delta(x []float64, width int) []float64 {
	if width < 3 {
		width = 3
	}
	if width%2 == 0 {
		width++
	}
	half := width / 2
	n := len(x)
	out := make([]float64, n)

	var denom float64
	for i := 1; i <= half; i++ {
		denom += float64(i * i)
	}
	denom *= 2

	at := func(i int) float64 {
		if i < 0 {
			return x[0]
		}
		if i >= n {
			return x[n-1]
		}
		return x[i]
	}

	for t := 0; t < n; t++ {
		var sum float64
		for i := 1; i <= half; i++ {
			sum += float64(i) * (at(t+i) - at(t-i))
		}
		if denom != 0 {
			out[t] = sum / denom
		}
	}
	return out
}
