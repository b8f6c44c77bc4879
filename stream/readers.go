package stream

import "math"

// ReadFramesSOA drains up to maxFrames completed StreamFrames into a
// structure-of-arrays buffer, more efficient to serialize than a slice
// of structs.
func (a *Analyzer) ReadFramesSOA(maxFrames int) FrameBuffer {
	frames := a.ReadFrames(maxFrames)
	buf := FrameBuffer{NFrames: len(frames), NMels: a.cfg.NMels}
	if len(frames) == 0 {
		return buf
	}

	buf.Timestamps = make([]float64, len(frames))
	buf.OnsetStrength = make([]float64, len(frames))
	buf.RMSEnergy = make([]float64, len(frames))
	buf.SpectralCentroid = make([]float64, len(frames))
	buf.SpectralFlatness = make([]float64, len(frames))
	buf.ChordRoot = make([]int, len(frames))
	buf.ChordQuality = make([]int, len(frames))
	buf.ChordConfidence = make([]float64, len(frames))

	for i, f := range frames {
		buf.Timestamps[i] = f.Timestamp
		buf.OnsetStrength[i] = f.OnsetStrength
		buf.RMSEnergy[i] = f.RMSEnergy
		buf.SpectralCentroid[i] = f.SpectralCentroid
		buf.SpectralFlatness[i] = f.SpectralFlatness
		buf.ChordRoot[i] = f.ChordRoot
		buf.ChordQuality[i] = f.ChordQuality
		buf.ChordConfidence[i] = f.ChordConfidence
		buf.Mel = append(buf.Mel, f.Mel...)
		buf.Chroma = append(buf.Chroma, f.Chroma...)
	}
	return buf
}

func quantizeU8(value, minVal, maxVal float64) uint8 {
	normalized := (value - minVal) / (maxVal - minVal)
	normalized = math.Max(0, math.Min(1, normalized))
	return uint8(normalized*255 + 0.5)
}

func quantizeI16(value, minVal, maxVal float64) int16 {
	normalized := (value - minVal) / (maxVal - minVal)
	normalized = math.Max(0, math.Min(1, normalized))
	return int16(normalized*65535 - 32768 + 0.5)
}

func melPowerToDB(power float64) float64 {
	return 10 * math.Log10(math.Max(power, 1e-10))
}

// ReadFramesQuantizedU8 drains up to maxFrames completed StreamFrames
// into an 8-bit quantized buffer, reducing bandwidth 4x versus Float32.
// Mel is converted to dB before quantizing; chroma and flatness are
// already in [0,1]; other scalars use qcfg's per-feature ranges.
func (a *Analyzer) ReadFramesQuantizedU8(maxFrames int, qcfg QuantizeConfig) QuantizedFrameBufferU8 {
	frames := a.ReadFrames(maxFrames)
	buf := QuantizedFrameBufferU8{NFrames: len(frames), NMels: a.cfg.NMels}
	if len(frames) == 0 {
		return buf
	}

	for _, f := range frames {
		buf.Timestamps = append(buf.Timestamps, f.Timestamp)
		for _, melPower := range f.Mel {
			buf.Mel = append(buf.Mel, quantizeU8(melPowerToDB(melPower), qcfg.MelDBMin, qcfg.MelDBMax))
		}
		for _, c := range f.Chroma {
			buf.Chroma = append(buf.Chroma, quantizeU8(c, 0, 1))
		}
		buf.OnsetStrength = append(buf.OnsetStrength, quantizeU8(f.OnsetStrength, 0, qcfg.OnsetMax))
		buf.RMSEnergy = append(buf.RMSEnergy, quantizeU8(f.RMSEnergy, 0, qcfg.RMSMax))
		buf.SpectralCentroid = append(buf.SpectralCentroid, quantizeU8(f.SpectralCentroid, 0, qcfg.CentroidMax))
		buf.SpectralFlatness = append(buf.SpectralFlatness, quantizeU8(f.SpectralFlatness, 0, 1))
	}
	return buf
}

// ReadFramesQuantizedI16 is ReadFramesQuantizedU8's higher-precision
// sibling, quantizing into the full int16 range instead of 0..255.
func (a *Analyzer) ReadFramesQuantizedI16(maxFrames int, qcfg QuantizeConfig) QuantizedFrameBufferI16 {
	frames := a.ReadFrames(maxFrames)
	buf := QuantizedFrameBufferI16{NFrames: len(frames), NMels: a.cfg.NMels}
	if len(frames) == 0 {
		return buf
	}

	for _, f := range frames {
		buf.Timestamps = append(buf.Timestamps, f.Timestamp)
		for _, melPower := range f.Mel {
			buf.Mel = append(buf.Mel, quantizeI16(melPowerToDB(melPower), qcfg.MelDBMin, qcfg.MelDBMax))
		}
		for _, c := range f.Chroma {
			buf.Chroma = append(buf.Chroma, quantizeI16(c, 0, 1))
		}
		buf.OnsetStrength = append(buf.OnsetStrength, quantizeI16(f.OnsetStrength, 0, qcfg.OnsetMax))
		buf.RMSEnergy = append(buf.RMSEnergy, quantizeI16(f.RMSEnergy, 0, qcfg.RMSMax))
		buf.SpectralCentroid = append(buf.SpectralCentroid, quantizeI16(f.SpectralCentroid, 0, qcfg.CentroidMax))
		buf.SpectralFlatness = append(buf.SpectralFlatness, quantizeI16(f.SpectralFlatness, 0, 1))
	}
	return buf
}
