package stream

import (
	"math"
	"testing"
)

func sineStream(n, sr int, freq float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sr))
	}
	return out
}

func TestProcessFirstFrameOnsetInvalidRestValid(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440)
	cfg := DefaultConfig(sr)
	a := NewAnalyzer(cfg, nil)

	chunk := 2048
	for i := 0; i < len(samples); i += chunk {
		end := i + chunk
		if end > len(samples) {
			end = len(samples)
		}
		if err := a.Process(samples[i:end]); err != nil {
			t.Fatalf("Process returned error: %v", err)
		}
	}

	frames := a.ReadFrames(a.AvailableFrames())
	if len(frames) == 0 {
		t.Fatalf("expected at least one frame")
	}
	if frames[0].OnsetValid {
		t.Fatalf("first frame OnsetValid = true, want false")
	}
	for i := 1; i < len(frames); i++ {
		if !frames[i].OnsetValid {
			t.Fatalf("frame %d OnsetValid = false, want true", i)
		}
	}
}

func TestStatsKeyEstimateMatchesSineFrequency(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440) // A4
	cfg := DefaultConfig(sr)
	cfg.KeyUpdateIntervalSec = 0.01
	a := NewAnalyzer(cfg, nil)

	chunk := 2048
	for i := 0; i < len(samples); i += chunk {
		end := i + chunk
		if end > len(samples) {
			end = len(samples)
		}
		if err := a.Process(samples[i:end]); err != nil {
			t.Fatalf("Process returned error: %v", err)
		}
	}

	stats := a.Stats()
	if stats.Estimate.Key != 9 {
		t.Fatalf("Key = %d, want 9 (A)", stats.Estimate.Key)
	}
	if stats.Estimate.KeyConfidence <= 0 {
		t.Fatalf("KeyConfidence = %v, want > 0", stats.Estimate.KeyConfidence)
	}
}

func TestAvailableFramesDrainsToZero(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440)
	cfg := DefaultConfig(sr)
	a := NewAnalyzer(cfg, nil)

	if err := a.Process(samples); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	n := a.AvailableFrames()
	if n == 0 {
		t.Fatalf("expected frames available")
	}
	frames := a.ReadFrames(n)
	if len(frames) != n {
		t.Fatalf("len(frames) = %d, want %d", len(frames), n)
	}
	if a.AvailableFrames() != 0 {
		t.Fatalf("AvailableFrames() after drain = %d, want 0", a.AvailableFrames())
	}
}

func TestResetClearsBuffersAndEstimate(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440)
	cfg := DefaultConfig(sr)
	a := NewAnalyzer(cfg, nil)

	if err := a.Process(samples); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if a.AvailableFrames() == 0 {
		t.Fatalf("expected frames before reset")
	}

	a.Reset(0)

	if a.AvailableFrames() != 0 {
		t.Fatalf("AvailableFrames() after reset = %d, want 0", a.AvailableFrames())
	}
	stats := a.Stats()
	if stats.TotalFrames != 0 {
		t.Fatalf("TotalFrames after reset = %d, want 0", stats.TotalFrames)
	}
	if stats.Estimate.Key != -1 {
		t.Fatalf("Key after reset = %d, want -1", stats.Estimate.Key)
	}
}

func TestEmitEveryNFramesThrottles(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440)

	cfgAll := DefaultConfig(sr)
	aAll := NewAnalyzer(cfgAll, nil)
	if err := aAll.Process(samples); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	cfgThrottled := DefaultConfig(sr)
	cfgThrottled.EmitEveryNFrames = 4
	aThrottled := NewAnalyzer(cfgThrottled, nil)
	if err := aThrottled.Process(samples); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if aThrottled.AvailableFrames() >= aAll.AvailableFrames() {
		t.Fatalf("throttled frame count %d should be less than unthrottled %d", aThrottled.AvailableFrames(), aAll.AvailableFrames())
	}
}

func TestReadFramesSOAShapesMatch(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440)
	cfg := DefaultConfig(sr)
	a := NewAnalyzer(cfg, nil)
	if err := a.Process(samples); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	n := a.AvailableFrames()
	buf := a.ReadFramesSOA(n)
	if buf.NFrames != n {
		t.Fatalf("NFrames = %d, want %d", buf.NFrames, n)
	}
	if len(buf.Mel) != n*cfg.NMels {
		t.Fatalf("len(Mel) = %d, want %d", len(buf.Mel), n*cfg.NMels)
	}
	if len(buf.Chroma) != n*12 {
		t.Fatalf("len(Chroma) = %d, want %d", len(buf.Chroma), n*12)
	}
}

func TestReadFramesQuantizedU8InRange(t *testing.T) {
	sr := 22050
	samples := sineStream(sr, sr, 440)
	cfg := DefaultConfig(sr)
	a := NewAnalyzer(cfg, nil)
	if err := a.Process(samples); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	buf := a.ReadFramesQuantizedU8(a.AvailableFrames(), DefaultQuantizeConfig())
	for _, c := range buf.Chroma {
		if c > 255 {
			t.Fatalf("chroma quantized value %d out of uint8 range", c)
		}
	}
	if len(buf.Timestamps) != buf.NFrames {
		t.Fatalf("len(Timestamps) = %d, want %d", len(buf.Timestamps), buf.NFrames)
	}
}
