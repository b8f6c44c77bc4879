package spectrogram

import (
	"math"
	"testing"

	"github.com/austinkregel/sonare/primitives"
)

func sine(n, sr int, freq float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sr))
	}
	return out
}

func TestPowerEqualsMagnitudeSquared(t *testing.T) {
	sr := 22050
	cfg := DefaultConfig(sr)
	wc := primitives.NewWindowCache()
	s := Compute(sine(sr, sr, 440), cfg, wc)

	mag := s.Magnitude()
	pow := s.Power()
	for i := range mag {
		want := mag[i] * mag[i]
		if diff := math.Abs(pow[i] - want); diff > 1e-5*want+1e-9 {
			t.Fatalf("index %d: power=%v want %v (magnitude^2)", i, pow[i], want)
		}
	}
}

func TestNBinsShape(t *testing.T) {
	sr := 22050
	cfg := DefaultConfig(sr)
	wc := primitives.NewWindowCache()
	s := Compute(sine(sr, sr, 440), cfg, wc)

	if s.NBins != cfg.NFFT/2+1 {
		t.Fatalf("NBins = %d, want %d", s.NBins, cfg.NFFT/2+1)
	}
	if len(s.Complex()) != s.NBins*s.NFrames {
		t.Fatalf("complex data length = %d, want %d", len(s.Complex()), s.NBins*s.NFrames)
	}
}

func TestSTFTThenISTFTRecoversSignalWithGoodSNR(t *testing.T) {
	sr := 22050
	n := sr // 1 second
	signal := sine(n, sr, 440)

	cfg := DefaultConfig(sr)
	wc := primitives.NewWindowCache()
	s := Compute(signal, cfg, wc)
	recon := Inverse(s, cfg, wc, n)

	skip := cfg.NFFT
	if skip > n/2 {
		skip = n / 2
	}

	var signalPower, noisePower float64
	for i := skip; i < n-skip; i++ {
		signalPower += signal[i] * signal[i]
		diff := signal[i] - recon[i]
		noisePower += diff * diff
	}
	if noisePower == 0 {
		return
	}
	snr := 10 * math.Log10(signalPower/noisePower)
	if snr < 20 {
		t.Fatalf("SNR = %v dB, want >= 20 dB", snr)
	}
}

func TestToDBMatchesPowerLength(t *testing.T) {
	sr := 22050
	cfg := DefaultConfig(sr)
	wc := primitives.NewWindowCache()
	s := Compute(sine(sr, sr, 440), cfg, wc)

	db := s.ToDB(1.0, 1e-10)
	if len(db) != len(s.Power()) {
		t.Fatalf("length mismatch: %d vs %d", len(db), len(s.Power()))
	}
}
