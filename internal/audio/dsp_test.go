package audio

import (
	"math"
	"testing"
)

func TestPeakNormalize(t *testing.T) {
	t.Run("scales peak to 1.0", func(t *testing.T) {
		out := PeakNormalize([]float32{0.25, -0.5, 0.1})
		if math.Abs(float64(out[1])+1.0) > 1e-6 {
			t.Errorf("peak sample = %v, want -1.0", out[1])
		}
		if math.Abs(float64(out[0])-0.5) > 1e-6 {
			t.Errorf("scaled sample = %v, want 0.5", out[0])
		}
	})

	t.Run("silence is unchanged", func(t *testing.T) {
		in := []float32{0, 0, 0}
		out := PeakNormalize(in)
		for i, v := range out {
			if v != 0 {
				t.Errorf("sample %d = %v, want 0", i, v)
			}
		}
	})
}

func TestFades(t *testing.T) {
	samples := make([]float32, 240) // 10 ms at 24 kHz
	for i := range samples {
		samples[i] = 1.0
	}

	t.Run("fade-in ramps from zero", func(t *testing.T) {
		out := FadeIn(samples, 24000, 5)
		if out[0] != 0 {
			t.Errorf("first sample = %v, want 0", out[0])
		}
		if out[len(out)-1] != 1.0 {
			t.Errorf("last sample = %v, want untouched 1.0", out[len(out)-1])
		}
		if out[60] >= out[119] {
			t.Errorf("ramp not increasing: %v >= %v", out[60], out[119])
		}
	})

	t.Run("fade-out ramps to zero", func(t *testing.T) {
		out := FadeOut(samples, 24000, 5)
		if out[len(out)-1] != 0 {
			t.Errorf("last sample = %v, want 0", out[len(out)-1])
		}
		if out[0] != 1.0 {
			t.Errorf("first sample = %v, want untouched 1.0", out[0])
		}
	})

	t.Run("zero duration is a no-op", func(t *testing.T) {
		out := FadeIn(samples, 24000, 0)
		if out[0] != 1.0 {
			t.Errorf("sample changed by zero-duration fade: %v", out[0])
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		_ = FadeOut(samples, 24000, 5)
		if samples[len(samples)-1] != 1.0 {
			t.Error("FadeOut mutated its input")
		}
	})
}

func TestApplyHooks(t *testing.T) {
	doubled := func(s []float32) []float32 {
		out := make([]float32, len(s))
		for i, v := range s {
			out[i] = v * 2
		}
		return out
	}

	out := ApplyHooks([]float32{0.1}, doubled, doubled)
	if math.Abs(float64(out[0])-0.4) > 1e-6 {
		t.Errorf("hooks not applied in order: %v", out[0])
	}
}
