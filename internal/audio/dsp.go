package audio

// Hook is a sample-domain post-processing step applied between inference and
// WAV encoding.
type Hook func(samples []float32) []float32

// ApplyHooks runs hooks over samples in order.
func ApplyHooks(samples []float32, hooks ...Hook) []float32 {
	out := samples
	for _, hook := range hooks {
		out = hook(out)
	}

	return out
}

// PeakNormalize scales samples so the peak amplitude reaches 1.0.
// Silence is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, s := range samples {
		if s > peak {
			peak = s
		}
		if -s > peak {
			peak = -s
		}
	}

	if peak == 0 {
		return samples
	}

	scale := 1.0 / peak
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s * scale
	}

	return out
}

// FadeIn applies a linear fade-in ramp over the given duration in milliseconds.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSamples(len(samples), sampleRate, ms)
	if n == 0 {
		return samples
	}

	out := append([]float32(nil), samples...)
	for i := 0; i < n; i++ {
		out[i] *= float32(i) / float32(n)
	}

	return out
}

// FadeOut applies a linear fade-out ramp over the given duration in milliseconds.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSamples(len(samples), sampleRate, ms)
	if n == 0 {
		return samples
	}

	out := append([]float32(nil), samples...)
	for i := 0; i < n; i++ {
		out[len(out)-1-i] *= float32(i) / float32(n)
	}

	return out
}

func fadeSamples(total, sampleRate int, ms float64) int {
	if ms <= 0 || sampleRate < 1 || total == 0 {
		return 0
	}

	n := int(ms * float64(sampleRate) / 1000)
	if n > total {
		n = total
	}

	return n
}
