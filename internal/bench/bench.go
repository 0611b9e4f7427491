// Package bench measures synthesis latency and real-time factor for the
// kittentts bench command.
package bench

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"
)

// RunResult holds the timing and audio metadata for a single synthesis run.
type RunResult struct {
	Index       int
	Cold        bool // first run, pays session warm-up
	Duration    time.Duration
	WAVDuration time.Duration
	RTF         float64
}

// Stats aggregates wall-clock timings across runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// SynthesizeFunc produces WAV bytes for one benchmark iteration.
type SynthesizeFunc func(ctx context.Context) ([]byte, error)

// Measure runs fn a total of runs times and collects per-run timings, audio
// durations, and real-time factors. The first run is marked cold.
func Measure(ctx context.Context, runs int, fn SynthesizeFunc) ([]RunResult, Stats, error) {
	if runs <= 0 {
		return nil, Stats{}, fmt.Errorf("runs must be positive, got %d", runs)
	}

	results := make([]RunResult, 0, runs)
	durations := make([]time.Duration, 0, runs)

	for i := range runs {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}

		start := time.Now()
		wav, err := fn(ctx)
		elapsed := time.Since(start)

		if err != nil {
			return nil, Stats{}, fmt.Errorf("run %d/%d: %w", i+1, runs, err)
		}

		audioDur, err := WAVDuration(wav)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("run %d/%d: %w", i+1, runs, err)
		}

		results = append(results, RunResult{
			Index:       i,
			Cold:        i == 0,
			Duration:    elapsed,
			WAVDuration: audioDur,
			RTF:         CalcRTF(elapsed, audioDur),
		})
		durations = append(durations, elapsed)
	}

	return results, ComputeStats(durations), nil
}

// ComputeStats returns min, max and mean over durations; a zero Stats for an
// empty slice.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return Stats{
		Min:  slices.Min(durations),
		Max:  slices.Max(durations),
		Mean: total / time.Duration(len(durations)),
	}
}

// CalcRTF returns the real-time factor, synthesis time over audio time.
// Values below 1 mean faster than playback. A non-positive audio duration
// yields 0 rather than a division blow-up.
func CalcRTF(synthDur, audioDur time.Duration) float64 {
	if audioDur <= 0 {
		return 0
	}
	return float64(synthDur) / float64(audioDur)
}

// MeanRTF averages the real-time factor across runs. Returns 0 for no runs.
func MeanRTF(runs []RunResult) float64 {
	if len(runs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range runs {
		sum += r.RTF
	}
	return sum / float64(len(runs))
}

// CheckRTFThreshold gates a benchmark on its mean real-time factor. A
// threshold of 0 or below disables the gate.
func CheckRTFThreshold(meanRTF, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if meanRTF > threshold {
		return fmt.Errorf("mean RTF %.3f exceeds threshold %.3f", meanRTF, threshold)
	}
	return nil
}

// WAVDuration computes the playback time of a 16-bit PCM WAV file from its
// fmt and data chunks.
func WAVDuration(wav []byte) (time.Duration, error) {
	if len(wav) < 44 || string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a RIFF/WAVE payload (%d bytes)", len(wav))
	}

	format, err := findChunk(wav, "fmt ")
	if err != nil {
		return 0, err
	}
	if len(format) < 16 {
		return 0, fmt.Errorf("fmt chunk truncated at %d bytes", len(format))
	}
	sampleRate := int64(binary.LittleEndian.Uint32(format[4:8]))
	blockAlign := int64(binary.LittleEndian.Uint16(format[12:14]))
	if sampleRate == 0 || blockAlign == 0 {
		return 0, fmt.Errorf("fmt chunk declares sample rate %d and block align %d", sampleRate, blockAlign)
	}

	data, err := findChunk(wav, "data")
	if err != nil {
		return 0, err
	}

	frames := int64(len(data)) / blockAlign
	return time.Duration(frames * int64(time.Second) / sampleRate), nil
}

// findChunk scans the RIFF chunk list for id and returns its payload,
// clipped to the bytes actually present. Odd-sized chunks carry a pad byte.
func findChunk(wav []byte, id string) ([]byte, error) {
	pos := 12
	for pos+8 <= len(wav) {
		name := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8

		if name == id {
			end := min(body+size, len(wav))
			return wav[body:end], nil
		}

		pos = body + size
		if size%2 != 0 {
			pos++
		}
	}
	return nil, fmt.Errorf("no %q chunk in %d-byte WAV", id, len(wav))
}

// FormatTable writes a human-readable run table followed by min/mean/max
// summary rows to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "Run\tCold\tSynth(ms)\tAudio(ms)\tRTF\t")
	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.3f\t\n",
			r.Index+1, cold, millis(r.Duration), millis(r.WAVDuration), r.RTF)
	}

	fmt.Fprintf(tw, "\t\t%.1f\t\t(min)\t\n", millis(stats.Min))
	fmt.Fprintf(tw, "\t\t%.1f\t\t(mean)\t\n", millis(stats.Mean))
	fmt.Fprintf(tw, "\t\t%.1f\t\t(max)\t\n", millis(stats.Max))
	_ = tw.Flush()
}

type runReport struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	DurationMS float64 `json:"duration_ms"`
	AudioMS    float64 `json:"audio_ms"`
	RTF        float64 `json:"rtf"`
}

type statsReport struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes the run list and summary stats as indented JSON to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	report := struct {
		Runs  []runReport `json:"runs"`
		Stats statsReport `json:"stats"`
	}{
		Runs: make([]runReport, len(runs)),
		Stats: statsReport{
			MinMS:  millis(stats.Min),
			MeanMS: millis(stats.Mean),
			MaxMS:  millis(stats.Max),
		},
	}
	for i, r := range runs {
		report.Runs[i] = runReport{
			Index:      r.Index,
			Cold:       r.Cold,
			DurationMS: millis(r.Duration),
			AudioMS:    millis(r.WAVDuration),
			RTF:        r.RTF,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
