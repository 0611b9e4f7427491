package main

import (
	"context"
	"fmt"
	"os"

	"github.com/example/go-kitten-tts/internal/bench"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var runs int
	var text string
	var voiceID string
	var speed float64
	var jsonOut bool
	var rtfThreshold float64

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark synthesis latency and real-time factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			selectedVoice := cfg.TTS.Voice
			if voiceID != "" {
				selectedVoice = voiceID
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			results, stats, err := bench.Measure(cmd.Context(), runs, func(ctx context.Context) ([]byte, error) {
				return rt.svc.SynthesizeWAV(ctx, text, selectedVoice, speed)
			})
			if err != nil {
				return err
			}

			if jsonOut {
				bench.FormatJSON(results, stats, os.Stdout)
			} else {
				bench.FormatTable(results, stats, os.Stdout)
			}

			if err := bench.CheckRTFThreshold(bench.MeanRTF(results), rtfThreshold); err != nil {
				return fmt.Errorf("bench gate: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 5, "Number of synthesis runs (first run counts as cold-start)")
	cmd.Flags().StringVar(&text, "text", "The quick brown fox jumps over the lazy dog.", "Benchmark input text")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Voice ID (overrides config)")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Playback speed in [0.5, 2.0]")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit a JSON report instead of a table")
	cmd.Flags().Float64Var(&rtfThreshold, "rtf-threshold", 0, "Fail when mean RTF exceeds this value (0 disables)")

	return cmd
}
