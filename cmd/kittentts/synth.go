package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-kitten-tts/internal/audio"
	textpkg "github.com/example/go-kitten-tts/internal/text"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	var text string
	var out string
	var voiceID string
	var speed float64
	var chunk bool
	var maxChunkChars int
	var normalize bool
	var fadeInMS float64
	var fadeOutMS float64
	var publishDir string

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize text to WAV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			inputText, err := readSynthText(text, os.Stdin)
			if err != nil {
				return err
			}

			selectedVoice := cfg.TTS.Voice
			if voiceID != "" {
				selectedVoice = voiceID
			}

			selectedSpeed := cfg.TTS.Speed
			if cmd.Flags().Changed("speed") {
				selectedSpeed = speed
			}

			chunks, err := buildSynthesisChunks(inputText, chunk, maxChunkChars)
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			samples, err := rt.svc.SynthesizeChunks(cmd.Context(), chunks, selectedVoice, selectedSpeed)
			if err != nil {
				return err
			}

			samples = applySynthDSP(samples, synthDSPOptions{
				Normalize: normalize,
				FadeInMS:  fadeInMS,
				FadeOutMS: fadeOutMS,
			})

			result, err := audio.EncodeWAV(samples, audio.ExpectedSampleRate)
			if err != nil {
				return err
			}

			if publishDir != "" {
				path, err := audio.Save(publishDir, result)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, path)
				return err
			}

			return writeSynthOutput(out, result, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path ('-' for stdout)")
	cmd.Flags().StringVar(&voiceID, "voice", "", "Voice ID from voices/manifest.json (overrides config)")
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "Playback speed in [0.5, 2.0] (overrides config)")
	cmd.Flags().BoolVar(&chunk, "chunk", false, "Split text into sentence chunks and synthesize sequentially")
	cmd.Flags().IntVar(&maxChunkChars, "max-chunk-chars", 220, "Maximum characters per chunk when --chunk is enabled")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Peak-normalize output audio")
	cmd.Flags().Float64Var(&fadeInMS, "fade-in-ms", 0, "Apply linear fade-in duration in milliseconds")
	cmd.Flags().Float64Var(&fadeOutMS, "fade-out-ms", 0, "Apply linear fade-out duration in milliseconds")
	cmd.Flags().StringVar(&publishDir, "publish-dir", "", "Publish the WAV under this directory with a unique name instead of --out")

	return cmd
}

type synthDSPOptions struct {
	Normalize bool
	FadeInMS  float64
	FadeOutMS float64
}

func applySynthDSP(samples []float32, opts synthDSPOptions) []float32 {
	processed := samples
	if opts.Normalize {
		processed = audio.PeakNormalize(processed)
	}
	if opts.FadeInMS > 0 {
		processed = audio.FadeIn(processed, audio.ExpectedSampleRate, opts.FadeInMS)
	}
	if opts.FadeOutMS > 0 {
		processed = audio.FadeOut(processed, audio.ExpectedSampleRate, opts.FadeOutMS)
	}
	return processed
}

func buildSynthesisChunks(input string, chunk bool, maxChunkChars int) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input text")
	}
	if !chunk {
		return []string{input}, nil
	}

	chunks := textpkg.ChunkBySentence(input, maxChunkChars)
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no non-empty chunks produced from input")
	}
	return out, nil
}

func writeSynthOutput(outPath string, wavData []byte, stdout io.Writer) error {
	if outPath == "-" {
		if stdout == nil {
			return fmt.Errorf("stdout writer is nil")
		}
		_, err := stdout.Write(wavData)
		return err
	}
	return os.WriteFile(outPath, wavData, 0o644)
}

func readSynthText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}
