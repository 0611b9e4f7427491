package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSynthText(t *testing.T) {
	t.Run("uses flag text", func(t *testing.T) {
		got, err := readSynthText("hello", strings.NewReader("ignored"))
		if err != nil {
			t.Fatalf("readSynthText returned error: %v", err)
		}
		if got != "hello" {
			t.Fatalf("expected hello, got %q", got)
		}
	})

	t.Run("falls back to stdin", func(t *testing.T) {
		got, err := readSynthText("", strings.NewReader(" from stdin \n"))
		if err != nil {
			t.Fatalf("readSynthText returned error: %v", err)
		}
		if got != "from stdin" {
			t.Fatalf("expected trimmed stdin text, got %q", got)
		}
	})

	t.Run("fails when both empty", func(t *testing.T) {
		_, err := readSynthText("", strings.NewReader("   \n\t"))
		if err == nil {
			t.Fatal("expected error for empty input")
		}
	})
}

func TestBuildSynthesisChunks(t *testing.T) {
	t.Run("no chunking returns single chunk", func(t *testing.T) {
		got, err := buildSynthesisChunks("Hello there. General Kenobi.", false, 10)
		if err != nil {
			t.Fatalf("buildSynthesisChunks: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 chunk, got %d", len(got))
		}
	})

	t.Run("chunking splits sentences", func(t *testing.T) {
		got, err := buildSynthesisChunks("Hello there. General Kenobi.", true, 15)
		if err != nil {
			t.Fatalf("buildSynthesisChunks: %v", err)
		}
		if len(got) < 2 {
			t.Fatalf("expected multiple chunks, got %v", got)
		}
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := buildSynthesisChunks("   ", false, 100)
		if err == nil {
			t.Fatal("expected error for empty input")
		}
	})
}

func TestWriteSynthOutput(t *testing.T) {
	data := []byte("wav-bytes")

	t.Run("writes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.wav")

		if err := writeSynthOutput(path, data, nil); err != nil {
			t.Fatalf("writeSynthOutput: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Error("file content mismatch")
		}
	})

	t.Run("dash writes stdout", func(t *testing.T) {
		var buf bytes.Buffer

		if err := writeSynthOutput("-", data, &buf); err != nil {
			t.Fatalf("writeSynthOutput: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), data) {
			t.Error("stdout content mismatch")
		}
	})

	t.Run("dash with nil writer fails", func(t *testing.T) {
		if err := writeSynthOutput("-", data, nil); err == nil {
			t.Fatal("expected error for nil stdout writer")
		}
	})
}

func TestApplySynthDSP(t *testing.T) {
	samples := []float32{0.25, -0.25, 0.1, 0.0}

	t.Run("no options is identity", func(t *testing.T) {
		got := applySynthDSP(samples, synthDSPOptions{})
		for i := range samples {
			if got[i] != samples[i] {
				t.Fatalf("sample %d changed: %v -> %v", i, samples[i], got[i])
			}
		}
	})

	t.Run("normalize raises peak", func(t *testing.T) {
		got := applySynthDSP(samples, synthDSPOptions{Normalize: true})

		var peak float32
		for _, s := range got {
			if s > peak {
				peak = s
			}
			if -s > peak {
				peak = -s
			}
		}
		if peak < 0.9 {
			t.Errorf("peak after normalize = %v; want near full scale", peak)
		}
	})

	t.Run("fade in zeroes first sample", func(t *testing.T) {
		long := make([]float32, 4800)
		for i := range long {
			long[i] = 0.5
		}

		got := applySynthDSP(long, synthDSPOptions{FadeInMS: 50})
		if got[0] != 0 {
			t.Errorf("first sample after fade-in = %v; want 0", got[0])
		}
	})
}
