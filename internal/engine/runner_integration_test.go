//go:build integration

package engine

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-kitten-tts/internal/testutil"
)

// TestRunnerIntegration_SynthesisPass loads the real model through the ORT
// shared library and runs one end-to-end inference with a minimal token
// sequence and a zero style vector. Set KITTENTTS_TEST_MODEL to point at the
// ONNX model; the test skips when the library or the model is absent.
func TestRunnerIntegration_SynthesisPass(t *testing.T) {
	testutil.RequireONNXRuntime(t)

	modelPath := os.Getenv("KITTENTTS_TEST_MODEL")
	testutil.RequireModelFile(t, modelPath)
	if modelPath == "" {
		modelPath = filepath.Join("models", "kitten_tts_nano_v0_1.onnx")
	}

	info, err := DetectRuntime("", "")
	if err != nil {
		t.Fatalf("DetectRuntime: %v", err)
	}

	runner, err := NewRunner(modelPath, RunnerConfig{LibraryPath: info.LibraryPath})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	inputs, err := BuildInputs([]int64{0, 40, 41, 3, 0}, make([]float32, StyleDim), 1.0)
	if err != nil {
		t.Fatalf("BuildInputs: %v", err)
	}

	outputs, err := runner.Run(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	samples, err := ExtractWaveform(outputs)
	if err != nil {
		t.Fatalf("ExtractWaveform: %v", err)
	}
	if len(samples) == 0 {
		t.Fatal("expected a non-empty waveform")
	}
	for i, s := range samples {
		if math.IsNaN(float64(s)) {
			t.Fatalf("sample %d is NaN", i)
		}
	}
}
