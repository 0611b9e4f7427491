// Package testutil provides shared skip helpers and WAV assertions for
// integration tests.
//
// Each skip helper calls t.Skip with a clear human-readable reason when the
// named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireONNXRuntime(t)
//	    testutil.RequireVoiceFile(t, "expr-0")
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-kitten-tts/internal/voice"
)

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located. It checks (in order): the KITTENTTS_ORT_LIB env var, then the
// ORT_LIBRARY_PATH env var, then common system library paths.
func RequireONNXRuntime(tb testing.TB) {
	tb.Helper()

	for _, env := range []string{"KITTENTTS_ORT_LIB", "ORT_LIBRARY_PATH"} {
		if p := os.Getenv(env); p != "" {
			_, err := os.Stat(p)
			if err == nil {
				return // found
			}

			tb.Skipf("ONNX Runtime library not found at %s=%q", env, p)
		}
	}
	// Fall back to common system locations.
	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
	}
	for _, p := range candidates {
		_, err := os.Stat(p)
		if err == nil {
			return // found
		}
	}

	tb.Skip("ONNX Runtime shared library not found; set KITTENTTS_ORT_LIB or ORT_LIBRARY_PATH")
}

// RequireModelFile skips the test if the ONNX model is not present at path.
// An empty path checks the default models/kitten_tts_nano_v0_1.onnx relative
// to the current working directory.
func RequireModelFile(tb testing.TB, path string) {
	tb.Helper()

	if path == "" {
		path = filepath.Join("models", "kitten_tts_nano_v0_1.onnx")
	}

	_, err := os.Stat(path)
	if err != nil {
		tb.Skipf("model file not available at %q: %v", path, err)
	}
}

// RequireVoiceFile skips the test if the voice identified by id cannot be
// resolved from voices/manifest.json relative to the current working directory.
func RequireVoiceFile(tb testing.TB, id string) {
	tb.Helper()

	manifestPath := filepath.Join("voices", "manifest.json")

	vm, err := voice.NewManager(manifestPath)
	if err != nil {
		tb.Skipf("voice manifest not available at %q: %v", manifestPath, err)
	}

	_, err = vm.ResolvePath(id)
	if err != nil {
		tb.Skipf("voice %q not available: %v", id, err)
	}
}
