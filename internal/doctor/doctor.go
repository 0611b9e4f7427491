// Package doctor provides environment preflight checks for kittentts.
package doctor

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-kitten-tts/internal/engine"
	"github.com/example/go-kitten-tts/internal/vocab"
	"github.com/example/go-kitten-tts/internal/voice"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// RuntimeDetectFunc locates the ONNX Runtime shared library.
// engine.DetectRuntime is the production implementation.
type RuntimeDetectFunc func(configuredPath, configuredVersion string) (engine.RuntimeInfo, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// DetectRuntime resolves the ONNX Runtime library; nil uses engine.DetectRuntime.
	DetectRuntime RuntimeDetectFunc
	// ORTLibraryPath is the configured runtime library path, if any.
	ORTLibraryPath string
	// ORTVersion is the configured runtime version, if any.
	ORTVersion string
	// ModelPath is the ONNX model file to verify on disk.
	ModelPath string
	// VocabPath is the vocabulary JSON to verify and parse.
	VocabPath string
	// VoicesManifest is the voice manifest to load; empty skips the check.
	VoicesManifest string
	// VoiceFiles is an extra list of voice file paths to verify on disk.
	VoiceFiles []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library ---------------------------------------------
	detect := cfg.DetectRuntime
	if detect == nil {
		detect = engine.DetectRuntime
	}

	info, err := detect(cfg.ORTLibraryPath, cfg.ORTVersion)
	if err != nil {
		res.fail(fmt.Sprintf("onnx runtime: %v", err))
		fmt.Fprintf(w, "%s onnx runtime: not found (%v)\n", FailMark, err)
	} else {
		fmt.Fprintf(w, "%s onnx runtime: %s (version %s)\n", PassMark, info.LibraryPath, info.Version)
	}

	// ---- model file -------------------------------------------------------
	if cfg.ModelPath != "" {
		if err := checkNonEmptyFile(cfg.ModelPath); err != nil {
			res.fail(fmt.Sprintf("model file %q: %v", cfg.ModelPath, err))
			fmt.Fprintf(w, "%s model file %s: %v\n", FailMark, cfg.ModelPath, err)
		} else {
			fmt.Fprintf(w, "%s model file: %s\n", PassMark, cfg.ModelPath)
		}
	}

	// ---- vocabulary -------------------------------------------------------
	if cfg.VocabPath != "" {
		table, err := vocab.LoadTable(cfg.VocabPath)
		if err != nil {
			res.fail(fmt.Sprintf("vocabulary %q: %v", cfg.VocabPath, err))
			fmt.Fprintf(w, "%s vocabulary %s: %v\n", FailMark, cfg.VocabPath, err)
		} else {
			fmt.Fprintf(w, "%s vocabulary: %s (%d symbols)\n", PassMark, cfg.VocabPath, table.Len())
		}
	}

	// ---- voice manifest ---------------------------------------------------
	if cfg.VoicesManifest != "" {
		mgr, err := voice.NewManager(cfg.VoicesManifest)
		if err != nil {
			res.fail(fmt.Sprintf("voice manifest %q: %v", cfg.VoicesManifest, err))
			fmt.Fprintf(w, "%s voice manifest %s: %v\n", FailMark, cfg.VoicesManifest, err)
		} else {
			fmt.Fprintf(w, "%s voice manifest: %s (%d voices)\n", PassMark, cfg.VoicesManifest, len(mgr.ListVoices()))

			for _, v := range mgr.ListVoices() {
				if _, err := mgr.ResolvePath(v.ID); err != nil {
					res.fail(fmt.Sprintf("voice %q: %v", v.ID, err))
					fmt.Fprintf(w, "%s voice %s: not found\n", FailMark, v.ID)
				} else {
					fmt.Fprintf(w, "%s voice: %s\n", PassMark, v.ID)
				}
			}
		}
	}

	// ---- extra voice files ------------------------------------------------
	for _, path := range cfg.VoiceFiles {
		if _, err := os.Stat(path); err != nil {
			res.fail(fmt.Sprintf("voice file %q: %v", path, err))
			fmt.Fprintf(w, "%s voice file %s: not found\n", FailMark, path)
		} else {
			fmt.Fprintf(w, "%s voice file: %s\n", PassMark, path)
		}
	}

	return res
}

func checkNonEmptyFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%q is a directory", path)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("%q is empty", path)
	}
	return nil
}
