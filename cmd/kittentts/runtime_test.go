package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-kitten-tts/internal/config"
	"github.com/example/go-kitten-tts/internal/voice"
)

func writeStyleBlob(t *testing.T, path string, frames int) {
	t.Helper()

	buf := make([]byte, frames*voice.StyleDim*4)
	for i := 0; i < len(buf); i += 4 {
		binary.LittleEndian.PutUint32(buf[i:], 0)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBuildTokenizer_Table(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.json")
	if err := os.WriteFile(vocabPath, []byte(`{"h": 40, "i": 41}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Paths.VocabPath = vocabPath

	tok, err := buildTokenizer(cfg)
	if err != nil {
		t.Fatalf("buildTokenizer: %v", err)
	}

	tokens := tok.Tokenize("hi")
	want := []int64{0, 40, 41, 0}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v; want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens = %v; want %v", tokens, want)
		}
	}
}

func TestBuildTokenizer_MissingVocabFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.VocabPath = "/nonexistent/vocab.json"

	if _, err := buildTokenizer(cfg); err == nil {
		t.Fatal("expected error for missing vocabulary file")
	}
}

func TestBuildTokenizer_InvalidBackendFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TTS.Tokenizer = "bpe"

	if _, err := buildTokenizer(cfg); err == nil {
		t.Fatal("expected error for invalid tokenizer backend")
	}
}

func TestLoadVoices(t *testing.T) {
	dir := t.TempDir()
	writeStyleBlob(t, filepath.Join(dir, "expr-0.bin"), 4)

	manifest := filepath.Join(dir, "manifest.json")
	content := `{"voices": [
		{"id": "expr-0", "path": "expr-0.bin", "license": "apache-2.0"},
		{"id": "expr-9", "path": "missing.bin", "license": "apache-2.0"}
	]}`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	mgr, styles, err := loadVoices(manifest)
	if err != nil {
		t.Fatalf("loadVoices: %v", err)
	}

	if len(mgr.ListVoices()) != 2 {
		t.Errorf("manifest lists %d voices; want 2", len(mgr.ListVoices()))
	}

	if !styles.Has("expr-0") {
		t.Error("store missing downloaded voice expr-0")
	}

	// The voice without a blob file is listed but not loaded.
	if styles.Has("expr-9") {
		t.Error("store loaded voice expr-9 which has no blob file")
	}
}

func TestLoadVoices_NoBlobsFails(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.json")
	content := `{"voices": [{"id": "expr-0", "path": "missing.bin"}]}`
	if err := os.WriteFile(manifest, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, _, err := loadVoices(manifest); err == nil {
		t.Fatal("expected error when no voice blobs are available")
	}
}

func TestLoadVoices_MissingManifestFails(t *testing.T) {
	if _, _, err := loadVoices("/nonexistent/manifest.json"); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestAppRuntimeClose_NilSafe(_ *testing.T) {
	var rt *appRuntime
	rt.Close()

	(&appRuntime{}).Close()
}
