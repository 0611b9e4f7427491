package audio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validWAV(t *testing.T) []byte {
	t.Helper()

	data, err := EncodeWAV([]float32{0.5, -0.5, 0.25, 0}, ExpectedSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	return data
}

func TestSave(t *testing.T) {
	t.Run("publishes the WAV under a unique name", func(t *testing.T) {
		dir := t.TempDir()
		wav := validWAV(t)

		first, err := Save(dir, wav)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Save(dir, wav)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if first == second {
			t.Fatalf("two saves produced the same path %q", first)
		}

		got, err := os.ReadFile(first)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, wav) {
			t.Error("published bytes differ from input")
		}

		if !strings.HasSuffix(first, ".wav") {
			t.Errorf("published path %q missing .wav suffix", first)
		}
	})

	t.Run("no temp file survives a successful save", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := Save(dir, validWAV(t)); err != nil {
			t.Fatal(err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("refuses to publish invalid WAV bytes", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Save(dir, []byte("definitely not audio"))
		if !errors.Is(err, ErrWrite) {
			t.Fatalf("expected ErrWrite, got %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("rejected save left %d files behind", len(entries))
		}
	})

	t.Run("rejects empty directory", func(t *testing.T) {
		if _, err := Save("", validWAV(t)); !errors.Is(err, ErrWrite) {
			t.Fatal("expected ErrWrite for empty dir")
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		path, err := Save(dir, validWAV(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("published file missing: %v", err)
		}
	})
}
