package voice

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestNewManager(t *testing.T) {
	t.Run("loads manifest and resolves relative paths", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "expr-0.bin"), make([]byte, StyleDim*4), 0o644); err != nil {
			t.Fatal(err)
		}

		path := writeManifest(t, dir, `{"voices": [{"id": "expr-0", "path": "expr-0.bin", "license": "CC0"}]}`)

		mgr, err := NewManager(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		voices := mgr.ListVoices()
		if len(voices) != 1 || voices[0].ID != "expr-0" {
			t.Fatalf("ListVoices = %+v, want one entry expr-0", voices)
		}

		resolved, err := mgr.ResolvePath("expr-0")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if filepath.Base(resolved) != "expr-0.bin" {
			t.Errorf("resolved %q, want expr-0.bin", resolved)
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(),
			`{"voices": [{"id": "a", "path": "a.bin"}, {"id": "a", "path": "b.bin"}]}`)

		if _, err := NewManager(path); err == nil {
			t.Fatal("expected error for duplicate voice id")
		}
	})

	t.Run("rejects empty id", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), `{"voices": [{"id": "", "path": "a.bin"}]}`)

		if _, err := NewManager(path); err == nil {
			t.Fatal("expected error for empty voice id")
		}
	})

	t.Run("resolve fails for missing file", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), `{"voices": [{"id": "a", "path": "a.bin"}]}`)

		mgr, err := NewManager(path)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := mgr.ResolvePath("a"); err == nil {
			t.Fatal("expected error for missing voice file")
		}
	})

	t.Run("resolve fails for unknown id", func(t *testing.T) {
		path := writeManifest(t, t.TempDir(), `{"voices": []}`)

		mgr, err := NewManager(path)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := mgr.ResolvePath("nope"); err == nil {
			t.Fatal("expected error for unknown voice id")
		}
	})
}
