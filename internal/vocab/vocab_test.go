package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Run("accepts unique symbol ids", func(t *testing.T) {
		table, err := NewTable(map[string]int64{"a": 1, "b": 2, ".": 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 3 {
			t.Errorf("got %d symbols, want 3", table.Len())
		}

		id, ok := table.Lookup('b')
		if !ok || id != 2 {
			t.Errorf("Lookup('b') = (%d, %v), want (2, true)", id, ok)
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := NewTable(map[string]int64{"a": 1, "b": 1})
		if err == nil {
			t.Fatal("expected error for duplicate id")
		}
	})

	t.Run("rejects negative ids", func(t *testing.T) {
		_, err := NewTable(map[string]int64{"a": -1})
		if err == nil {
			t.Fatal("expected error for negative id")
		}
	})

	t.Run("rejects multi-rune symbols", func(t *testing.T) {
		_, err := NewTable(map[string]int64{"ab": 1})
		if err == nil {
			t.Fatal("expected error for multi-rune symbol")
		}
	})

	t.Run("accepts non-ASCII symbols", func(t *testing.T) {
		table, err := NewTable(map[string]int64{"é": 7})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		id, ok := table.Lookup('é')
		if !ok || id != 7 {
			t.Errorf("Lookup('é') = (%d, %v), want (7, true)", id, ok)
		}
	})
}

func TestLoadTable(t *testing.T) {
	t.Run("loads JSON vocabulary file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.json")
		if err := os.WriteFile(path, []byte(`{"h": 40, "i": 41, ".": 3}`), 0o644); err != nil {
			t.Fatal(err)
		}

		table, err := LoadTable(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 3 {
			t.Errorf("got %d symbols, want 3", table.Len())
		}
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := LoadTable("")
		if err != ErrEmptyPath {
			t.Fatalf("expected ErrEmptyPath, got %v", err)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.json")
		if err := os.WriteFile(path, []byte(`{"h": `), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadTable(path)
		if err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(t.TempDir(), "missing.json"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
