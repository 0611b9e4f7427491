// Package vocab provides the static symbol vocabulary and text tokenization
// for the KittenTTS engine. The primary implementation is a per-character
// lookup table matching the table shipped alongside the model assets.
package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// ErrEmptyPath is returned when LoadTable is called with an empty path.
var ErrEmptyPath = errors.New("vocabulary path must not be empty")

// Table is an immutable mapping from a single Unicode code point to a
// non-negative token id. Ids are unique per symbol.
type Table struct {
	ids map[rune]int64
}

// NewTable builds a Table from a symbol -> id mapping. Keys must be single
// code points and ids must be non-negative and unique.
func NewTable(symbols map[string]int64) (*Table, error) {
	ids := make(map[rune]int64, len(symbols))
	seen := make(map[int64]rune, len(symbols))

	for sym, id := range symbols {
		r, size := utf8.DecodeRuneInString(sym)
		if r == utf8.RuneError || size != len(sym) {
			return nil, fmt.Errorf("vocabulary symbol %q is not a single code point", sym)
		}

		if id < 0 {
			return nil, fmt.Errorf("vocabulary symbol %q has negative id %d", sym, id)
		}

		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("vocabulary id %d assigned to both %q and %q", id, string(prev), sym)
		}

		ids[r] = id
		seen[id] = r
	}

	return &Table{ids: ids}, nil
}

// LoadTable reads a JSON object of symbol -> id pairs from path.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var symbols map[string]int64
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("decode vocabulary file %q: %w", path, err)
	}

	return NewTable(symbols)
}

// Lookup returns the token id for r and whether r is mapped.
func (t *Table) Lookup(r rune) (int64, bool) {
	id, ok := t.ids[r]
	return id, ok
}

// Len returns the number of mapped symbols.
func (t *Table) Len() int {
	return len(t.ids)
}
