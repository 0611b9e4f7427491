// Package text prepares raw input for the tokenizer: whitespace
// normalization, plus sentence chunking for inputs longer than the model's
// token limit.
package text

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Normalize prepares raw input text for tokenization: line endings and
// interior newlines become single spaces, whitespace runs collapse to one
// space, and surrounding whitespace is trimmed. Empty or whitespace-only
// input is rejected. Case folding is not done here; the tokenizer
// lower-cases per symbol.
func Normalize(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ErrEmptyText
	}

	return strings.Join(fields, " "), nil
}
