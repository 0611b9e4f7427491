package vocab

import "unicode"

// SentinelID is the reserved token id framing every token sequence.
const SentinelID = 0

// MaxPayloadTokens is the maximum number of interior tokens the model accepts
// between the two sentinels (total sequence length <= 511).
const MaxPayloadTokens = 509

// Tokenizer turns normalized input text into a sentinel-framed token sequence.
// Implementations always emit SentinelID as the first and last element, even
// for empty input.
type Tokenizer interface {
	Tokenize(text string) []int64
}

// TableTokenizer tokenizes text one code point at a time against a Table.
// Lookup is case-insensitive: each rune is lower-cased before the lookup.
// Unmapped runes are skipped without error.
type TableTokenizer struct {
	table *Table
}

// NewTableTokenizer returns a TableTokenizer over the given table.
func NewTableTokenizer(table *Table) *TableTokenizer {
	return &TableTokenizer{table: table}
}

// Tokenize returns the sentinel-framed token ids for text. Empty or fully
// unmapped input yields exactly [SentinelID, SentinelID].
func (t *TableTokenizer) Tokenize(text string) []int64 {
	tokens := make([]int64, 0, len(text)+2)
	tokens = append(tokens, SentinelID)

	for _, r := range text {
		id, ok := t.table.Lookup(unicode.ToLower(r))
		if !ok {
			continue
		}

		tokens = append(tokens, id)
	}

	return append(tokens, SentinelID)
}

// ClampTokenCount returns the interior token count of a sentinel-framed
// sequence, clamped to [0, MaxPayloadTokens]. This count is the contract
// between tokenizer output and the style-table lookup: callers must use it,
// not the raw sequence length, when indexing a voice style blob.
func ClampTokenCount(tokens []int64) int {
	n := len(tokens) - 2
	if n < 0 {
		n = 0
	}

	if n > MaxPayloadTokens {
		n = MaxPayloadTokens
	}

	return n
}

// TruncateTokens caps a sentinel-framed sequence at MaxPayloadTokens interior
// tokens, preserving the trailing sentinel.
func TruncateTokens(tokens []int64) []int64 {
	if len(tokens) <= MaxPayloadTokens+2 {
		return tokens
	}

	out := make([]int64, 0, MaxPayloadTokens+2)
	out = append(out, tokens[:MaxPayloadTokens+1]...)

	return append(out, SentinelID)
}
