package text

import (
	"strings"
	"unicode/utf8"
)

// ChunkBySentence splits text into chunks at sentence boundaries (., !, ?),
// packing consecutive sentences into one chunk while staying within maxChars
// code points per chunk. A maxChars of 0 disables splitting. A sentence that
// alone exceeds maxChars is emitted as its own oversized chunk rather than
// broken mid-sentence.
func ChunkBySentence(text string, maxChars int) []string {
	if maxChars <= 0 {
		return []string{text}
	}

	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		return []string{text}
	}

	chunks := make([]string, 0, len(sentences))
	var current strings.Builder
	currentLen := 0

	for _, s := range sentences {
		n := utf8.RuneCountInString(s)

		switch {
		case currentLen == 0:
			current.WriteString(s)
			currentLen = n
		case currentLen+1+n > maxChars:
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(s)
			currentLen = n
		default:
			current.WriteByte(' ')
			current.WriteString(s)
			currentLen += 1 + n
		}
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences scans for runs of sentence-ending punctuation and cuts after
// each run, so "..." and "?!" stay attached to their sentence. Whitespace-only
// segments are dropped.
func splitSentences(text string) []string {
	var sentences []string

	flush := func(seg string) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			sentences = append(sentences, seg)
		}
	}

	start := 0
	inRun := false
	for i, r := range text {
		if isTerminator(r) {
			inRun = true
			continue
		}

		if inRun {
			flush(text[start:i])
			start = i
			inRun = false
		}
	}

	flush(text[start:])

	return sentences
}
