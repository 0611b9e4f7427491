package vocab

import (
	"errors"
	"fmt"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
)

// ErrEmptyModelPath is returned when NewSentencePieceTokenizer is called with
// an empty path.
var ErrEmptyModelPath = errors.New("tokenizer model path must not be empty")

// SentencePieceTokenizer implements Tokenizer using a pure-Go SentencePiece
// model. It is the stand-in for a real linguistic front-end: models trained
// on phoneme vocabularies can plug in here without touching the pipeline.
type SentencePieceTokenizer struct {
	proc gosp.Sentencepiece
}

// NewSentencePieceTokenizer loads a SentencePiece model from the given path.
func NewSentencePieceTokenizer(modelPath string) (*SentencePieceTokenizer, error) {
	if modelPath == "" {
		return nil, ErrEmptyModelPath
	}

	proc, err := gosp.NewSentencepieceFromFile(modelPath, true)
	if err != nil {
		return nil, fmt.Errorf("load sentencepiece model %q: %w", modelPath, err)
	}

	return &SentencePieceTokenizer{proc: proc}, nil
}

// Tokenize encodes text with the SentencePiece model and frames the ids with
// the sentinel token, matching the TableTokenizer contract.
func (t *SentencePieceTokenizer) Tokenize(text string) []int64 {
	if text == "" {
		return []int64{SentinelID, SentinelID}
	}

	ids := t.proc.TokenizeToIDs(text)

	tokens := make([]int64, 0, len(ids)+2)
	tokens = append(tokens, SentinelID)
	for _, id := range ids {
		tokens = append(tokens, int64(id))
	}

	return append(tokens, SentinelID)
}
