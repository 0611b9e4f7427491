// Package voice manages per-voice style tables: flat float32 blobs organized
// as consecutive StyleDim-wide frames indexed by token count.
package voice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
)

// StyleDim is the width of one style frame in floats.
const StyleDim = 256

var (
	// ErrUnknownVoice is returned when a voice id has no resident blob.
	ErrUnknownVoice = errors.New("voice style blob not loaded")

	// ErrStyleOutOfRange is returned when a style slice would read past the
	// end of a voice's blob. Slices are rejected rather than clamped or
	// padded: a short blob means the voice was generated for a narrower
	// token limit, and fabricating style data would change the audio
	// silently.
	ErrStyleOutOfRange = errors.New("style slice out of range")
)

// Store caches voice style blobs by voice id. A new Put for the same id
// replaces the entry wholesale; entries are never implicitly evicted.
// Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]float32
}

// NewStore returns an empty style store.
func NewStore() *Store {
	return &Store{blobs: make(map[string][]float32)}
}

// Put installs blob as the style table for voiceID, replacing any previous
// entry. The blob length must be a non-zero multiple of StyleDim.
func (s *Store) Put(voiceID string, blob []float32) error {
	if voiceID == "" {
		return errors.New("voice id must not be empty")
	}

	if len(blob) == 0 || len(blob)%StyleDim != 0 {
		return fmt.Errorf("style blob for %q has %d floats, want a non-zero multiple of %d", voiceID, len(blob), StyleDim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[voiceID] = append([]float32(nil), blob...)

	return nil
}

// LoadFile reads a raw little-endian float32 blob from path and installs it
// for voiceID.
func (s *Store) LoadFile(voiceID, path string) error {
	blob, err := ReadBlob(path)
	if err != nil {
		return err
	}

	return s.Put(voiceID, blob)
}

// Has reports whether a blob is resident for voiceID.
func (s *Store) Has(voiceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[voiceID]

	return ok
}

// Frames returns the number of style frames resident for voiceID, or 0 when
// the voice is not loaded.
func (s *Store) Frames(voiceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blobs[voiceID]) / StyleDim
}

// StyleSlice returns the StyleDim floats at offset tokenCount*StyleDim in the
// voice's blob. It fails with ErrUnknownVoice when the voice is not resident
// and with ErrStyleOutOfRange when the frame would read past the blob end.
func (s *Store) StyleSlice(voiceID string, tokenCount int) ([]float32, error) {
	if tokenCount < 0 {
		return nil, fmt.Errorf("%w: negative token count %d", ErrStyleOutOfRange, tokenCount)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[voiceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVoice, voiceID)
	}

	offset := tokenCount * StyleDim
	if offset+StyleDim > len(blob) {
		return nil, fmt.Errorf("%w: voice %q frame %d needs floats [%d, %d), blob holds %d",
			ErrStyleOutOfRange, voiceID, tokenCount, offset, offset+StyleDim, len(blob))
	}

	return append([]float32(nil), blob[offset:offset+StyleDim]...), nil
}

// ReadBlob reads a raw little-endian float32 file.
func ReadBlob(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style blob: %w", err)
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("style blob %q is %d bytes, not a multiple of 4", path, len(data))
	}

	blob := make([]float32, len(data)/4)
	for i := range blob {
		blob[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}

	return blob, nil
}
