package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrWrite is returned when a WAV artifact could not be persisted. No partial
// file is left visible at the published path.
var ErrWrite = errors.New("write audio file")

// Save writes wavBytes to a uniquely named file under dir and returns the
// published path, the handle handed to the external playback service.
//
// The name carries a random suffix so concurrent generation requests never
// overwrite each other, and the bytes land in a .tmp sibling that is renamed
// into place only after a successful write and decode check. The playback
// side therefore never observes a partially written file.
func Save(dir string, wavBytes []byte) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: output directory is required", ErrWrite)
	}

	if _, err := DecodeWAVBuffer(wavBytes); err != nil {
		return "", fmt.Errorf("%w: refusing to publish invalid WAV: %v", ErrWrite, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	path := filepath.Join(dir, "tts-"+uuid.NewString()+".wav")
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, wavBytes, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return path, nil
}
