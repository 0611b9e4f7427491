package testutil

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/example/go-kitten-tts/internal/audio"
)

// AssertValidWAV fails the test unless data is a PCM WAV file in the
// canonical KittenTTS output format (24000 Hz, mono, 16-bit) with at least
// one sample in its data chunk.
func AssertValidWAV(tb testing.TB, data []byte) {
	tb.Helper()

	if len(data) < 44 {
		tb.Fatalf("WAV data too short: %d bytes", len(data))
	}

	for _, m := range []struct {
		off  int
		want string
	}{
		{0, "RIFF"},
		{8, "WAVE"},
		{12, "fmt "},
	} {
		if got := string(data[m.off : m.off+4]); got != m.want {
			tb.Fatalf("WAV: marker at offset %d = %q, want %q", m.off, got, m.want)
		}
	}

	for _, f := range []struct {
		name string
		got  uint32
		want uint32
	}{
		{"audio format", uint32(binary.LittleEndian.Uint16(data[20:22])), 1},
		{"channels", uint32(binary.LittleEndian.Uint16(data[22:24])), 1},
		{"sample rate", binary.LittleEndian.Uint32(data[24:28]), audio.ExpectedSampleRate},
		{"bit depth", uint32(binary.LittleEndian.Uint16(data[34:36])), 16},
	} {
		if f.got != f.want {
			tb.Fatalf("WAV: %s = %d, want %d", f.name, f.got, f.want)
		}
	}

	dataSize, err := dataChunkSize(data)
	if err != nil {
		tb.Fatalf("WAV: %v", err)
	}
	if dataSize < 2 {
		tb.Fatal("WAV: data chunk contains zero samples")
	}
}

// AssertWAVDurationApprox fails the test unless the audio duration, computed
// from the data chunk at the canonical 24000 Hz mono 16-bit format, falls
// within [minSec, maxSec].
func AssertWAVDurationApprox(tb testing.TB, data []byte, minSec, maxSec float64) {
	tb.Helper()

	dataSize, err := dataChunkSize(data)
	if err != nil {
		tb.Fatalf("WAV duration check: %v", err)
	}

	sec := float64(dataSize/2) / float64(audio.ExpectedSampleRate)
	if sec < minSec || sec > maxSec {
		tb.Fatalf("WAV duration %.3fs out of expected range [%.3fs, %.3fs]", sec, minSec, maxSec)
	}
}

// dataChunkSize walks the RIFF chunk list, honoring the odd-size pad byte,
// and returns the size of the "data" sub-chunk.
func dataChunkSize(data []byte) (uint32, error) {
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		if id == "data" {
			return size, nil
		}
		pos += 8 + int(size)
		if size%2 != 0 {
			pos++
		}
	}
	return 0, fmt.Errorf("no data chunk in %d-byte WAV", len(data))
}
