// Package audio converts model waveforms into canonical PCM WAV artifacts
// and hands them off to the external player.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Canonical output format for KittenTTS audio.
const (
	ExpectedSampleRate = 24000
	ExpectedChannels   = 1
	ExpectedBitDepth   = 16
)

const headerSize = 44

// EncodeWAV encodes float32 samples as a mono 16-bit PCM WAV byte slice with
// a canonical 44-byte header. It is a pure function: the same samples and
// sample rate always produce byte-identical output. An empty sample slice
// yields a 44-byte header-only file.
//
// Sample conversion is the established contract the reference audio was
// produced with: pcm = clamp(floor(s * 32768), -32768, 32767). Keep it
// bit-exact; do not switch to symmetric rounding.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	const (
		channels      = ExpectedChannels
		bitsPerSample = ExpectedBitDepth
	)

	dataSize := len(samples) * 2
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	out := make([]byte, headerSize+dataSize)
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataSize))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[headerSize+i*2:], uint16(pcm16(s)))
	}

	return out, nil
}

func pcm16(s float32) int16 {
	v := math.Floor(float64(s) * 32768)
	if v > 32767 {
		v = 32767
	}

	if v < -32768 {
		v = -32768
	}

	return int16(v)
}
