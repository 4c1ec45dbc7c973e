// Package audio provides lightweight inspection of the WAV containers
// produced by the synthesis core. The audio payload itself is opaque to
// this service; header decoding exists for logging and sanity checks
// only.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Minimum bytes for the RIFF descriptor plus one chunk header.
const minWAVSize = 20

// Chunk identifiers.
const (
	riffMagic = "RIFF"
	waveMagic = "WAVE"
	fmtChunk  = "fmt "
	dataChunk = "data"
)

// Static errors.
var (
	// ErrNotWAV indicates the buffer does not start with a RIFF/WAVE descriptor.
	ErrNotWAV = errors.New("data is not a RIFF/WAVE container")
	// ErrTruncated indicates the container ends inside a declared chunk.
	ErrTruncated = errors.New("wav container is truncated")
	// ErrMissingFormatChunk indicates no fmt chunk was found.
	ErrMissingFormatChunk = errors.New("wav container has no fmt chunk")
	// ErrMissingDataChunk indicates no data chunk was found.
	ErrMissingDataChunk = errors.New("wav container has no data chunk")
)

// Info summarizes a WAV container's format header.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataBytes     int
	Duration      time.Duration
}

// ParseWAVInfo decodes the RIFF, fmt and data chunk headers of a WAV
// byte sequence. It reads headers only; sample data is never touched.
func ParseWAVInfo(data []byte) (Info, error) {
	if len(data) < minWAVSize {
		return Info{}, fmt.Errorf("%w: %d bytes", ErrNotWAV, len(data))
	}

	if string(data[0:4]) != riffMagic || string(data[8:12]) != waveMagic {
		return Info{}, ErrNotWAV
	}

	info := Info{
		SampleRate:    0,
		Channels:      0,
		BitsPerSample: 0,
		DataBytes:     0,
		Duration:      0,
	}

	sawFormat := false
	sawData := false
	offset := 12

	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		switch chunkID {
		case fmtChunk:
			if body+16 > len(data) {
				return Info{}, fmt.Errorf("%w: fmt chunk", ErrTruncated)
			}

			info.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			sawFormat = true
		case dataChunk:
			if body+chunkSize > len(data) {
				return Info{}, fmt.Errorf("%w: data chunk", ErrTruncated)
			}

			info.DataBytes = chunkSize
			sawData = true
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		offset = body + chunkSize + chunkSize%2
	}

	if !sawFormat {
		return Info{}, ErrMissingFormatChunk
	}

	if !sawData {
		return Info{}, ErrMissingDataChunk
	}

	bytesPerSecond := info.SampleRate * info.Channels * info.BitsPerSample / 8
	if bytesPerSecond > 0 {
		info.Duration = time.Duration(info.DataBytes) * time.Second / time.Duration(bytesPerSecond)
	}

	return info, nil
}
