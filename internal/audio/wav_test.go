// Package audio_test tests WAV container header inspection.
package audio_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicekit/vvcore/internal/audio"
)

// buildWAV assembles a minimal mono PCM container around the given
// payload.
func buildWAV(t *testing.T, sampleRate, channels, bits int, payload []byte) []byte {
	t.Helper()

	fmtBody := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtBody[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtBody[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(fmtBody[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(fmtBody[8:12], uint32(sampleRate*channels*bits/8))
	binary.LittleEndian.PutUint16(fmtBody[12:14], uint16(channels*bits/8))
	binary.LittleEndian.PutUint16(fmtBody[14:16], uint16(bits))

	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(4+8+len(fmtBody)+8+len(payload)))
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(fmtBody)))
	out = append(out, fmtBody...)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)

	return out
}

func TestParseWAVInfo(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 24000*2) // one second of 16-bit mono at 24 kHz
	data := buildWAV(t, 24000, 1, 16, payload)

	info, err := audio.ParseWAVInfo(data)
	require.NoError(t, err)

	assert.Equal(t, 24000, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitsPerSample)
	assert.Equal(t, len(payload), info.DataBytes)
	assert.Equal(t, time.Second, info.Duration)
}

func TestParseWAVInfoRejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := audio.ParseWAVInfo([]byte("definitely not a wav container"))
	require.ErrorIs(t, err, audio.ErrNotWAV)

	_, err = audio.ParseWAVInfo(nil)
	require.ErrorIs(t, err, audio.ErrNotWAV)
}

func TestParseWAVInfoTruncatedData(t *testing.T) {
	t.Parallel()

	data := buildWAV(t, 24000, 1, 16, make([]byte, 64))
	truncated := data[:len(data)-32]

	_, err := audio.ParseWAVInfo(truncated)
	require.ErrorIs(t, err, audio.ErrTruncated)
}

func TestParseWAVInfoMissingChunks(t *testing.T) {
	t.Parallel()

	// A bare RIFF/WAVE descriptor with an unrelated chunk only.
	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, 4+8+4)
	out = append(out, "WAVE"...)
	out = append(out, "LIST"...)
	out = binary.LittleEndian.AppendUint32(out, 4)
	out = append(out, "INFO"...)

	_, err := audio.ParseWAVInfo(out)
	require.ErrorIs(t, err, audio.ErrMissingFormatChunk)
}
