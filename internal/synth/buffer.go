package synth

import (
	"unsafe"

	"github.com/voicekit/vvcore/internal/core"
)

// takeWav copies exactly size bytes out of the native buffer into a
// host-owned slice and then releases the native buffer. Copy before
// free: the native memory is invalid the moment WavFree returns. A nil
// buffer yields nil with nothing to release.
func takeWav(lib core.CoreLibrary, wav *byte, size int32) []byte {
	if wav == nil {
		return nil
	}

	defer lib.WavFree(wav)

	if size <= 0 {
		return []byte{}
	}

	data := make([]byte, int(size))
	copy(data, unsafe.Slice(wav, int(size)))

	return data
}

// releaseWav frees a native buffer produced by a failed TTS call, if
// the call produced one at all.
func releaseWav(lib core.CoreLibrary, wav *byte) {
	if wav != nil {
		lib.WavFree(wav)
	}
}
