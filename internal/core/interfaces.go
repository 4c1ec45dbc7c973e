// Package core defines the core interfaces and domain types for the
// voicevox synthesis service.
package core

import "context"

// CoreLibrary is a typed mirror of the native VOICEVOX core's exported
// function table. Every method is a direct pass-through: the identically
// named native export is invoked with these exact argument types and its
// result is returned unchanged. No method performs validation; violating
// a native contract (for example an undersized output buffer) is
// native-library-defined behavior and may fault the process.
//
// Boolean-returning inference calls report failure details only through
// LastErrorMessage. Integer result codes (InitializeOpenJTalk, TTS) are
// translated with ErrorResultToMessage; zero means success.
type CoreLibrary interface {
	// Initialize prepares the core for inference. It must precede all
	// inference calls. rootDir points at the directory holding the
	// core's model files; cpuNumThreads of 0 lets the core pick.
	Initialize(rootDir string, useGPU bool, cpuNumThreads int32) bool

	// Finalize resets native state. Idempotent and repeatable; it does
	// not unload the library.
	Finalize()

	// Metas returns speaker metadata as a JSON string.
	Metas() string

	// SupportedDevices returns device availability as a JSON string.
	SupportedDevices() string

	// YukarinSForward predicts per-phoneme durations. The caller
	// pre-allocates output with length elements.
	YukarinSForward(length int64, phonemeList *int64, speakerID *int64, output *float32) bool

	// YukarinSaForward predicts per-mora pitch from phoneme and accent
	// buffers. The caller pre-allocates output with length elements.
	YukarinSaForward(
		length int64,
		vowelPhonemeList *int64,
		consonantPhonemeList *int64,
		startAccentList *int64,
		endAccentList *int64,
		startAccentPhraseList *int64,
		endAccentPhraseList *int64,
		speakerID *int64,
		output *float32,
	) bool

	// DecodeForward decodes per-frame f0 and phoneme buffers into a
	// waveform. The caller pre-allocates output sized length times the
	// core's samples-per-frame.
	DecodeForward(length int64, phonemeSize int64, f0 *float32, phoneme *float32, speakerID *int64, output *float32) bool

	// LastErrorMessage describes the most recent failure of any
	// boolean-returning call.
	LastErrorMessage() string

	// InitializeOpenJTalk initializes the dictionary-driven text
	// analysis subsystem. Returns a result code; zero is success.
	InitializeOpenJTalk(dictDir string) int32

	// TTS synthesizes text into a WAV buffer allocated by the native
	// library. On return *outWav (when non-nil) must be released with
	// WavFree exactly once, whatever the result code.
	TTS(text string, speakerID int64, outSize *int32, outWav **byte) int32

	// WavFree releases a buffer produced by TTS.
	WavFree(wav *byte)

	// ErrorResultToMessage translates a non-zero result code into a
	// human-readable message.
	ErrorResultToMessage(code int32) string
}

// SpeakerStyle is one selectable voice style of a speaker. The style ID
// is the numeric identifier the core's synthesis calls accept.
type SpeakerStyle struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Speaker is one speaker descriptor from the core's metas JSON. The
// schema is owned by the native library; unknown fields are ignored.
type Speaker struct {
	Name        string         `json:"name"`
	SpeakerUUID string         `json:"speaker_uuid"`
	Styles      []SpeakerStyle `json:"styles"`
	Version     string         `json:"version"`
}

// DeviceSupport maps a device name (for example "cpu", "cuda") to its
// availability on this host.
type DeviceSupport map[string]bool

// SpeechSynthesizer is the high-level synthesis facade. Implementations
// own the native library lifecycle and translate native error channels
// into Go errors carrying decoded messages.
type SpeechSynthesizer interface {
	// TTS converts UTF-8 text into a self-contained WAV byte sequence
	// for the given style ID. The style ID is not validated here; an
	// unknown ID surfaces as a decoded native error.
	TTS(ctx context.Context, text string, styleID int64) ([]byte, error)

	// Metas fetches and decodes the current speaker metadata. No
	// caching: every call reflects current native-side state.
	Metas() ([]Speaker, error)

	// SupportedDevices fetches and decodes device availability.
	SupportedDevices() (DeviceSupport, error)

	// Finalize resets native core state. Safe to call repeatedly.
	Finalize()
}

// ObjectStore is the interface for the key-value blob store holding job
// inputs and synthesized audio.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
