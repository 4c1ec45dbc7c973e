//go:build darwin || freebsd || linux

// Package vvlib is the low-level runtime binding to the VOICEVOX core
// shared library. It loads the library from a filesystem path, resolves
// the fixed set of exported symbols and exposes one typed pass-through
// method per export. All behavior beyond the call itself (error
// translation, buffer ownership, lifecycle ordering) belongs to the
// facade in internal/synth.
package vvlib

import (
	"fmt"

	"github.com/ebitengine/purego"

	"github.com/voicekit/vvcore/internal/core"
)

// Native export names, in the order they are bound.
const (
	symInitialize           = "initialize"
	symFinalize             = "finalize"
	symMetas                = "metas"
	symSupportedDevices     = "supported_devices"
	symYukarinSForward      = "yukarin_s_forward"
	symYukarinSaForward     = "yukarin_sa_forward"
	symDecodeForward        = "decode_forward"
	symLastErrorMessage     = "last_error_message"
	symInitializeOpenJTalk  = "voicevox_initialize_openjtalk"
	symTTS                  = "voicevox_tts"
	symWavFree              = "voicevox_wav_free"
	symErrorResultToMessage = "voicevox_error_result_to_message"
)

// Library holds the loaded native library and its registered function
// table. It implements core.CoreLibrary. A Library stays loaded for the
// life of the process; the native finalize call resets core state but
// does not unload the shared object.
type Library struct {
	handle uintptr

	initialize           func(rootDir string, useGPU bool, cpuNumThreads int32) bool
	finalize             func()
	metas                func() string
	supportedDevices     func() string
	yukarinSForward      func(length int64, phonemeList *int64, speakerID *int64, output *float32) bool
	yukarinSaForward     func(
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
	decodeForward        func(length int64, phonemeSize int64, f0 *float32, phoneme *float32, speakerID *int64, output *float32) bool
	lastErrorMessage     func() string
	initializeOpenJTalk  func(dictDir string) int32
	tts                  func(text string, speakerID int64, outSize *int32, outWav **byte) int32
	wavFree              func(wav *byte)
	errorResultToMessage func(code int32) string
}

// Compile-time check that Library mirrors the full function table.
var _ core.CoreLibrary = (*Library)(nil)

// Preload loads a dependency shared library (for example an ONNX
// runtime the core links against) into the global namespace so that the
// core library resolves against it. It must be called before Open.
func Preload(path string) error {
	_, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("failed to preload library '%s': %w", path, err)
	}

	return nil
}

// Open loads the core shared library and registers every exported
// function with its exact native signature. A missing symbol fails Open
// with the symbol name in the error; no native function is invoked.
func Open(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load core library '%s': %w", path, err)
	}

	lib := &Library{handle: handle}

	bindings := []struct {
		name string
		fptr any
	}{
		{symInitialize, &lib.initialize},
		{symFinalize, &lib.finalize},
		{symMetas, &lib.metas},
		{symSupportedDevices, &lib.supportedDevices},
		{symYukarinSForward, &lib.yukarinSForward},
		{symYukarinSaForward, &lib.yukarinSaForward},
		{symDecodeForward, &lib.decodeForward},
		{symLastErrorMessage, &lib.lastErrorMessage},
		{symInitializeOpenJTalk, &lib.initializeOpenJTalk},
		{symTTS, &lib.tts},
		{symWavFree, &lib.wavFree},
		{symErrorResultToMessage, &lib.errorResultToMessage},
	}

	for _, binding := range bindings {
		bindErr := registerSymbol(handle, binding.name, binding.fptr)
		if bindErr != nil {
			return nil, bindErr
		}
	}

	return lib, nil
}

// registerSymbol resolves one export and registers the Go function
// pointer over it.
func registerSymbol(handle uintptr, name string, fptr any) error {
	addr, err := purego.Dlsym(handle, name)
	if err != nil {
		return fmt.Errorf("failed to resolve symbol '%s': %w", name, err)
	}

	purego.RegisterFunc(fptr, addr)

	return nil
}

// Initialize calls the native initialize export.
func (l *Library) Initialize(rootDir string, useGPU bool, cpuNumThreads int32) bool {
	return l.initialize(rootDir, useGPU, cpuNumThreads)
}

// Finalize calls the native finalize export.
func (l *Library) Finalize() {
	l.finalize()
}

// Metas calls the native metas export.
func (l *Library) Metas() string {
	return l.metas()
}

// SupportedDevices calls the native supported_devices export.
func (l *Library) SupportedDevices() string {
	return l.supportedDevices()
}

// YukarinSForward calls the native yukarin_s_forward export.
func (l *Library) YukarinSForward(length int64, phonemeList *int64, speakerID *int64, output *float32) bool {
	return l.yukarinSForward(length, phonemeList, speakerID, output)
}

// YukarinSaForward calls the native yukarin_sa_forward export.
func (l *Library) YukarinSaForward(
	length int64,
	vowelPhonemeList *int64,
	consonantPhonemeList *int64,
	startAccentList *int64,
	endAccentList *int64,
	startAccentPhraseList *int64,
	endAccentPhraseList *int64,
	speakerID *int64,
	output *float32,
) bool {
	return l.yukarinSaForward(
		length,
		vowelPhonemeList,
		consonantPhonemeList,
		startAccentList,
		endAccentList,
		startAccentPhraseList,
		endAccentPhraseList,
		speakerID,
		output,
	)
}

// DecodeForward calls the native decode_forward export.
func (l *Library) DecodeForward(
	length int64,
	phonemeSize int64,
	f0 *float32,
	phoneme *float32,
	speakerID *int64,
	output *float32,
) bool {
	return l.decodeForward(length, phonemeSize, f0, phoneme, speakerID, output)
}

// LastErrorMessage calls the native last_error_message export.
func (l *Library) LastErrorMessage() string {
	return l.lastErrorMessage()
}

// InitializeOpenJTalk calls the native voicevox_initialize_openjtalk export.
func (l *Library) InitializeOpenJTalk(dictDir string) int32 {
	return l.initializeOpenJTalk(dictDir)
}

// TTS calls the native voicevox_tts export.
func (l *Library) TTS(text string, speakerID int64, outSize *int32, outWav **byte) int32 {
	return l.tts(text, speakerID, outSize, outWav)
}

// WavFree calls the native voicevox_wav_free export.
func (l *Library) WavFree(wav *byte) {
	l.wavFree(wav)
}

// ErrorResultToMessage calls the native voicevox_error_result_to_message export.
func (l *Library) ErrorResultToMessage(code int32) string {
	return l.errorResultToMessage(code)
}
