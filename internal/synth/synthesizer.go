// Package synth provides the high-level facade over the native VOICEVOX
// core library: lifecycle (load, initialize, optional OpenJTalk
// initialization, finalize), buffer marshaling for synthesis output and
// translation of native error channels into Go errors carrying decoded
// messages.
package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/book-expert/logger"

	"github.com/voicekit/vvcore/internal/core"
	"github.com/voicekit/vvcore/internal/text"
	"github.com/voicekit/vvcore/internal/vvlib"
)

// Static errors.
var (
	// ErrLibraryPathEmpty indicates that no core library path was configured.
	ErrLibraryPathEmpty = errors.New("core library path cannot be empty")
	// ErrCoreInitializeFailed indicates that the native initialize call returned false.
	ErrCoreInitializeFailed = errors.New("core initialization failed")
	// ErrOpenJTalkInitializeFailed indicates a non-zero result from the OpenJTalk initialization.
	ErrOpenJTalkInitializeFailed = errors.New("openjtalk initialization failed")
	// ErrSynthesisFailed indicates a non-zero result from the native TTS call.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)

// Options configures construction of a Synthesizer.
type Options struct {
	// LibraryPath is the filesystem path of the core shared library. Required.
	LibraryPath string

	// RuntimePath optionally names a dependency library (for example an
	// ONNX runtime) loaded globally before the core library.
	RuntimePath string

	// InitDir is the directory passed to the native initialize call.
	// Defaults to the core library's containing directory.
	InitDir string

	// OpenJTalkDictDir is the OpenJTalk dictionary directory. When empty
	// the text-analysis subsystem is not initialized.
	OpenJTalkDictDir string

	// UseGPU selects GPU inference in the native initialize call.
	UseGPU bool

	// CPUNumThreads is the inference thread count; 0 lets the core pick.
	CPUNumThreads int32

	// EnableFaultHandler upgrades a native fault to a full process dump
	// for diagnosability. Process-wide and idempotent.
	EnableFaultHandler bool
}

// Synthesizer implements core.SpeechSynthesizer over a loaded core
// library. Construction is all-or-nothing: a failure at any step returns
// an error and no partially usable Synthesizer.
//
// A Synthesizer is not safe for concurrent use; every method is a
// blocking synchronous call into the native library, whose own thread
// safety is undocumented.
type Synthesizer struct {
	lib core.CoreLibrary
	log *logger.Logger
}

// Compile-time interface check.
var _ core.SpeechSynthesizer = (*Synthesizer)(nil)

// New resolves and validates the configured paths, loads the native
// library and runs the initialization sequence. Path validation happens
// before any native call: a missing library path fails without touching
// the loader.
func New(opts Options, log *logger.Logger) (*Synthesizer, error) {
	resolved, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	if resolved.EnableFaultHandler {
		enableFaultHandler()
	}

	if resolved.RuntimePath != "" {
		preloadErr := vvlib.Preload(resolved.RuntimePath)
		if preloadErr != nil {
			return nil, preloadErr
		}
	}

	lib, err := vvlib.Open(resolved.LibraryPath)
	if err != nil {
		return nil, err
	}

	return initializeCore(lib, resolved, log)
}

// NewWithCore runs the initialization sequence over an injected function
// table instead of loading a shared library. It is the seam for tests
// and for alternative core builds; options are used as given, without
// filesystem resolution.
func NewWithCore(lib core.CoreLibrary, opts Options, log *logger.Logger) (*Synthesizer, error) {
	if opts.EnableFaultHandler {
		enableFaultHandler()
	}

	return initializeCore(lib, opts, log)
}

// initializeCore performs the ordered native initialization: core
// initialize first, then the optional OpenJTalk dictionary subsystem.
func initializeCore(lib core.CoreLibrary, opts Options, log *logger.Logger) (*Synthesizer, error) {
	ok := lib.Initialize(opts.InitDir, opts.UseGPU, opts.CPUNumThreads)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCoreInitializeFailed, lib.LastErrorMessage())
	}

	if opts.OpenJTalkDictDir != "" {
		code := lib.InitializeOpenJTalk(opts.OpenJTalkDictDir)
		if code != 0 {
			return nil, fmt.Errorf(
				"%w: %s",
				ErrOpenJTalkInitializeFailed,
				lib.ErrorResultToMessage(code),
			)
		}
	}

	log.Info("Voicevox core initialized (gpu=%t, threads=%d, init_dir=%s)",
		opts.UseGPU, opts.CPUNumThreads, opts.InitDir)

	return &Synthesizer{lib: lib, log: log}, nil
}

// resolve validates the option paths and fills defaults. All paths are
// made absolute and must exist.
func (o Options) resolve() (Options, error) {
	if o.LibraryPath == "" {
		return Options{}, ErrLibraryPathEmpty
	}

	libraryPath, err := resolvePath(o.LibraryPath)
	if err != nil {
		return Options{}, err
	}

	o.LibraryPath = libraryPath

	if o.RuntimePath != "" {
		o.RuntimePath, err = resolvePath(o.RuntimePath)
		if err != nil {
			return Options{}, err
		}
	}

	if o.InitDir == "" {
		o.InitDir = filepath.Dir(libraryPath)
	}

	o.InitDir, err = resolvePath(o.InitDir)
	if err != nil {
		return Options{}, err
	}

	if o.OpenJTalkDictDir != "" {
		o.OpenJTalkDictDir, err = resolvePath(o.OpenJTalkDictDir)
		if err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// resolvePath makes a path absolute and verifies that it exists.
func resolvePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w", path, err)
	}

	_, err = os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path '%s': %w", path, err)
	}

	return absPath, nil
}

// enableFaultHandler makes a native fault produce a full runtime dump
// instead of a bare signal exit. It does not prevent the crash; the
// native library can still take the process down on a contract
// violation.
func enableFaultHandler() {
	debug.SetTraceback("crash")
}

// TTS synthesizes text into a WAV byte sequence for the given style ID.
// The native library allocates the output buffer; it is released exactly
// once on every path, after the bytes have been copied out on success.
// The context is consulted only before the blocking native call: a call
// already in flight cannot be cancelled.
func (s *Synthesizer) TTS(ctx context.Context, rawText string, styleID int64) ([]byte, error) {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, fmt.Errorf("synthesis not attempted: %w", ctxErr)
	}

	normalized := text.Normalize(rawText)

	validateErr := text.Validate(normalized)
	if validateErr != nil {
		return nil, validateErr
	}

	var (
		outSize int32
		outWav  *byte
	)

	code := s.lib.TTS(normalized, styleID, &outSize, &outWav)
	if code != 0 {
		releaseWav(s.lib, outWav)

		return nil, fmt.Errorf("%w: %s", ErrSynthesisFailed, s.lib.ErrorResultToMessage(code))
	}

	data := takeWav(s.lib, outWav, outSize)

	s.log.Info("Synthesized %d bytes for style %d", len(data), styleID)

	return data, nil
}

// Metas fetches and decodes the current speaker metadata. No caching:
// each call re-fetches from the native library.
func (s *Synthesizer) Metas() ([]core.Speaker, error) {
	var speakers []core.Speaker

	err := json.Unmarshal([]byte(s.lib.Metas()), &speakers)
	if err != nil {
		return nil, fmt.Errorf("failed to decode speaker metadata: %w", err)
	}

	return speakers, nil
}

// SupportedDevices fetches and decodes device availability.
func (s *Synthesizer) SupportedDevices() (core.DeviceSupport, error) {
	var devices core.DeviceSupport

	err := json.Unmarshal([]byte(s.lib.SupportedDevices()), &devices)
	if err != nil {
		return nil, fmt.Errorf("failed to decode supported devices: %w", err)
	}

	return devices, nil
}

// Finalize resets native core state. Idempotent and repeatable; the
// shared library stays loaded.
func (s *Synthesizer) Finalize() {
	s.lib.Finalize()
}

// Core exposes the raw native function table for callers that drive the
// low-level inference operations (yukarin_s_forward, yukarin_sa_forward,
// decode_forward) directly. Those calls are deliberately not wrapped by
// the facade's error translation: callers check the boolean result and
// consult LastErrorMessage themselves.
func (s *Synthesizer) Core() core.CoreLibrary {
	return s.lib
}
