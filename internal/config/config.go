// Package config provides the configuration structure for the voicevox
// synthesis service.
package config

import (
	"errors"
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Static errors.
var (
	// ErrLibraryPathRequired indicates that the core library path is missing.
	ErrLibraryPathRequired = errors.New("voicevox library_path is required")
	// ErrCPUNumThreadsNegative indicates a negative inference thread count.
	ErrCPUNumThreadsNegative = errors.New("voicevox cpu_num_threads must be non-negative")
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                      string `toml:"url"`
	TextProcessedSubject     string `toml:"text_processed_subject"`
	AudioChunkCreatedSubject string `toml:"audio_chunk_created_subject"`
	AudioObjectStoreBucket   string `toml:"audio_object_store_bucket"`
}

// VoicevoxConfig holds the native core library configuration.
type VoicevoxConfig struct {
	// LibraryPath is the core shared library to load at startup.
	LibraryPath string `toml:"library_path"`

	// RuntimePath optionally names a dependency library preloaded
	// before the core (for example onnxruntime).
	RuntimePath string `toml:"runtime_path"`

	// InitDir is the directory passed to the native initialize call;
	// empty means the library's own directory.
	InitDir string `toml:"init_dir"`

	// OpenJTalkDictDir enables the text-analysis subsystem when set.
	OpenJTalkDictDir string `toml:"openjtalk_dict_dir"`

	UseGPU             bool  `toml:"use_gpu"`
	CPUNumThreads      int32 `toml:"cpu_num_threads"`
	EnableFaultHandler bool  `toml:"enable_fault_handler"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS     NATSConfig     `toml:"nats"`
	Voicevox VoicevoxConfig `toml:"voicevox"`
	Paths    PathsConfig    `toml:"paths"`
}

// Load loads and validates the configuration for the service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	if c.Voicevox.LibraryPath == "" {
		return ErrLibraryPathRequired
	}

	if c.Voicevox.CPUNumThreads < 0 {
		return ErrCPUNumThreadsNegative
	}

	return nil
}
