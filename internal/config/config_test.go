// Package config_test tests the configuration loading for the voicevox
// synthesis service.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicekit/vvcore/internal/config"
)

func TestUnmarshalConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
text_processed_subject = "text.processed"
audio_chunk_created_subject = "audio.chunk.created"
audio_object_store_bucket = "AUDIO_FILES"

[voicevox]
library_path = "/opt/voicevox/libcore.so"
runtime_path = "/opt/voicevox/libonnxruntime.so"
openjtalk_dict_dir = "/opt/voicevox/open_jtalk_dic_utf_8"
use_gpu = false
cpu_num_threads = 4
enable_fault_handler = true

[paths]
base_logs_dir = "/var/log/vvcore"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "text.processed", cfg.NATS.TextProcessedSubject)
	assert.Equal(t, "audio.chunk.created", cfg.NATS.AudioChunkCreatedSubject)
	assert.Equal(t, "AUDIO_FILES", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "/opt/voicevox/libcore.so", cfg.Voicevox.LibraryPath)
	assert.Equal(t, "/opt/voicevox/libonnxruntime.so", cfg.Voicevox.RuntimePath)
	assert.Equal(t, "/opt/voicevox/open_jtalk_dic_utf_8", cfg.Voicevox.OpenJTalkDictDir)
	assert.False(t, cfg.Voicevox.UseGPU)
	assert.Equal(t, int32(4), cfg.Voicevox.CPUNumThreads)
	assert.True(t, cfg.Voicevox.EnableFaultHandler)
	assert.Equal(t, "/var/log/vvcore", cfg.Paths.BaseLogsDir)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadVoicevoxConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		NATS: config.NATSConfig{
			URL:                      "nats://127.0.0.1:4222",
			TextProcessedSubject:     "text.processed",
			AudioChunkCreatedSubject: "audio.chunk.created",
			AudioObjectStoreBucket:   "AUDIO_FILES",
		},
		Voicevox: config.VoicevoxConfig{
			LibraryPath:        "",
			RuntimePath:        "",
			InitDir:            "",
			OpenJTalkDictDir:   "",
			UseGPU:             false,
			CPUNumThreads:      0,
			EnableFaultHandler: false,
		},
		Paths: config.PathsConfig{
			BaseLogsDir: "/tmp",
		},
	}

	require.ErrorIs(t, cfg.Validate(), config.ErrLibraryPathRequired)

	cfg.Voicevox.LibraryPath = "/opt/voicevox/libcore.so"
	cfg.Voicevox.CPUNumThreads = -1
	require.ErrorIs(t, cfg.Validate(), config.ErrCPUNumThreadsNegative)
}
