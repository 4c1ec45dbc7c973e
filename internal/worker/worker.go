// Package worker provides a NATS worker that turns text-processed
// events into synthesized audio objects.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/voicekit/vvcore/internal/audio"
	"github.com/voicekit/vvcore/internal/core"
)

const handleMessageTimeout = 60 * time.Second

// Static errors.
var (
	// ErrVoiceEmpty indicates that the event named no voice.
	ErrVoiceEmpty = errors.New("voice cannot be empty")
	// ErrUnknownVoice indicates that the event's voice matched no speaker style.
	ErrUnknownVoice = errors.New("unknown voice")
)

// NatsWorker listens for synthesis jobs on a NATS subject, drives the
// speech synthesizer and stores the resulting audio.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	store          core.ObjectStore
	synthesizer    core.SpeechSynthesizer
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	store core.ObjectStore,
	synthesizer core.SpeechSynthesizer,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		store:          store,
		synthesizer:    synthesizer,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	var event events.TextProcessedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.log.Error("Failed to unmarshal event: %v", err)

		return
	}

	audioKey, processErr := w.processSynthesisJob(ctx, &event)
	if processErr != nil {
		w.log.Error("Failed to process synthesis job for workflow %s: %v",
			event.Header.WorkflowID, processErr)

		return
	}

	replyEvent := &events.AudioChunkCreatedEvent{
		Header:     event.Header,
		AudioKey:   audioKey,
		PageNumber: event.PageNumber,
		TotalPages: event.TotalPages,
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error("Failed to publish reply event for workflow %s: %v",
			event.Header.WorkflowID, err)
	}
}

// processSynthesisJob downloads the job text, resolves the requested
// voice to a native style id, synthesizes and uploads the audio.
func (w *NatsWorker) processSynthesisJob(
	ctx context.Context,
	event *events.TextProcessedEvent,
) (string, error) {
	textData, err := w.store.Download(ctx, event.TextKey)
	if err != nil {
		return "", fmt.Errorf("failed to download text data for key '%s': %w", event.TextKey, err)
	}

	styleID, err := w.resolveStyleID(event.Voice)
	if err != nil {
		return "", err
	}

	audioData, err := w.synthesizer.TTS(ctx, string(textData), styleID)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize speech: %w", err)
	}

	w.logAudioInfo(event.Header.WorkflowID, audioData)

	audioKey := uuid.NewString() + ".wav"

	err = w.store.Upload(ctx, audioKey, audioData)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio data for key '%s': %w", audioKey, err)
	}

	return audioKey, nil
}

// resolveStyleID maps an event voice to a native style id. A numeric
// voice is used directly; otherwise the current speaker metadata is
// searched for a style name or a qualified "speaker.style" name.
func (w *NatsWorker) resolveStyleID(voice string) (int64, error) {
	if voice == "" {
		return 0, ErrVoiceEmpty
	}

	styleID, parseErr := strconv.ParseInt(voice, 10, 64)
	if parseErr == nil {
		return styleID, nil
	}

	speakers, err := w.synthesizer.Metas()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve voice '%s': %w", voice, err)
	}

	for _, speaker := range speakers {
		for _, style := range speaker.Styles {
			if style.Name == voice || speaker.Name+"."+style.Name == voice {
				return style.ID, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: '%s'", ErrUnknownVoice, voice)
}

// logAudioInfo reports the synthesized container's format for
// observability. Inspection failure is advisory only; the audio is
// stored either way.
func (w *NatsWorker) logAudioInfo(workflowID string, audioData []byte) {
	info, err := audio.ParseWAVInfo(audioData)
	if err != nil {
		w.log.Warn("Synthesized audio for workflow %s is not inspectable: %v", workflowID, err)

		return
	}

	w.log.Info("Synthesized %s of audio for workflow %s (%d Hz, %d-bit, %d channel(s))",
		info.Duration, workflowID, info.SampleRate, info.BitsPerSample, info.Channels)
}

// publishReplyEvent marshals and responds with the AudioChunkCreatedEvent.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *events.AudioChunkCreatedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}
