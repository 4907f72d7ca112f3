package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// Recognizer converts a clip to text with a single provider call.
//
// An error wrapping ErrRecognitionNoMatch means the provider heard nothing
// it could map to text. Any other error is treated as a service failure.
type Recognizer interface {
	Recognize(ctx context.Context, clip *entities.AudioClip) (string, error)
}

// Transcription is the transcriber output. Text is either recognised speech
// or one of the sentinel transcripts.
type Transcription struct {
	Text        string
	Outcome     entities.RecognitionOutcome
	Calibration Calibration // diagnostic; the whole clip is recognised regardless
}

// Transcriber calibrates and submits extracted audio to a Recognizer
type Transcriber struct {
	recognizer Recognizer
	logger     *zap.Logger
}

// NewTranscriber creates a new transcriber
func NewTranscriber(recognizer Recognizer, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		recognizer: recognizer,
		logger:     logger,
	}
}

// Transcribe decodes the audio, calibrates for ambient noise and asks the
// recognizer once. Recognition failures are folded into sentinel transcripts;
// only an undecodable WAV is returned as an error.
func (t *Transcriber) Transcribe(ctx context.Context, audio *ExtractedAudio) (Transcription, error) {
	clip, err := loadClip(audio.Path, audio.DurationSeconds)
	if err != nil {
		return Transcription{}, fmt.Errorf("%w: %v", usecaseErrors.ErrUnreadableMedia, err)
	}

	cal := Calibrate(clip.Samples, clip.SampleRate)
	if t.logger != nil {
		t.logger.Debug("ambient noise calibration",
			zap.Float64("energy_threshold", cal.EnergyThreshold),
			zap.Float64("noise_floor", cal.NoiseFloor),
			zap.Int("buffers", cal.Buffers),
		)
	}

	result := Transcription{Calibration: cal}

	text, err := t.recognizer.Recognize(ctx, clip)
	text = strings.TrimSpace(text)
	switch {
	case err == nil && text != "":
		result.Text = text
		result.Outcome = entities.RecognitionText
	case err == nil, errors.Is(err, usecaseErrors.ErrRecognitionNoMatch):
		result.Text = entities.TranscriptNoMatch
		result.Outcome = entities.RecognitionNoMatch
	default:
		if t.logger != nil {
			t.logger.Warn("⚠️ speech recognition failed", zap.Error(err))
		}
		result.Text = entities.TranscriptServiceError
		result.Outcome = entities.RecognitionServiceError
	}

	return result, nil
}
