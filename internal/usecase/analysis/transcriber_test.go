package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

func TestTranscriber_Transcribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, constantSamples(4*calibrationChunk, 500), 16000)
	audio := &ExtractedAudio{Path: path, DurationSeconds: 0.256, SampleRate: 16000}

	recognizer := &fakeRecognizer{text: "  Hello there  "}
	result, err := NewTranscriber(recognizer, nil).Transcribe(context.Background(), audio)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if result.Text != "Hello there" || result.Outcome != entities.RecognitionText {
		t.Errorf("unexpected transcription %+v", result)
	}
	if result.Calibration.Buffers != 4 {
		t.Errorf("expected 4 calibration buffers, got %d", result.Calibration.Buffers)
	}
	if recognizer.clips[0].DurationSeconds != 0.256 {
		t.Errorf("expected container duration on clip, got %v", recognizer.clips[0].DurationSeconds)
	}
}

func TestTranscriber_WrappedNoMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, constantSamples(2048, 10), 16000)

	recognizer := &fakeRecognizer{err: errors.Join(errBoom, usecaseErrors.ErrRecognitionNoMatch)}
	result, err := NewTranscriber(recognizer, nil).Transcribe(context.Background(), &ExtractedAudio{Path: path})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != entities.TranscriptNoMatch {
		t.Errorf("expected no-match sentinel, got %q", result.Text)
	}
}

func TestTranscriber_UndecodableAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeFile(t, path, "garbage")

	recognizer := &fakeRecognizer{text: "unused"}
	_, err := NewTranscriber(recognizer, nil).Transcribe(context.Background(), &ExtractedAudio{Path: path})
	if !errors.Is(err, usecaseErrors.ErrUnreadableMedia) {
		t.Fatalf("expected ErrUnreadableMedia, got %v", err)
	}
	if recognizer.calls != 0 {
		t.Error("recognizer must not be called for undecodable audio")
	}
}
