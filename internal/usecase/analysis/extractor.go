package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/media"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// AudioSource probes a video container and extracts its audio track.
// *media.Executor implements it.
type AudioSource interface {
	ProbeVideo(ctx context.Context, path string) (*media.VideoInfo, error)
	ExtractAudio(ctx context.Context, input, output string, format media.AudioFormat) error
}

// ExtractedAudio is the temporary WAV produced for one analysis.
type ExtractedAudio struct {
	Path            string
	DurationSeconds float64
	SampleRate      int

	logger  *zap.Logger
	release sync.Once
}

// Release removes the temporary file. Safe to call more than once.
func (a *ExtractedAudio) Release() {
	if a == nil {
		return
	}
	a.release.Do(func() {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			if a.logger != nil {
				a.logger.Warn("failed to remove temp audio", zap.String("path", a.Path), zap.Error(err))
			}
		}
	})
}

// AudioExtractor turns a video into a temporary speech-ready WAV file
type AudioExtractor struct {
	source  AudioSource
	tempDir string
	format  media.AudioFormat
	logger  *zap.Logger
}

// NewAudioExtractor creates an extractor writing into tempDir
func NewAudioExtractor(source AudioSource, tempDir string, logger *zap.Logger) *AudioExtractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &AudioExtractor{
		source:  source,
		tempDir: tempDir,
		format:  media.DefaultSpeechFormat(),
		logger:  logger,
	}
}

// Extract probes videoPath and writes its audio to a uniquely named temp WAV.
// The caller owns the returned audio and must Release it.
func (e *AudioExtractor) Extract(ctx context.Context, videoPath string) (*ExtractedAudio, error) {
	info, err := e.source.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: probe %s: %v", usecaseErrors.ErrUnreadableMedia, filepath.Base(videoPath), err)
	}
	if !info.HasAudio {
		return nil, usecaseErrors.ErrNoAudioTrack
	}

	audio := &ExtractedAudio{
		Path:            filepath.Join(e.tempDir, fmt.Sprintf("presence-audio-%s.wav", uuid.NewString())),
		DurationSeconds: info.DurationSeconds,
		SampleRate:      e.format.SampleRate,
		logger:          e.logger,
	}

	if err := e.source.ExtractAudio(ctx, videoPath, audio.Path, e.format); err != nil {
		audio.Release()
		return nil, fmt.Errorf("%w: extract audio: %v", usecaseErrors.ErrUnreadableMedia, err)
	}

	if e.logger != nil {
		e.logger.Debug("audio extracted",
			zap.String("path", audio.Path),
			zap.Float64("duration_seconds", audio.DurationSeconds),
		)
	}

	return audio, nil
}
