package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

// transcriptService is the part of the AssemblyAI SDK the recognizer uses
type transcriptService interface {
	TranscribeFromReader(ctx context.Context, reader io.Reader, params *aai.TranscriptOptionalParams) (aai.Transcript, error)
}

// AssemblyAIRecognizer uploads the clip to AssemblyAI and waits for the transcript
type AssemblyAIRecognizer struct {
	transcripts  transcriptService
	languageCode string
	logger       *zap.Logger
}

// NewAssemblyAIRecognizer creates a recognizer using the official SDK client
func NewAssemblyAIRecognizer(cfg config.AssemblyAIConfig, languageCode string, logger *zap.Logger) *AssemblyAIRecognizer {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}
	client := aai.NewClientWithOptions(opts...)

	return &AssemblyAIRecognizer{
		transcripts:  client.Transcripts,
		languageCode: assemblyAILanguage(languageCode),
		logger:       logger,
	}
}

// Recognize transcribes the clip's WAV file
func (r *AssemblyAIRecognizer) Recognize(ctx context.Context, clip *entities.AudioClip) (string, error) {
	f, err := os.Open(clip.Path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(r.languageCode),
	}

	transcript, err := r.transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		return "", fmt.Errorf("assemblyai transcript %s failed: %s", aai.ToString(transcript.ID), aai.ToString(transcript.Error))
	}

	text := strings.TrimSpace(aai.ToString(transcript.Text))
	if text == "" {
		return "", usecaseErrors.ErrRecognitionNoMatch
	}

	if r.logger != nil {
		r.logger.Debug("assemblyai transcript received",
			zap.String("transcript_id", aai.ToString(transcript.ID)),
			zap.Int("chars", len(text)),
		)
	}
	return text, nil
}

// Close is a no-op; the SDK client holds no resources
func (r *AssemblyAIRecognizer) Close() error {
	return nil
}

// assemblyAILanguage maps a BCP-47 tag such as en-US to AssemblyAI's en_us
func assemblyAILanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "en_us"
	}
	return strings.ReplaceAll(code, "-", "_")
}
