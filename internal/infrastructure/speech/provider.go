package speech

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

// Recognizer is a speech recognizer holding process-wide resources
type Recognizer interface {
	Recognize(ctx context.Context, clip *entities.AudioClip) (string, error)
	Close() error
}

// New builds the recognizer selected by cfg.Provider
func New(ctx context.Context, cfg *config.SpeechConfig, logger *zap.Logger) (Recognizer, error) {
	switch cfg.Provider {
	case "assemblyai":
		return NewAssemblyAIRecognizer(cfg.AssemblyAI, cfg.LanguageCode, logger), nil
	case "google":
		return NewGoogleRecognizer(ctx, cfg.LanguageCode, logger)
	case "static":
		return NewStaticRecognizer(cfg.StaticText), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}
