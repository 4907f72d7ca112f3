package speech

import (
	"context"
	"strings"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// StaticRecognizer returns fixed text for every clip. Used for offline demos.
type StaticRecognizer struct {
	text string
}

// NewStaticRecognizer creates a recognizer that always answers text
func NewStaticRecognizer(text string) *StaticRecognizer {
	return &StaticRecognizer{text: strings.TrimSpace(text)}
}

// Recognize returns the configured text, or no-match when it is empty
func (s *StaticRecognizer) Recognize(ctx context.Context, clip *entities.AudioClip) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.text == "" {
		return "", usecaseErrors.ErrRecognitionNoMatch
	}
	return s.text, nil
}

// Close is a no-op
func (s *StaticRecognizer) Close() error {
	return nil
}
