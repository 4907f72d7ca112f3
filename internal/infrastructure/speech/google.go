package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// syncRecognizeLimit is the longest clip sent to the synchronous endpoint
const syncRecognizeLimit = 55.0 // seconds

// inlineAudioLimit is the largest audio payload the API accepts inline.
// About 5.4 minutes of 16 kHz LINEAR16; longer audio needs a gs:// URI.
const inlineAudioLimit = 10 << 20 // bytes

// ErrInlineAudioTooLarge is returned for clips over inlineAudioLimit
var ErrInlineAudioTooLarge = errors.New("audio exceeds the inline request limit")

// GoogleRecognizer uses Google Cloud Speech-to-Text v1.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
type GoogleRecognizer struct {
	client       *speechapi.Client
	languageCode string
	logger       *zap.Logger
}

// NewGoogleRecognizer creates a new Google recognizer
func NewGoogleRecognizer(ctx context.Context, languageCode string, logger *zap.Logger) (*GoogleRecognizer, error) {
	c, err := speechapi.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create google speech client: %w", err)
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &GoogleRecognizer{client: c, languageCode: languageCode, logger: logger}, nil
}

// Recognize sends the clip as LINEAR16 PCM. Short clips use the synchronous
// endpoint, longer ones a long-running operation. Clips over the inline
// payload limit fail without a request.
func (g *GoogleRecognizer) Recognize(ctx context.Context, clip *entities.AudioClip) (string, error) {
	if size := len(clip.Samples) * 2; size > inlineAudioLimit {
		if g.logger != nil {
			g.logger.Warn("⚠️ Clip too long for inline Google recognition",
				zap.Int("bytes", size),
				zap.Float64("seconds", clipSeconds(clip)),
			)
		}
		return "", fmt.Errorf("%w: %d bytes, max %d", ErrInlineAudioTooLarge, size, inlineAudioLimit)
	}

	req := buildRecognizeRequest(clip, g.languageCode)

	var results []*speechpb.SpeechRecognitionResult
	if clipSeconds(clip) <= syncRecognizeLimit {
		resp, err := g.client.Recognize(ctx, req)
		if err != nil {
			return "", fmt.Errorf("google recognize failed: %w", err)
		}
		results = resp.GetResults()
	} else {
		op, err := g.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
			Config: req.Config,
			Audio:  req.Audio,
		})
		if err != nil {
			return "", fmt.Errorf("google long running recognize failed: %w", err)
		}
		resp, err := op.Wait(ctx)
		if err != nil {
			return "", fmt.Errorf("google long running recognize failed: %w", err)
		}
		results = resp.GetResults()
	}

	text := joinResults(results)
	if text == "" {
		return "", usecaseErrors.ErrRecognitionNoMatch
	}
	return text, nil
}

// Close releases the gRPC connection
func (g *GoogleRecognizer) Close() error {
	return g.client.Close()
}

func buildRecognizeRequest(clip *entities.AudioClip, languageCode string) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(clip.SampleRate),
			LanguageCode:    languageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.PCM16LE()},
		},
	}
}

func clipSeconds(clip *entities.AudioClip) float64 {
	if clip.SampleRate <= 0 {
		return 0
	}
	return float64(len(clip.Samples)) / float64(clip.SampleRate)
}

// joinResults concatenates the top alternative of every result
func joinResults(results []*speechpb.SpeechRecognitionResult) string {
	parts := make([]string, 0, len(results))
	for _, result := range results {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
