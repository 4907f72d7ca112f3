package media

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// AudioFormat defines audio extraction format options
type AudioFormat struct {
	Codec      string
	SampleRate int
	Channels   int
}

// DefaultSpeechFormat returns the format speech recognizers expect:
// 16-bit little-endian PCM, 16 kHz, mono.
func DefaultSpeechFormat() AudioFormat {
	return AudioFormat{
		Codec:      "pcm_s16le",
		SampleRate: 16000,
		Channels:   1,
	}
}

// ExtractAudio writes the first audio stream of input to output as WAV
func (e *Executor) ExtractAudio(ctx context.Context, input, output string, format AudioFormat) error {
	e.logger.Info("extracting audio",
		zap.String("input", input),
		zap.String("output", output),
		zap.String("codec", format.Codec),
		zap.Int("sample_rate", format.SampleRate),
	)

	args := []string{
		"-i", input,
		"-vn",
		"-map", "0:a:0",
		"-acodec", format.Codec,
		"-ar", strconv.Itoa(format.SampleRate),
		"-ac", strconv.Itoa(format.Channels),
		"-f", "wav",
		output,
	}

	return e.Run(ctx, RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug("audio extraction", zap.String("ffmpeg", line))
		},
	})
}
