package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// FrameSampleInterval is the stride between sampled frames
const FrameSampleInterval = 10

// FrameSource decodes every frame of a video in order.
// *media.Executor implements it.
type FrameSource interface {
	DecodeFrames(ctx context.Context, path string, visit func(image.Image) error) error
}

// FaceDetector counts face regions in a grayscale frame
type FaceDetector interface {
	Detect(ctx context.Context, frame *image.Gray) (int, error)
}

// PresenceStats summarises visual sampling of one video
type PresenceStats struct {
	Frames     int
	Sampled    int
	Present    int
	Percentage float64
}

// PresenceSampler estimates how often a face is visible, as an eye-contact proxy
type PresenceSampler struct {
	frames   FrameSource
	detector FaceDetector
	logger   *zap.Logger
}

// NewPresenceSampler creates a new sampler
func NewPresenceSampler(frames FrameSource, detector FaceDetector, logger *zap.Logger) *PresenceSampler {
	return &PresenceSampler{
		frames:   frames,
		detector: detector,
		logger:   logger,
	}
}

// Sample runs the detector on every 10th frame, counting from 1, and returns
// the share of sampled frames with at least one face as a percentage.
func (s *PresenceSampler) Sample(ctx context.Context, videoPath string) (PresenceStats, error) {
	var stats PresenceStats

	err := s.frames.DecodeFrames(ctx, videoPath, func(frame image.Image) error {
		stats.Frames++
		if stats.Frames%FrameSampleInterval != 0 {
			return nil
		}
		stats.Sampled++

		faces, err := s.detector.Detect(ctx, ToGray(frame))
		if err != nil {
			return fmt.Errorf("%w: frame %d: %v", usecaseErrors.ErrDetector, stats.Frames, err)
		}
		if faces > 0 {
			stats.Present++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrDetector) || ctx.Err() != nil {
			return stats, err
		}
		return stats, fmt.Errorf("%w: %v", usecaseErrors.ErrUnreadableMedia, err)
	}

	stats.Percentage = PresencePercentage(stats.Present, stats.Sampled)

	if s.logger != nil {
		s.logger.Debug("visual presence sampled",
			zap.Int("frames", stats.Frames),
			zap.Int("sampled", stats.Sampled),
			zap.Int("present", stats.Present),
		)
	}
	return stats, nil
}

// PresencePercentage returns present/sampled*100, or 0 when nothing was sampled
func PresencePercentage(present, sampled int) float64 {
	if sampled == 0 {
		return 0
	}
	return float64(present) / float64(sampled) * 100
}

// ToGray converts an image to single-channel luma (0.299R + 0.587G + 0.114B)
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			src := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := gray.Pix[y*gray.Stride:]
			for x := 0; x < b.Dx(); x++ {
				p := src[x*4 : x*4+3]
				dst[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
			}
		}
		return gray
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			gray.Pix[y*gray.Stride+x] = luma(r>>8, g>>8, bl>>8)
		}
	}
	return gray
}

func luma(r, g, b uint32) uint8 {
	v := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b) + 0.5
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
