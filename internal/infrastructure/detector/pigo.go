package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	pigo "github.com/esimov/pigo/core"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

// ErrClosed is returned by Detect after Close
var ErrClosed = errors.New("face detector is closed")

// PigoDetector finds frontal faces with a pigo cascade. It is loaded once and
// shared between analyses.
type PigoDetector struct {
	mu         sync.RWMutex
	classifier *pigo.Pigo
	cfg        config.DetectorConfig
	logger     *zap.Logger
}

// NewPigoDetector reads and unpacks the cascade file at cfg.CascadePath
func NewPigoDetector(cfg config.DetectorConfig, logger *zap.Logger) (*PigoDetector, error) {
	data, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}
	return NewPigoDetectorFromBytes(data, cfg, logger)
}

// NewPigoDetectorFromBytes unpacks an in-memory cascade
func NewPigoDetectorFromBytes(data []byte, cfg config.DetectorConfig, logger *zap.Logger) (*PigoDetector, error) {
	classifier, err := unpack(data)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("✅ Face detector loaded",
			zap.String("cascade", cfg.CascadePath),
			zap.Int("min_size", cfg.MinSize),
			zap.Float64("scale_factor", cfg.ScaleFactor),
		)
	}

	return &PigoDetector{
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// unpack guards against malformed cascades, which make pigo index out of range
func unpack(data []byte) (classifier *pigo.Pigo, err error) {
	defer func() {
		if r := recover(); r != nil {
			classifier = nil
			err = fmt.Errorf("invalid cascade file: %v", r)
		}
	}()

	classifier, err = pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("invalid cascade file: %w", err)
	}
	return classifier, nil
}

// Detect returns the number of face regions found in frame
func (d *PigoDetector) Detect(ctx context.Context, frame *image.Gray) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.classifier == nil {
		return 0, ErrClosed
	}

	cols, rows := frame.Bounds().Dx(), frame.Bounds().Dy()
	if cols == 0 || rows == 0 {
		return 0, nil
	}

	maxSize := d.cfg.MaxSize
	if side := min(cols, rows); maxSize <= 0 || maxSize > side {
		maxSize = side
	}
	if d.cfg.MinSize > maxSize {
		return 0, nil
	}

	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: packedPixels(frame),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0)
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)

	faces := 0
	for _, det := range dets {
		if float64(det.Q) >= d.cfg.MinQuality {
			faces++
		}
	}
	return faces, nil
}

// Close releases the cascade. Detect fails afterwards.
func (d *PigoDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classifier = nil
	return nil
}

// packedPixels returns frame's pixels with stride equal to width
func packedPixels(frame *image.Gray) []uint8 {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if frame.Stride == w && b.Min == (image.Point{}) {
		return frame.Pix[:w*h]
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		start := frame.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*w:(y+1)*w], frame.Pix[start:start+w])
	}
	return out
}
