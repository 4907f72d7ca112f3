package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// FrameSize returns the size frames are decoded at: the display size of the
// video, scaled down to maxWidth when it is wider.
func FrameSize(info *VideoInfo, maxWidth int) (int, int) {
	w, h := info.DisplaySize()
	if maxWidth > 0 && w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// DecodeFrames decodes every video frame of path in order and passes it to
// visit. The image passed to visit is reused between calls and must not be
// retained.
//
// Failing to open the video is returned as an error. A decoder failure once
// frames are flowing ends the stream early and is only logged. An error
// returned by visit stops decoding and is returned unchanged.
func (e *Executor) DecodeFrames(ctx context.Context, path string, visit func(image.Image) error) error {
	info, err := e.ProbeVideo(ctx, path)
	if err != nil {
		return err
	}
	if !info.HasVideo || info.Width <= 0 || info.Height <= 0 {
		return fmt.Errorf("no decodable video stream in %s", path)
	}

	width, height := FrameSize(info, e.maxFrameWidth)

	decodeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	args := append(e.baseArgs(),
		"-i", path,
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	e.logger.Debug("decoding frames",
		zap.String("input", path),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("rotation", info.Rotation),
	)

	cmd := exec.CommandContext(decodeCtx, e.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var (
		wg       sync.WaitGroup
		lastLine string
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		lastLine = e.streamStderr(stderr, nil)
	}()

	frames, readErr := readFrames(stdout, width, height, visit)
	if readErr != nil {
		cancel()
	}
	// Drain so ffmpeg is not blocked writing to a pipe nobody reads.
	_, _ = io.Copy(io.Discard, stdout)
	wg.Wait()
	waitErr := cmd.Wait()

	var visitErr *visitError
	if errors.As(readErr, &visitErr) {
		return visitErr.err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if readErr != nil {
		e.logger.Warn("frame stream truncated",
			zap.String("input", path),
			zap.Int("frames", frames),
			zap.Error(readErr),
		)
	}
	if waitErr != nil {
		e.logger.Warn("frame decoding ended with error",
			zap.String("input", path),
			zap.Int("frames", frames),
			zap.Error(exitError(waitErr, lastLine)),
		)
	}

	e.logger.Debug("frame decoding completed", zap.String("input", path), zap.Int("frames", frames))
	return nil
}

type visitError struct {
	err error
}

func (v *visitError) Error() string { return v.err.Error() }

// readFrames reads rgb24 frames from r until EOF and returns how many were read
func readFrames(r io.Reader, width, height int, visit func(image.Image) error) (int, error) {
	frameBytes := width * height * 3
	buf := make([]byte, frameBytes)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	frames := 0
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, err
		}
		frames++

		rgbToRGBA(buf, img.Pix)
		if err := visit(img); err != nil {
			return frames, &visitError{err: err}
		}
	}
}

func rgbToRGBA(src, dst []byte) {
	for i, j := 0, 0; i+2 < len(src); i, j = i+3, j+4 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		dst[j+3] = 0xff
	}
}
