package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
)

// Executor runs ffmpeg and ffprobe for the analysis pipeline
type Executor struct {
	logger        *zap.Logger
	ffmpegPath    string
	ffprobePath   string
	threads       int
	maxFrameWidth int
}

// New creates a new executor. It fails when ffmpeg or ffprobe is not on PATH.
func New(logger *zap.Logger, threads, maxFrameWidth int) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		logger:        logger.With(zap.String("component", "ffmpeg")),
		ffmpegPath:    ffmpegPath,
		ffprobePath:   ffprobePath,
		threads:       threads,
		maxFrameWidth: maxFrameWidth,
	}, nil
}

// RunOptions configures a single ffmpeg invocation
type RunOptions struct {
	Args       []string
	LogHandler func(line string)
}

// baseArgs returns the flags shared by every ffmpeg invocation
func (e *Executor) baseArgs() []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-nostdin"}
	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}
	return args
}

// Run executes ffmpeg with the given arguments and waits for it to finish
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	args := append(e.baseArgs(), opts.Args...)

	e.logger.Debug("executing ffmpeg", zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	lastLine := e.streamStderr(stderr, opts.LogHandler)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return exitError(err, lastLine)
	}

	e.logger.Debug("ffmpeg execution completed")
	return nil
}

// streamStderr forwards ffmpeg's stderr and returns the last line written
func (e *Executor) streamStderr(r io.Reader, logHandler func(string)) string {
	var last string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		last = line
		if logHandler != nil {
			logHandler(line)
		}
	}
	return last
}

func exitError(err error, lastLine string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && lastLine != "" {
		return fmt.Errorf("ffmpeg exited with code %d: %s: %w", exitErr.ExitCode(), lastLine, err)
	}
	return fmt.Errorf("ffmpeg execution failed: %w", err)
}
