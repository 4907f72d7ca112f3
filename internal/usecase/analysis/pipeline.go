package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

// StageError records which pipeline stage failed
type StageError struct {
	Stage entities.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Observer receives pipeline telemetry. All methods must be safe for
// concurrent use.
type Observer interface {
	StageCompleted(stage entities.Stage, elapsed time.Duration, err error)
	RecognitionCompleted(outcome entities.RecognitionOutcome)
	AnalysisCompleted(outcome entities.Outcome, elapsed time.Duration)
}

// ActivityTracker may be implemented by an Observer to count running analyses.
// The returned func is called once the analysis finishes.
type ActivityTracker interface {
	AnalysisStarted() func()
}

// Pipeline runs the full analysis of one video file
type Pipeline struct {
	extractor   *AudioExtractor
	transcriber *Transcriber
	sampler     *PresenceSampler
	observer    Observer
	logger      *zap.Logger
}

// NewPipeline creates a new pipeline. observer may be nil.
func NewPipeline(
	extractor *AudioExtractor,
	transcriber *Transcriber,
	sampler *PresenceSampler,
	observer Observer,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		transcriber: transcriber,
		sampler:     sampler,
		observer:    observer,
		logger:      logger,
	}
}

type stepFunc func(stage entities.Stage, fn func() error) error

type speechAnalysis struct {
	transcript string
	metrics    VerbalMetrics
}

// Analyze runs every stage in order. It never fails: any error or panic
// yields a degraded outcome holding the canned result.
func (p *Pipeline) Analyze(ctx context.Context, videoPath string) (outcome entities.Outcome) {
	if tracker, ok := p.observer.(ActivityTracker); ok {
		defer tracker.AnalysisStarted()()
	}

	start := time.Now()
	current := entities.StageValidating

	defer func() {
		if r := recover(); r != nil {
			outcome = p.degrade(videoPath, &StageError{Stage: current, Err: fmt.Errorf("panic: %v", r)})
		}
		p.finish(videoPath, outcome, time.Since(start))
	}()

	step := func(stage entities.Stage, fn func() error) error {
		current = stage
		began := time.Now()
		err := fn()
		if p.observer != nil {
			p.observer.StageCompleted(stage, time.Since(began), err)
		}
		if err != nil {
			return &StageError{Stage: stage, Err: err}
		}
		return nil
	}

	if err := step(entities.StageValidating, func() error {
		return validateInput(videoPath)
	}); err != nil {
		return p.degrade(videoPath, err)
	}

	speech, err := p.analyzeSpeech(ctx, videoPath, step)
	if err != nil {
		return p.degrade(videoPath, err)
	}

	var presence PresenceStats
	if err := step(entities.StageSamplingVisual, func() error {
		var err error
		presence, err = p.sampler.Sample(ctx, videoPath)
		return err
	}); err != nil {
		return p.degrade(videoPath, err)
	}

	var sentiment entities.Sentiment
	_ = step(entities.StageClassifying, func() error {
		sentiment = Classify(speech.metrics.SpeakingPace, speech.metrics.FillerWordCount)
		return nil
	})

	current = entities.StageAssembled
	return entities.OKOutcome(entities.AnalysisResult{
		FillerWordCount:      speech.metrics.FillerWordCount,
		SpeakingPace:         speech.metrics.SpeakingPace,
		EyeContactPercentage: presence.Percentage,
		Sentiment:            sentiment,
		Transcript:           speech.transcript,
	})
}

// analyzeSpeech owns the temporary audio file, which is gone by the time it
// returns on every path.
func (p *Pipeline) analyzeSpeech(ctx context.Context, videoPath string, step stepFunc) (speechAnalysis, error) {
	var audio *ExtractedAudio
	if err := step(entities.StageExtractingAudio, func() error {
		var err error
		audio, err = p.extractor.Extract(ctx, videoPath)
		return err
	}); err != nil {
		return speechAnalysis{}, err
	}
	defer audio.Release()

	var transcription Transcription
	if err := step(entities.StageTranscribing, func() error {
		var err error
		transcription, err = p.transcriber.Transcribe(ctx, audio)
		return err
	}); err != nil {
		return speechAnalysis{}, err
	}
	if p.observer != nil {
		p.observer.RecognitionCompleted(transcription.Outcome)
	}

	var metrics VerbalMetrics
	_ = step(entities.StageComputingVerbalMetrics, func() error {
		metrics = ComputeVerbalMetrics(transcription.Text, audio.DurationSeconds)
		return nil
	})

	return speechAnalysis{transcript: transcription.Text, metrics: metrics}, nil
}

func validateInput(videoPath string) error {
	if videoPath == "" {
		return usecaseErrors.ErrInputNotFound
	}
	info, err := os.Stat(videoPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", usecaseErrors.ErrInputNotFound, filepath.Base(videoPath), err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", usecaseErrors.ErrInputNotFound, filepath.Base(videoPath))
	}
	return nil
}

func (p *Pipeline) degrade(videoPath string, err error) entities.Outcome {
	stage := entities.StageFallback
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}

	if p.logger != nil {
		p.logger.Warn("⚠️ analysis degraded to demonstration result",
			zap.String("video", filepath.Base(videoPath)),
			zap.String("failed_stage", string(stage)),
			zap.Error(err),
		)
	}
	return entities.DegradedOutcome(stage, err)
}

func (p *Pipeline) finish(videoPath string, outcome entities.Outcome, elapsed time.Duration) {
	if p.observer != nil {
		p.observer.AnalysisCompleted(outcome, elapsed)
	}
	if p.logger != nil && !outcome.Degraded() {
		p.logger.Info("✅ analysis completed",
			zap.String("video", filepath.Base(videoPath)),
			zap.Int("speaking_pace", outcome.Result.SpeakingPace),
			zap.Int("filler_word_count", outcome.Result.FillerWordCount),
			zap.Float64("eye_contact_percentage", outcome.Result.EyeContactPercentage),
			zap.String("sentiment", string(outcome.Result.Sentiment)),
			zap.Duration("elapsed", elapsed),
		)
	}
}
