package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/media"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
)

type pipelineFixture struct {
	tempDir    string
	source     *fakeAudioSource
	recognizer *fakeRecognizer
	frames     *fakeFrameSource
	detector   *brightnessDetector
	observer   *fakeObserver
	pipeline   *Pipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		tempDir: t.TempDir(),
		source: &fakeAudioSource{
			t:    t,
			info: media.VideoInfo{HasAudio: true, HasVideo: true, DurationSeconds: 60, Width: 4, Height: 4},
		},
		recognizer: &fakeRecognizer{text: words(150)},
		frames: &fakeFrameSource{
			frames:  40,
			hasFace: func(i int) bool { return i <= 30 },
		},
		detector: &brightnessDetector{},
		observer: &fakeObserver{},
	}
	logger := zap.NewNop()
	f.pipeline = NewPipeline(
		NewAudioExtractor(f.source, f.tempDir, logger),
		NewTranscriber(f.recognizer, logger),
		NewPresenceSampler(f.frames, f.detector, logger),
		f.observer,
		logger,
	)
	return f
}

func assertNoTempAudio(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "presence-audio-*.wav"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) > 0 {
		t.Errorf("temporary audio left behind: %v", matches)
	}
}

func assertCanned(t *testing.T, outcome entities.Outcome, stage entities.Stage) {
	t.Helper()
	if !outcome.Degraded() {
		t.Fatalf("expected degraded outcome, got %+v", outcome)
	}
	if outcome.Result != entities.CannedResult() {
		t.Errorf("expected canned result, got %+v", outcome.Result)
	}
	if outcome.FailedStage != stage {
		t.Errorf("expected failed stage %s, got %s", stage, outcome.FailedStage)
	}
	if outcome.Reason() == "" {
		t.Error("expected a degraded reason")
	}
}

func TestPipeline_Analyze_Success(t *testing.T) {
	f := newPipelineFixture(t)

	outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))

	if outcome.Degraded() {
		t.Fatalf("unexpected degraded outcome: %v", outcome.Err)
	}
	want := entities.AnalysisResult{
		FillerWordCount:      0,
		SpeakingPace:         150,
		EyeContactPercentage: 75,
		Sentiment:            entities.SentimentConfidentCalm,
		Transcript:           words(150),
	}
	if outcome.Result != want {
		t.Errorf("result = %+v, want %+v", outcome.Result, want)
	}

	if f.recognizer.calls != 1 {
		t.Errorf("expected exactly one recognition call, got %d", f.recognizer.calls)
	}
	clip := f.recognizer.clips[0]
	if clip.SampleRate != 16000 || len(clip.Samples) != 8000 {
		t.Errorf("unexpected clip: rate %d, %d samples", clip.SampleRate, len(clip.Samples))
	}

	assertNoTempAudio(t, f.tempDir)
	if _, err := os.Stat(f.source.lastOutput()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected temp audio to be removed, stat err = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(f.source.lastOutput()), "presence-audio-") {
		t.Errorf("unexpected temp audio name %s", f.source.lastOutput())
	}

	wantStages := []entities.Stage{
		entities.StageValidating,
		entities.StageExtractingAudio,
		entities.StageTranscribing,
		entities.StageComputingVerbalMetrics,
		entities.StageSamplingVisual,
		entities.StageClassifying,
	}
	if len(f.observer.stages) != len(wantStages) {
		t.Fatalf("observed stages %v, want %v", f.observer.stages, wantStages)
	}
	for i, s := range wantStages {
		if f.observer.stages[i] != s {
			t.Errorf("stage %d = %s, want %s", i, f.observer.stages[i], s)
		}
	}
	if len(f.observer.outcomes) != 1 || len(f.observer.recognitions) != 1 {
		t.Errorf("expected one outcome and one recognition, got %d and %d",
			len(f.observer.outcomes), len(f.observer.recognitions))
	}
}

func TestPipeline_Analyze_ReleasesAudioBeforeVisualSampling(t *testing.T) {
	tests := []struct {
		name        string
		detectorErr error
	}{
		{"success", nil},
		{"detector failure", errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t)
			f.detector.err = tt.detectorErr

			var leftover []string
			started := false
			f.frames.onStart = func() {
				started = true
				matches, err := filepath.Glob(filepath.Join(f.tempDir, "presence-audio-*.wav"))
				if err != nil {
					t.Errorf("glob: %v", err)
				}
				leftover = matches
			}

			outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))

			if !started {
				t.Fatal("frame decoding never started")
			}
			if f.source.lastOutput() == "" {
				t.Fatal("audio was never extracted")
			}
			if len(leftover) > 0 {
				t.Errorf("temporary audio still present when frame decoding began: %v", leftover)
			}
			if tt.detectorErr != nil {
				assertCanned(t, outcome, entities.StageSamplingVisual)
			} else if outcome.Degraded() {
				t.Errorf("unexpected degraded outcome: %v", outcome.Err)
			}
		})
	}
}

func TestPipeline_Analyze_Idempotent(t *testing.T) {
	f := newPipelineFixture(t)
	video := writeVideoStub(t)

	first := f.pipeline.Analyze(context.Background(), video)
	second := f.pipeline.Analyze(context.Background(), video)

	if first.Result != second.Result || first.Status != second.Status {
		t.Errorf("expected identical outcomes, got %+v and %+v", first, second)
	}
	if f.source.outputs[0] == f.source.outputs[1] {
		t.Error("expected a fresh temp audio name per invocation")
	}
	assertNoTempAudio(t, f.tempDir)
}

func TestPipeline_Analyze_RecognitionOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		recognizer *fakeRecognizer
		transcript string
		outcome    entities.RecognitionOutcome
	}{
		{"no match", &fakeRecognizer{err: usecaseErrors.ErrRecognitionNoMatch}, entities.TranscriptNoMatch, entities.RecognitionNoMatch},
		{"empty text", &fakeRecognizer{text: "   "}, entities.TranscriptNoMatch, entities.RecognitionNoMatch},
		{"service error", &fakeRecognizer{err: errBoom}, entities.TranscriptServiceError, entities.RecognitionServiceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t)
			f.pipeline.transcriber = NewTranscriber(tt.recognizer, nil)

			outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))

			if outcome.Degraded() {
				t.Fatalf("recognition failures must not degrade the analysis: %v", outcome.Err)
			}
			if outcome.Result.Transcript != tt.transcript {
				t.Errorf("transcript = %q, want %q", outcome.Result.Transcript, tt.transcript)
			}
			if outcome.Result.SpeakingPace != 0 || outcome.Result.FillerWordCount != 0 {
				t.Errorf("expected zero verbal metrics, got %+v", outcome.Result)
			}
			if outcome.Result.Sentiment != entities.SentimentSlowThoughtful {
				t.Errorf("expected Slow/Thoughtful for silent audio, got %s", outcome.Result.Sentiment)
			}
			if f.observer.recognitions[0] != tt.outcome {
				t.Errorf("recognition outcome = %s, want %s", f.observer.recognitions[0], tt.outcome)
			}
			assertNoTempAudio(t, f.tempDir)
		})
	}
}

func TestPipeline_Analyze_Fallbacks(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		f := newPipelineFixture(t)
		outcome := f.pipeline.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))

		assertCanned(t, outcome, entities.StageValidating)
		if !errors.Is(outcome.Err, usecaseErrors.ErrInputNotFound) {
			t.Errorf("expected ErrInputNotFound, got %v", outcome.Err)
		}
		if len(f.source.outputs) != 0 {
			t.Error("expected no decoding for missing input")
		}
	})

	t.Run("directory input", func(t *testing.T) {
		f := newPipelineFixture(t)
		outcome := f.pipeline.Analyze(context.Background(), t.TempDir())
		assertCanned(t, outcome, entities.StageValidating)
	})

	t.Run("no audio track", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.source.info.HasAudio = false

		outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))
		assertCanned(t, outcome, entities.StageExtractingAudio)
		if !errors.Is(outcome.Err, usecaseErrors.ErrNoAudioTrack) {
			t.Errorf("expected ErrNoAudioTrack, got %v", outcome.Err)
		}
	})

	t.Run("corrupt container", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.source.probeErr = errBoom

		outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))
		assertCanned(t, outcome, entities.StageExtractingAudio)
		if !errors.Is(outcome.Err, usecaseErrors.ErrUnreadableMedia) {
			t.Errorf("expected ErrUnreadableMedia, got %v", outcome.Err)
		}
	})

	t.Run("extraction failure removes partial audio", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.source.extractErr = errBoom

		outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))
		assertCanned(t, outcome, entities.StageExtractingAudio)
		assertNoTempAudio(t, f.tempDir)
	})

	t.Run("detector failure", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.detector.err = errBoom

		outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))
		assertCanned(t, outcome, entities.StageSamplingVisual)
		if !errors.Is(outcome.Err, usecaseErrors.ErrDetector) {
			t.Errorf("expected ErrDetector, got %v", outcome.Err)
		}
		assertNoTempAudio(t, f.tempDir)
	})

	t.Run("panic in recognizer", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.recognizer.explode = true

		outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))
		assertCanned(t, outcome, entities.StageTranscribing)
		assertNoTempAudio(t, f.tempDir)
		if len(f.observer.outcomes) != 1 || !f.observer.outcomes[0].Degraded() {
			t.Errorf("expected the degraded outcome to be observed, got %+v", f.observer.outcomes)
		}
	})
}

func TestPipeline_Analyze_NoFramesSampled(t *testing.T) {
	f := newPipelineFixture(t)
	f.frames.frames = 0

	outcome := f.pipeline.Analyze(context.Background(), writeVideoStub(t))
	if outcome.Degraded() {
		t.Fatalf("unexpected degraded outcome: %v", outcome.Err)
	}
	if outcome.Result.EyeContactPercentage != 0 {
		t.Errorf("expected 0%% eye contact, got %v", outcome.Result.EyeContactPercentage)
	}
}

func TestAudioExtractor_ReleaseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAudioSource{t: t, info: media.VideoInfo{HasAudio: true, DurationSeconds: 3}}
	extractor := NewAudioExtractor(source, dir, nil)

	audio, err := extractor.Extract(context.Background(), "video.mp4")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if audio.DurationSeconds != 3 || audio.SampleRate != 16000 {
		t.Errorf("unexpected audio %+v", audio)
	}
	if _, err := os.Stat(audio.Path); err != nil {
		t.Fatalf("expected temp audio to exist: %v", err)
	}

	audio.Release()
	audio.Release()

	if _, err := os.Stat(audio.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected temp audio removed, got %v", err)
	}

	var nilAudio *ExtractedAudio
	nilAudio.Release()
}

type trackingObserver struct {
	fakeObserver
	started, finished int
}

func (o *trackingObserver) AnalysisStarted() func() {
	o.started++
	return func() { o.finished++ }
}

func TestPipeline_Analyze_TracksActivity(t *testing.T) {
	f := newPipelineFixture(t)
	tracker := &trackingObserver{}
	f.pipeline.observer = tracker

	f.pipeline.Analyze(context.Background(), writeVideoStub(t))
	f.pipeline.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))

	if tracker.started != 2 || tracker.finished != 2 {
		t.Errorf("expected 2 started and finished, got %d and %d", tracker.started, tracker.finished)
	}
	if len(tracker.outcomes) != 2 {
		t.Errorf("expected both outcomes observed, got %d", len(tracker.outcomes))
	}
}
