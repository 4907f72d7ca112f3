package analysis

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/media"
)

// writeWAV encodes 16-bit mono samples to path
func writeWAV(t *testing.T, path string, samples []int, sampleRate int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

// writeVideoStub creates a placeholder input file; fakes never decode it
func writeVideoStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "interview.mp4")
	writeFile(t, path, "stub")
	return path
}

// fakeAudioSource writes a short tone instead of running ffmpeg
type fakeAudioSource struct {
	t          *testing.T
	info       media.VideoInfo
	probeErr   error
	extractErr error

	mu      sync.Mutex
	outputs []string
}

func (f *fakeAudioSource) ProbeVideo(ctx context.Context, path string) (*media.VideoInfo, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	info := f.info
	info.FilePath = path
	return &info, nil
}

func (f *fakeAudioSource) ExtractAudio(ctx context.Context, input, output string, format media.AudioFormat) error {
	f.mu.Lock()
	f.outputs = append(f.outputs, output)
	f.mu.Unlock()

	if f.extractErr != nil {
		// leave a partial file behind, as a failed ffmpeg run can
		_ = os.WriteFile(output, []byte("partial"), 0o600)
		return f.extractErr
	}

	samples := make([]int, format.SampleRate/2)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 800
		} else {
			samples[i] = -800
		}
	}
	writeWAV(f.t, output, samples, format.SampleRate)
	return nil
}

func (f *fakeAudioSource) lastOutput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.outputs) == 0 {
		return ""
	}
	return f.outputs[len(f.outputs)-1]
}

type fakeRecognizer struct {
	text    string
	err     error
	explode bool

	mu    sync.Mutex
	calls int
	clips []*entities.AudioClip
}

func (f *fakeRecognizer) Recognize(ctx context.Context, clip *entities.AudioClip) (string, error) {
	f.mu.Lock()
	f.calls++
	f.clips = append(f.clips, clip)
	f.mu.Unlock()

	if f.explode {
		panic("recognizer exploded")
	}
	return f.text, f.err
}

// fakeFrameSource emits frames that are white when hasFace(index) holds and
// black otherwise. Indexes start at 1.
type fakeFrameSource struct {
	frames  int
	hasFace func(index int) bool
	err     error
	failAt  int    // stop with err after this many frames when > 0
	onStart func() // runs before the first frame is decoded
}

func (f *fakeFrameSource) DecodeFrames(ctx context.Context, path string, visit func(image.Image) error) error {
	if f.onStart != nil {
		f.onStart()
	}
	if f.err != nil && f.failAt == 0 {
		return f.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 1; i <= f.frames; i++ {
		if f.failAt > 0 && i > f.failAt {
			return f.err
		}
		c := color.RGBA{A: 255}
		if f.hasFace != nil && f.hasFace(i) {
			c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				img.SetRGBA(x, y, c)
			}
		}
		if err := visit(img); err != nil {
			return err
		}
	}
	return nil
}

// brightnessDetector reports a face whenever the frame is bright
type brightnessDetector struct {
	err   error
	calls int
}

func (d *brightnessDetector) Detect(ctx context.Context, frame *image.Gray) (int, error) {
	d.calls++
	if d.err != nil {
		return 0, d.err
	}
	if frame.GrayAt(0, 0).Y > 128 {
		return 1, nil
	}
	return 0, nil
}

// fakeObserver records pipeline telemetry
type fakeObserver struct {
	mu           sync.Mutex
	stages       []entities.Stage
	recognitions []entities.RecognitionOutcome
	outcomes     []entities.Outcome
}

func (o *fakeObserver) StageCompleted(stage entities.Stage, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *fakeObserver) RecognitionCompleted(outcome entities.RecognitionOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recognitions = append(o.recognitions, outcome)
}

func (o *fakeObserver) AnalysisCompleted(outcome entities.Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

var errBoom = errors.New("boom")

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
