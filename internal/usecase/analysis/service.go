package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/internal/domain/repositories"
	usecaseErrors "github.com/Aanishnithin07/PresenceAI/internal/usecase/errors"
	"github.com/Aanishnithin07/PresenceAI/pkg/jobcontext"
)

const jobTypeAnalysis = "interview_analysis"

// AllowedVideoExtensions lists the container types accepted for upload
var AllowedVideoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".m4v":  "video/x-m4v",
}

// Analyzer runs the analysis pipeline on a local file. *Pipeline implements it.
type Analyzer interface {
	Analyze(ctx context.Context, videoPath string) entities.Outcome
}

// VideoArchive stores uploaded videos in object storage
type VideoArchive interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// EventPublisher announces completed analyses
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, event entities.AnalysisEvent) error
}

// FailureReporter forwards degraded analyses to error tracking
type FailureReporter interface {
	ReportDegraded(ctx context.Context, analysisID uuid.UUID, outcome entities.Outcome)
}

// ServiceConfig holds upload and concurrency limits
type ServiceConfig struct {
	UploadDir      string
	MaxUploadBytes int64
	MaxConcurrent  int
	Timeout        time.Duration
}

// Upload is a video received from a client
type Upload struct {
	Filename string
	Size     int64 // declared size, -1 when unknown
	Content  io.Reader
}

// Report is the outcome of one uploaded analysis
type Report struct {
	ID      uuid.UUID
	Outcome entities.Outcome
	Record  *entities.AnalysisRecord
}

// Service coordinates uploads, the pipeline, persistence and notifications
type Service struct {
	analyzer Analyzer
	repo     repositories.AnalysisRepository
	archive  VideoArchive
	events   EventPublisher
	reporter FailureReporter
	cfg      ServiceConfig
	slots    chan struct{}
	logger   *zap.Logger
}

// NewService creates a new analysis service. archive, events and reporter
// may be nil.
func NewService(
	analyzer Analyzer,
	repo repositories.AnalysisRepository,
	archive VideoArchive,
	events EventPublisher,
	reporter FailureReporter,
	cfg ServiceConfig,
	logger *zap.Logger,
) *Service {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	return &Service{
		analyzer: analyzer,
		repo:     repo,
		archive:  archive,
		events:   events,
		reporter: reporter,
		cfg:      cfg,
		slots:    make(chan struct{}, cfg.MaxConcurrent),
		logger:   logger,
	}
}

// ValidateUpload checks the file extension and declared size and returns the
// normalised extension.
func ValidateUpload(filename string, size, maxBytes int64) (string, error) {
	if filename == "" {
		return "", usecaseErrors.ErrMissingVideo
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedVideoExtensions[ext]; !ok {
		return ext, fmt.Errorf("%w: %q", usecaseErrors.ErrUnsupportedVideoType, ext)
	}
	if maxBytes > 0 && size > maxBytes {
		return ext, fmt.Errorf("%w: %d bytes", usecaseErrors.ErrUploadTooLarge, size)
	}
	return ext, nil
}

// AnalyzeUpload stores the upload, runs the pipeline and records the outcome.
// Only upload problems and a full server are returned as errors; pipeline
// failures come back as a degraded outcome.
func (s *Service) AnalyzeUpload(ctx context.Context, upload Upload) (*Report, error) {
	ext, err := ValidateUpload(upload.Filename, upload.Size, s.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrAnalysisBusy, ctx.Err())
	}

	id := uuid.New()
	localPath, size, err := s.saveUpload(id, ext, upload.Content)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) && s.logger != nil {
			s.logger.Warn("failed to remove upload", zap.String("path", localPath), zap.Error(err))
		}
	}()

	if s.logger != nil {
		s.logger.Info("🎬 Analysis started",
			zap.String("analysis_id", id.String()),
			zap.String("filename", upload.Filename),
			zap.Int64("size", size),
		)
	}

	jobCtx, cancel := jobcontext.JobBegin(ctx, id, jobTypeAnalysis, jobcontext.Options{
		Timeout:    s.cfg.Timeout,
		MaxRetries: 1,
	})
	defer cancel()

	objectKey := s.archiveUpload(jobCtx, id, ext, localPath, size)

	start := time.Now()
	outcome := s.analyzer.Analyze(jobCtx, localPath)
	elapsed := time.Since(start)

	record, err := entities.NewAnalysisRecord(id, filepath.Base(upload.Filename), outcome, elapsed)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis record: %w", err)
	}
	if objectKey != "" {
		record.SetObjectKey(objectKey)
	}

	// Persist and notify on the request context: the analysis deadline may
	// already be spent.
	s.persist(ctx, record)
	s.publish(ctx, entities.NewAnalysisEvent(id, outcome, elapsed))

	if outcome.Degraded() && s.reporter != nil {
		s.reporter.ReportDegraded(ctx, id, outcome)
	}

	return &Report{ID: id, Outcome: outcome, Record: record}, nil
}

// GetAnalysis returns a stored analysis record
func (s *Service) GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if record == nil {
		return nil, usecaseErrors.ErrAnalysisNotFound
	}
	return record, nil
}

// ListAnalyses returns the most recent analysis records
func (s *Service) ListAnalyses(ctx context.Context, limit int) ([]entities.AnalysisRecord, error) {
	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, nil
}

// saveUpload writes the upload to UploadDir/<id><ext>, enforcing the size limit
func (s *Service) saveUpload(id uuid.UUID, ext string, content io.Reader) (string, int64, error) {
	if content == nil {
		return "", 0, usecaseErrors.ErrMissingVideo
	}
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(s.cfg.UploadDir, id.String()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	reader := content
	if s.cfg.MaxUploadBytes > 0 {
		reader = io.LimitReader(content, s.cfg.MaxUploadBytes+1)
	}

	written, copyErr := io.Copy(f, reader)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to save upload: %w", copyErr)
	case closeErr != nil:
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to save upload: %w", closeErr)
	case s.cfg.MaxUploadBytes > 0 && written > s.cfg.MaxUploadBytes:
		os.Remove(path)
		return "", 0, fmt.Errorf("%w: more than %d bytes", usecaseErrors.ErrUploadTooLarge, s.cfg.MaxUploadBytes)
	case written == 0:
		os.Remove(path)
		return "", 0, usecaseErrors.ErrMissingVideo
	}

	return path, written, nil
}

// archiveUpload copies the upload to object storage. Failures are logged
// and yield an empty key.
func (s *Service) archiveUpload(ctx context.Context, id uuid.UUID, ext, localPath string, size int64) string {
	if s.archive == nil {
		return ""
	}

	objectKey := fmt.Sprintf("videos/%s%s", id, ext)
	contentType := AllowedVideoExtensions[ext]
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}

	uploadFn := func() error {
		f, err := os.Open(localPath)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer f.Close()
		return s.archive.UploadFile(ctx, objectKey, f, size, contentType)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(uploadFn, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx)); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to archive video",
				zap.String("analysis_id", id.String()),
				zap.String("object_key", objectKey),
				zap.Error(err),
			)
		}
		return ""
	}
	return objectKey
}

func (s *Service) persist(ctx context.Context, record *entities.AnalysisRecord) {
	jobCtx, cancel := jobcontext.JobBegin(ctx, record.ID, "persist_analysis", jobcontext.Options{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
	})
	defer cancel()

	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		return s.repo.Create(ctx, record)
	})
	if err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to persist analysis",
			zap.String("analysis_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) publish(ctx context.Context, event entities.AnalysisEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAnalysisCompleted(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to publish analysis event",
			zap.String("analysis_id", event.AnalysisID.String()),
			zap.Error(err),
		)
	}
}
