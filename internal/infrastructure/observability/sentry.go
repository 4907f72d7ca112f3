package observability

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

// InitSentry configures the global Sentry client. It returns false when no
// DSN is configured.
func InitSentry(cfg config.SentryConfig, release string) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// FlushSentry waits for buffered events to be sent
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// SentryReporter sends degraded analyses to Sentry
type SentryReporter struct {
	hub    *sentry.Hub
	logger *zap.Logger
}

// NewSentryReporter creates a reporter on hub, or on the current hub when nil
func NewSentryReporter(hub *sentry.Hub, logger *zap.Logger) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub, logger: logger}
}

// ReportDegraded captures the failure behind a degraded outcome
func (r *SentryReporter) ReportDegraded(ctx context.Context, analysisID uuid.UUID, outcome entities.Outcome) {
	err := outcome.Err
	if err == nil {
		err = errors.New("analysis degraded without an error")
	}

	hub := r.hub.Clone()
	var eventID *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("analysis_id", analysisID.String())
		scope.SetTag("failed_stage", string(outcome.FailedStage))
		scope.SetLevel(sentry.LevelWarning)
		eventID = hub.CaptureException(err)
	})

	if r.logger != nil && eventID != nil {
		r.logger.Debug("degraded analysis reported",
			zap.String("analysis_id", analysisID.String()),
			zap.String("event_id", string(*eventID)),
		)
	}
}
