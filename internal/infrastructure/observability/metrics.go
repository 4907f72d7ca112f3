package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
)

const namespace = "presence_ai"

// Metrics holds the Prometheus collectors for the service. It implements
// analysis.Observer.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysesActive   prometheus.Gauge
	AnalysisDuration prometheus.Histogram
	FallbacksTotal   *prometheus.CounterVec

	// Stage metrics
	StageDuration *prometheus.HistogramVec
	StageFailures *prometheus.CounterVec

	// Recognition metrics
	RecognitionOutcomes *prometheus.CounterVec

	// Question metrics
	QuestionsServed *prometheus.CounterVec

	// Event metrics
	EventPublishTotal  *prometheus.CounterVec
	EventPublishErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of completed analyses by status",
		}, []string{"status"}),
		AnalysesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "analyses_active",
			Help:      "Number of analyses currently running",
		}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full analysis in seconds",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),
		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total number of analyses that returned the demonstration result, by failed stage",
		}, []string{"stage"}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Total number of failed pipeline stages",
		}, []string{"stage"}),

		RecognitionOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_outcomes_total",
			Help:      "Speech recognition results by outcome",
		}, []string{"outcome"}),

		QuestionsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_served_total",
			Help:      "Interview question sets served by source",
		}, []string{"source"}),

		EventPublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Total number of analysis events published",
		}, []string{"topic"}),
		EventPublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Total number of analysis event publish errors",
		}, []string{"topic"}),
	}
}

// StageCompleted records one stage run
func (m *Metrics) StageCompleted(stage entities.Stage, elapsed time.Duration, err error) {
	m.StageDuration.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(string(stage)).Inc()
	}
}

// RecognitionCompleted records the outcome of a speech recognition call
func (m *Metrics) RecognitionCompleted(outcome entities.RecognitionOutcome) {
	m.RecognitionOutcomes.WithLabelValues(string(outcome)).Inc()
}

// AnalysisCompleted records a finished analysis
func (m *Metrics) AnalysisCompleted(outcome entities.Outcome, elapsed time.Duration) {
	m.AnalysesTotal.WithLabelValues(string(outcome.Status)).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
	if outcome.Degraded() {
		m.FallbacksTotal.WithLabelValues(string(outcome.FailedStage)).Inc()
	}
}

// AnalysisStarted marks an analysis as running. The returned func marks it done.
func (m *Metrics) AnalysisStarted() func() {
	m.AnalysesActive.Inc()
	return m.AnalysesActive.Dec
}

// RecordQuestionSource records where a question set came from
func (m *Metrics) RecordQuestionSource(source string) {
	m.QuestionsServed.WithLabelValues(source).Inc()
}

// RecordEventPublish records an event publish attempt
func (m *Metrics) RecordEventPublish(topic string, err error) {
	m.EventPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.EventPublishErrors.WithLabelValues(topic).Inc()
	}
}
