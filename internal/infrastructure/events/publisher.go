package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/domain/entities"
	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

// PublishRecorder receives publish results, typically *observability.Metrics
type PublishRecorder interface {
	RecordEventPublish(topic string, err error)
}

// messageWriter is the subset of *kafka.Writer used by the publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes analysis events to Kafka, or only logs them when Kafka
// is disabled.
type Publisher struct {
	writer   messageWriter
	topic    string
	source   string
	enabled  bool
	recorder PublishRecorder
	logger   *zap.Logger
}

// New creates a publisher. recorder may be nil.
func New(cfg config.KafkaConfig, recorder PublishRecorder, logger *zap.Logger) *Publisher {
	p := &Publisher{
		topic:    cfg.Topic,
		source:   cfg.Source,
		recorder: recorder,
		logger:   logger,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		if logger != nil {
			logger.Info("Kafka disabled, using log-only mode")
		}
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}
	p.enabled = true

	if logger != nil {
		logger.Info("✅ Kafka publisher initialized",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
		)
	}
	return p
}

// PublishAnalysisCompleted publishes event keyed by its analysis ID
func (p *Publisher) PublishAnalysisCompleted(ctx context.Context, event entities.AnalysisEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.logger != nil {
		p.logger.Debug("publishing event",
			zap.String("topic", p.topic),
			zap.String("event_type", event.EventType),
			zap.String("analysis_id", event.AnalysisID.String()),
		)
	}

	if !p.enabled || p.writer == nil {
		p.record(nil)
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(event.AnalysisID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(event.EventType)},
			{Key: "source", Value: []byte(p.source)},
		},
		Time: event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.record(err)
		return fmt.Errorf("failed to write to kafka: %w", err)
	}

	p.record(nil)
	return nil
}

func (p *Publisher) record(err error) {
	if p.recorder != nil {
		p.recorder.RecordEventPublish(p.topic, err)
	}
}

// Close closes the Kafka writer
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
