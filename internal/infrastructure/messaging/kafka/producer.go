package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/complyhq/compliance-engine/internal/application/compliance"
	"github.com/complyhq/compliance-engine/internal/config"
	"github.com/complyhq/compliance-engine/internal/domain/obligation"
	"github.com/complyhq/compliance-engine/internal/infrastructure/monitoring/logging"
)

// messageWriter is the subset of kafka.Writer the producer uses; swappable in
// tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer implements the compliance event publisher on top of kafka-go.
// Messages are keyed by entity ID so one entity's events stay ordered within
// a partition.
type Producer struct {
	writer  messageWriter
	timeout time.Duration
	logger  logging.Logger
}

// NewProducer builds a producer from the Kafka config.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{
		writer:  writer,
		timeout: cfg.WriteTimeout,
		logger:  logger.Named("kafka"),
	}
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func (p *Producer) publish(ctx context.Context, topic, key, eventType string, payload interface{}) {
	envelope, err := newEnvelope(eventType, payload)
	if err != nil {
		p.logger.Error("event encode failed",
			logging.String("event_type", eventType),
			logging.Err(err))
		return
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("envelope encode failed",
			logging.String("event_type", eventType),
			logging.Err(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.logger.Error("event publish failed",
			logging.String("topic", topic),
			logging.String("event_type", eventType),
			logging.Err(err))
	}
}

// PublishObligationGenerated emits an event for a newly created obligation.
func (p *Producer) PublishObligationGenerated(ctx context.Context, o *obligation.Obligation) {
	p.publish(ctx, TopicObligationEvents, o.EntityID.String(), EventObligationGenerated, o)
}

// PublishObligationCompleted emits an event for a completed obligation.
func (p *Producer) PublishObligationCompleted(ctx context.Context, o *obligation.Obligation) {
	p.publish(ctx, TopicObligationEvents, o.EntityID.String(), EventObligationCompleted, o)
}

// PublishGenerationRun emits a summary event after a generation run.
func (p *Producer) PublishGenerationRun(ctx context.Context, report *compliance.GenerationReport) {
	p.publish(ctx, TopicGenerationRuns, report.EntityID.String(), EventGenerationRun, report)
}
