package notifications

import (
	"context"
	"fmt"
	"time"

	"clubtrips/internal/shared/config"
	"clubtrips/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher emits booking lifecycle records
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

// KafkaPublisher writes booking events to a Kafka topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewSaramaConfig returns the producer settings used for the booking stream
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.MaxMessageBytes = 1000000

	// Idempotent producer
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner routes by booking reference
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka booking producer created", "brokers", cfg.Brokers, "topic", cfg.BookingTopic)
	return NewKafkaPublisherWithProducer(producer, cfg.BookingTopic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send booking event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "booking event published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
		"booking_reference", event.BookingReference,
	)
	return nil
}

func createHeaders(event BookingEvent) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NoopPublisher discards events; used when Kafka is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// NewPublisher picks the Kafka publisher when enabled, otherwise a no-op
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) (Publisher, error) {
	if !cfg.Enabled {
		log.Info("Kafka disabled, booking events will not be published")
		return NoopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg, log)
}
