package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketcore/pkg/logger"

	"github.com/IBM/sarama"
)

// ProducerConfig contains configuration for the sync producer
type ProducerConfig struct {
	Brokers          []string
	ClientID         string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	Compression      sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultProducerConfig returns a default producer configuration
func DefaultProducerConfig(brokers []string) *ProducerConfig {
	return &ProducerConfig{
		Brokers:          brokers,
		ClientID:         "ticketcore",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		Compression:      sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// SaramaConfig builds the sarama configuration for a sync producer
func (c *ProducerConfig) SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = c.ClientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = c.RequiredAcks
	cfg.Producer.Compression = c.Compression
	cfg.Producer.Retry.Max = c.RetryMax
	cfg.Producer.Timeout = c.Timeout
	cfg.Producer.Idempotent = c.IdempotentWrites
	cfg.Producer.MaxMessageBytes = c.MaxMessageBytes
	if c.IdempotentWrites {
		cfg.Net.MaxOpenRequests = 1
	}

	// Keyed by booking id so every message of a booking lands on one partition, in order
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

// NewSyncProducer connects a sync producer
func NewSyncProducer(c *ProducerConfig) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(c.Brokers, c.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// Publisher sends JSON messages
type Publisher struct {
	producer sarama.SyncProducer
	source   string
}

func NewPublisher(producer sarama.SyncProducer, source string) *Publisher {
	return &Publisher{producer: producer, source: source}
}

// PublishJSON marshals value and sends it to topic under key
func (p *Publisher) PublishJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", topic, err)
	}

	recordHeaders := []sarama.RecordHeader{
		{Key: []byte("producer"), Value: []byte(p.source)},
		{Key: []byte("content_type"), Value: []byte("application/json")},
	}
	for k, v := range headers {
		recordHeaders = append(recordHeaders, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	message := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Headers:   recordHeaders,
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", topic, err)
	}

	logger.GetDefault().DebugWithContext(ctx, "message published", map[string]interface{}{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

// Close closes the underlying producer
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
