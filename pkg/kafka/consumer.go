package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ticketcore/pkg/logger"

	"github.com/IBM/sarama"
)

// MessageHandler processes one message. Returning an error leaves the offset unmarked.
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	Heartbeat         time.Duration
	MaxProcessingTime time.Duration
	OffsetOldest      bool
}

func DefaultConsumerConfig(brokers []string, groupID string, topics ...string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topics:            topics,
		SessionTimeout:    30 * time.Second,
		Heartbeat:         3 * time.Second,
		MaxProcessingTime: time.Minute,
		OffsetOldest:      true,
	}
}

// Consumer runs a consumer group with a fixed number of workers
type Consumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	handler MessageHandler
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewConsumer(config *ConsumerConfig, handler MessageHandler) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return NewConsumerFromGroup(group, config, handler), nil
}

// NewConsumerFromGroup wraps an existing consumer group
func NewConsumerFromGroup(group sarama.ConsumerGroup, config *ConsumerConfig, handler MessageHandler) *Consumer {
	return &Consumer{group: group, config: config, handler: handler}
}

// Start launches numWorkers consume loops
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	logger.GetDefault().Info("kafka consumer started",
		"group", c.config.GroupID, "topics", c.config.Topics, "workers", numWorkers)
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &groupHandler{handler: c.handler, workerID: workerID}
	for {
		if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
			logger.GetDefault().WithError(err).Warn("consume loop error", "worker", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) handleErrors() {
	defer c.wg.Done()
	for err := range c.group.Errors() {
		logger.GetDefault().WithError(err).Warn("consumer group error", "group", c.config.GroupID)
	}
}

// Stop cancels the workers and closes the group
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	logger.GetDefault().Info("kafka consumer stopped", "group", c.config.GroupID)
	return nil
}

type groupHandler struct {
	handler  MessageHandler
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.handler(session.Context(), message); err != nil {
				logger.GetDefault().WithError(err).Error("failed to process message",
					"worker", h.workerID, "topic", message.Topic, "partition", message.Partition, "offset", message.Offset)
				continue
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
