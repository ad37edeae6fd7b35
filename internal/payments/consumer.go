package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ticketcore/pkg/kafka"
	"ticketcore/pkg/logger"

	"github.com/IBM/sarama"
)

// EventSink receives payment events. The bookings service implements it.
type EventSink interface {
	HandlePaymentEvent(ctx context.Context, event Event) error
}

// Validate checks the fields every event must carry
func (e Event) Validate() error {
	if e.BookingID == "" {
		return ErrMissingBookingID
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
	}
	return nil
}

// NewEventHandler decodes payment events from the event topic and hands them to sink.
// Malformed messages are logged and skipped so they do not block the partition. Every instance
// reads the whole topic, so events owned by another instance are skipped too.
func NewEventHandler(sink EventSink) kafka.MessageHandler {
	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		var event Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			logger.GetDefault().WithError(err).Warn("dropping undecodable payment event",
				"topic", message.Topic, "partition", message.Partition, "offset", message.Offset)
			return nil
		}
		if err := event.Validate(); err != nil {
			logger.GetDefault().WithError(err).Warn("dropping invalid payment event",
				"event_id", event.EventID, "offset", message.Offset)
			return nil
		}
		if event.OccurredAt.IsZero() {
			event.OccurredAt = message.Timestamp
		}
		err := sink.HandlePaymentEvent(ctx, event)
		if errors.Is(err, ErrHandledElsewhere) {
			return nil
		}
		return err
	}
}
