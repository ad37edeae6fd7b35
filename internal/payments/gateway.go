package payments

import (
	"context"
	"fmt"
	"time"

	"ticketcore/pkg/logger"
)

// Gateway sends requests to the payment collaborator
type Gateway interface {
	RequestCharge(ctx context.Context, req ChargeRequest) error
	RequestRefund(ctx context.Context, req RefundRequest) error
}

// JSONPublisher is satisfied by kafka.Publisher
type JSONPublisher interface {
	PublishJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// KafkaGateway publishes payment requests keyed by booking id
type KafkaGateway struct {
	publisher JSONPublisher
	topic     string
	now       func() time.Time
}

func NewKafkaGateway(publisher JSONPublisher, topic string) *KafkaGateway {
	return &KafkaGateway{publisher: publisher, topic: topic, now: time.Now}
}

func (g *KafkaGateway) RequestCharge(ctx context.Context, req ChargeRequest) error {
	msg := requestMessage{
		Type:        RequestCharge,
		BookingID:   req.BookingID,
		BookingRef:  req.BookingRef,
		Amount:      req.Amount,
		Currency:    req.Currency,
		RequestedAt: g.now(),
	}
	if err := g.publisher.PublishJSON(ctx, g.topic, req.BookingID, msg, map[string]string{"request_type": string(RequestCharge)}); err != nil {
		return fmt.Errorf("failed to request charge for booking %s: %w", req.BookingID, err)
	}
	return nil
}

func (g *KafkaGateway) RequestRefund(ctx context.Context, req RefundRequest) error {
	msg := requestMessage{
		Type:        RequestRefund,
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Reason:      req.Reason,
		RequestedAt: g.now(),
	}
	if err := g.publisher.PublishJSON(ctx, g.topic, req.BookingID, msg, map[string]string{"request_type": string(RequestRefund)}); err != nil {
		return fmt.Errorf("failed to request refund for booking %s: %w", req.BookingID, err)
	}
	return nil
}

// EventForwarder hands an event to whichever instance runs its booking
type EventForwarder interface {
	ForwardEvent(ctx context.Context, event Event) error
}

// KafkaForwarder republishes webhook events on the payment event topic, which every instance consumes
type KafkaForwarder struct {
	publisher JSONPublisher
	topic     string
}

func NewKafkaForwarder(publisher JSONPublisher, topic string) *KafkaForwarder {
	return &KafkaForwarder{publisher: publisher, topic: topic}
}

func (f *KafkaForwarder) ForwardEvent(ctx context.Context, event Event) error {
	if err := f.publisher.PublishJSON(ctx, f.topic, event.BookingID, event, map[string]string{"event_kind": string(event.Kind)}); err != nil {
		return fmt.Errorf("failed to forward payment event %s: %w", event.EventID, err)
	}
	return nil
}

// LoggingGateway only logs requests. Used when Kafka is disabled; payment events then arrive
// through the webhook.
type LoggingGateway struct {
	log *logger.Logger
}

func NewLoggingGateway(log *logger.Logger) *LoggingGateway {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LoggingGateway{log: log}
}

func (g *LoggingGateway) RequestCharge(ctx context.Context, req ChargeRequest) error {
	g.log.InfoWithContext(ctx, "charge requested", map[string]interface{}{
		"booking_id":  req.BookingID,
		"booking_ref": req.BookingRef,
		"amount":      req.Amount,
		"currency":    req.Currency,
	})
	return nil
}

func (g *LoggingGateway) RequestRefund(ctx context.Context, req RefundRequest) error {
	g.log.InfoWithContext(ctx, "refund requested", map[string]interface{}{
		"booking_id": req.BookingID,
		"amount":     req.Amount,
		"currency":   req.Currency,
		"reason":     req.Reason,
	})
	return nil
}
