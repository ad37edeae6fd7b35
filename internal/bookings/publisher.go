package bookings

import (
	"context"
	"fmt"
	"time"

	"ticketcore/internal/seats"
	"ticketcore/pkg/logger"
)

// Outcome is published once a booking reaches a terminal state
type Outcome struct {
	BookingID  string          `json:"booking_id"`
	BookingRef string          `json:"booking_ref"`
	SessionID  string          `json:"session_id"`
	Status     Status          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	Total      float64         `json:"total_amount"`
	Currency   string          `json:"currency"`
	Seats      []seats.SeatRef `json:"seats"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func outcomeOf(b *Booking, now time.Time) Outcome {
	return Outcome{
		BookingID:  b.ID,
		BookingRef: b.BookingRef,
		SessionID:  b.SessionID,
		Status:     b.Status,
		Reason:     b.FailureReason,
		Total:      b.TotalAmount,
		Currency:   b.Currency,
		Seats:      b.Refs(),
		OccurredAt: now,
	}
}

type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome Outcome) error
}

// JSONPublisher is satisfied by kafka.Publisher
type JSONPublisher interface {
	PublishJSON(ctx context.Context, topic, key string, value interface{}, headers map[string]string) error
}

// KafkaOutcomePublisher writes outcomes to the booking events topic for the notification side
type KafkaOutcomePublisher struct {
	publisher JSONPublisher
	topic     string
}

func NewKafkaOutcomePublisher(publisher JSONPublisher, topic string) *KafkaOutcomePublisher {
	return &KafkaOutcomePublisher{publisher: publisher, topic: topic}
}

func (p *KafkaOutcomePublisher) PublishOutcome(ctx context.Context, outcome Outcome) error {
	headers := map[string]string{"event_type": "booking." + outcome.Status.String()}
	if err := p.publisher.PublishJSON(ctx, p.topic, outcome.BookingID, outcome, headers); err != nil {
		return fmt.Errorf("failed to publish outcome of booking %s: %w", outcome.BookingID, err)
	}
	return nil
}

// LogOutcomePublisher is used when Kafka is disabled
type LogOutcomePublisher struct{}

func (LogOutcomePublisher) PublishOutcome(ctx context.Context, outcome Outcome) error {
	logger.GetDefault().InfoWithContext(ctx, "booking outcome", map[string]interface{}{
		"booking_id":  outcome.BookingID,
		"booking_ref": outcome.BookingRef,
		"status":      outcome.Status,
		"reason":      outcome.Reason,
	})
	return nil
}
