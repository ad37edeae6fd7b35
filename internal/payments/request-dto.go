package payments

import "time"

type WebhookRequest struct {
	EventID    string    `json:"event_id" validate:"omitempty,max=128"`
	BookingID  string    `json:"booking_id" validate:"required,max=64"`
	Kind       string    `json:"kind" validate:"required,oneof=charge.initiated charge.succeeded charge.confirmed charge.failed"`
	Amount     float64   `json:"amount" validate:"gte=0"`
	Reason     string    `json:"reason" validate:"max=500"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (r WebhookRequest) ToEvent(now time.Time) Event {
	occurred := r.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	return Event{
		EventID:    r.EventID,
		BookingID:  r.BookingID,
		Kind:       EventKind(r.Kind),
		Amount:     r.Amount,
		Reason:     r.Reason,
		OccurredAt: occurred,
	}
}
