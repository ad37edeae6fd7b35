package payments

import (
	"time"
)

// EventKind is a step reported by the payment collaborator
type EventKind string

const (
	ChargeInitiated EventKind = "charge.initiated"
	ChargeSucceeded EventKind = "charge.succeeded"
	ChargeConfirmed EventKind = "charge.confirmed"
	ChargeFailed    EventKind = "charge.failed"
)

func (k EventKind) Valid() bool {
	switch k {
	case ChargeInitiated, ChargeSucceeded, ChargeConfirmed, ChargeFailed:
		return true
	}
	return false
}

// Charged reports whether the collaborator has taken the money
func (k EventKind) Charged() bool {
	return k == ChargeSucceeded || k == ChargeConfirmed
}

// Event is one payment notification, received from Kafka or the webhook
type Event struct {
	EventID    string    `json:"event_id"`
	BookingID  string    `json:"booking_id"`
	Kind       EventKind `json:"kind"`
	Amount     float64   `json:"amount,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RequestType string

const (
	RequestCharge RequestType = "charge"
	RequestRefund RequestType = "refund"
)

// ChargeRequest asks the collaborator to take payment for a booking
type ChargeRequest struct {
	BookingID  string  `json:"booking_id"`
	BookingRef string  `json:"booking_ref"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

// RefundRequest asks the collaborator to return a charge that may have been taken
type RefundRequest struct {
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reason    string  `json:"reason"`
}

// requestMessage is the payload written to the payment request topic
type requestMessage struct {
	Type        RequestType `json:"type"`
	BookingID   string      `json:"booking_id"`
	BookingRef  string      `json:"booking_ref,omitempty"`
	Amount      float64     `json:"amount"`
	Currency    string      `json:"currency"`
	Reason      string      `json:"reason,omitempty"`
	RequestedAt time.Time   `json:"requested_at"`
}
