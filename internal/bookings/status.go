package bookings

import "ticketcore/internal/payments"

// Status is the externally visible outcome of a booking
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the booking can still change
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// State is the step of the booking transaction
type State string

const (
	StateCreated      State = "created"
	StateInitializing State = "initializing"
	StateProcessing   State = "processing"
	StateVerifying    State = "verifying"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

func (s State) rank() int {
	switch s {
	case StateCreated:
		return 0
	case StateInitializing:
		return 1
	case StateProcessing:
		return 2
	case StateVerifying:
		return 3
	case StateSucceeded, StateFailed:
		return 4
	}
	return -1
}

func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// MayHaveCharged reports whether money may have moved, so a failure needs a refund
func (s State) MayHaveCharged() bool {
	return s.rank() >= StateProcessing.rank()
}

// targetState is where a payment event moves a transaction
func targetState(kind payments.EventKind) State {
	switch kind {
	case payments.ChargeInitiated:
		return StateProcessing
	case payments.ChargeSucceeded:
		return StateVerifying
	case payments.ChargeConfirmed:
		return StateSucceeded
	case payments.ChargeFailed:
		return StateFailed
	}
	return ""
}
