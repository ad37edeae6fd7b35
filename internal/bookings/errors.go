package bookings

import (
	"errors"

	"ticketcore/internal/pricing"
	"ticketcore/internal/reservations"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrEmptySelection     = pricing.ErrEmptySelection
	ErrCheckoutInProgress = reservations.ErrCheckoutInProgress
	ErrTimeout            = errors.New("booking timed out")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrUserCancelled      = errors.New("booking cancelled by user")
	ErrCommitFailed       = errors.New("failed to commit seats")
	ErrNotCancellable     = errors.New("booking is already finished")
	ErrNotOwner           = errors.New("booking belongs to another holder")
	ErrShuttingDown       = errors.New("service shutting down")
	ErrAbandoned          = errors.New("booking abandoned by a previous process")
)
