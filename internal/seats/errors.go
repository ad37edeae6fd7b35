package seats

import (
	"errors"
	"fmt"

	"ticketcore/internal/sessions"
)

var (
	ErrSeatUnavailable  = errors.New("seat is not available")
	ErrSeatBlocked      = errors.New("seat is blocked")
	ErrUnknownSeat      = errors.New("seat does not exist in venue layout")
	ErrEmptySeatSet     = errors.New("no seats requested")
	ErrMissingHolder    = errors.New("holder token is required")
	ErrInvalidHoldTTL   = errors.New("hold duration must be positive")
	ErrHoldNotFound     = errors.New("hold not found")
	ErrHoldExpired      = errors.New("hold expired or released")
	ErrAlreadyCommitted = errors.New("hold already committed to another booking")
	ErrCheckoutLocked   = errors.New("hold is locked for checkout")
	ErrMissingBookingID = errors.New("booking id is required")

	ErrSessionNotFound       = sessions.ErrSessionNotFound
	ErrSessionOwnedElsewhere = errors.New("session is owned by another instance")
)

// SeatError ties a ledger error to the seat that caused it
type SeatError struct {
	Err error
	Ref SeatRef
}

func (e *SeatError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Ref)
}

func (e *SeatError) Unwrap() error {
	return e.Err
}

func seatErr(err error, ref SeatRef) error {
	return &SeatError{Err: err, Ref: ref}
}

// OffendingSeat extracts the seat ref carried by err, if any
func OffendingSeat(err error) (SeatRef, bool) {
	var se *SeatError
	if errors.As(err, &se) {
		return se.Ref, true
	}
	return SeatRef{}, false
}
