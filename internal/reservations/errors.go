package reservations

import (
	"errors"

	"ticketcore/internal/seats"
)

var (
	ErrSeatTaken          = errors.New("seat is held by another holder")
	ErrInvalidHolderLimit = errors.New("holder seat limit exceeded")
	ErrInvalidLimit       = errors.New("holder seat limit must be positive")

	ErrCheckoutInProgress = seats.ErrCheckoutLocked
)
