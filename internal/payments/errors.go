package payments

import "errors"

var (
	ErrUnknownEventKind = errors.New("unknown payment event kind")
	ErrMissingBookingID = errors.New("payment event without booking id")
	ErrInvalidSignature = errors.New("invalid webhook secret")
	// ErrHandledElsewhere is returned by a sink whose booking runs on another instance
	ErrHandledElsewhere = errors.New("payment event belongs to a booking running on another instance")
)
