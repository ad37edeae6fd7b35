package sessions

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSchedule  = errors.New("session must end after it starts")
	ErrMissingTicketing = errors.New("at least one ticket type is required")
)
