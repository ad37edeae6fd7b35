package catalog

import "errors"

var (
	ErrTicketTypeNotFound  = errors.New("ticket type not found")
	ErrDuplicateTicketType = errors.New("ticket type already defined for section")
	ErrUnknownSection      = errors.New("section does not exist in venue layout")
	ErrInvalidPrice        = errors.New("price must be a non-negative amount")
)
