package venues

import "errors"

var (
	// ErrLayoutNotFound is returned when no layout exists for a venue id
	ErrLayoutNotFound = errors.New("venue layout not found")

	// ErrInvalidLayout wraps every structural problem found while validating a layout
	ErrInvalidLayout = errors.New("invalid venue layout")

	// ErrLayoutExists is returned when registering a venue id twice
	ErrLayoutExists = errors.New("venue layout already exists")
)
