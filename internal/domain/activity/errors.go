package activity

import "errors"

var (
	// ErrInvalidInput indicates an invalid activity entry or listing.
	ErrInvalidInput = errors.New("invalid activity input")
)
