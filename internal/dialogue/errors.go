package dialogue

import "errors"

var (
	// ErrInvalid indicates a dialogue document could not be decoded.
	ErrInvalid = errors.New("invalid dialogue")

	// ErrEmpty indicates a dialogue document contains no lines.
	ErrEmpty = errors.New("dialogue has no lines")

	// ErrNotFound indicates the dialogue file does not exist.
	ErrNotFound = errors.New("dialogue file not found")
)
