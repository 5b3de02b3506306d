package rewrite

import "errors"

// Sentinel errors for the rewrite fallback.
var (
	// ErrMalformedResponse indicates the model reply could not be mapped back
	// onto the input lines (bad JSON, wrong line count, or reordered speakers).
	ErrMalformedResponse = errors.New("malformed rewrite response")

	// ErrEmptyAPIKey indicates the provider API key is empty.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
)
