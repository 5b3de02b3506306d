package profile

import "errors"

// ErrInvalid indicates a timing profile failed validation or decoding.
var ErrInvalid = errors.New("invalid timing profile")
