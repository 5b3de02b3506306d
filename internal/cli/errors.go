package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrDeepSeekKeyMissing indicates DEEPSEEK_API_KEY environment variable is not set.
	ErrDeepSeekKeyMissing = errors.New("DEEPSEEK_API_KEY environment variable not set")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrOutputConflict indicates --output was combined with several inputs.
	ErrOutputConflict = errors.New("--output accepts a single input; use --output-dir for batches")

	// ErrInvalidFormat indicates an unknown --format value.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrHighRisk indicates a dialogue is still high risk under --strict.
	ErrHighRisk = errors.New("dialogue is still high risk")
)
