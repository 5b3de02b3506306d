package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/skitfit/internal/apierr"
	"github.com/alnah/skitfit/internal/cli"
	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/interrupt"
	"github.com/alnah/skitfit/internal/profile"
	"github.com/alnah/skitfit/internal/rewrite"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitHighRisk   = 5
	ExitRewrite    = 6
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels ctx, a second one exits immediately.
	handler, ctx := interrupt.NewHandler(context.Background())

	rootCmd := newRootCmd(cli.DefaultEnv())

	err := rootCmd.ExecuteContext(ctx)
	handler.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// newRootCmd assembles the command tree around env.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skitfit",
		Short: "Fit short comedic dialogues into an 8-second video",
		Long: `skitfit estimates how long a two-speaker dialogue takes to speak and
trims it until it fits the video's speech budget.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every trim step")

	rootCmd.AddCommand(cli.EstimateCmd(env))
	rootCmd.AddCommand(cli.TrimCmd(env))
	rootCmd.AddCommand(cli.ProfileCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors.
	if isCobraUsageError(err) || errors.Is(err, cli.ErrOutputConflict) {
		return ExitUsage
	}

	// Setup errors.
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, cli.ErrDeepSeekKeyMissing) ||
		errors.Is(err, cli.ErrInvalidProvider) || errors.Is(err, rewrite.ErrEmptyAPIKey) {
		return ExitSetup
	}

	// Validation errors.
	if errors.Is(err, dialogue.ErrInvalid) || errors.Is(err, dialogue.ErrEmpty) ||
		errors.Is(err, dialogue.ErrNotFound) || errors.Is(err, profile.ErrInvalid) ||
		errors.Is(err, cli.ErrInvalidFormat) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable) {
		return ExitValidation
	}

	if errors.Is(err, cli.ErrHighRisk) {
		return ExitHighRisk
	}

	// Rewrite API errors.
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, rewrite.ErrMalformedResponse) {
		return ExitRewrite
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",          // Missing required flag
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"unknown command",        // Subcommand doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
