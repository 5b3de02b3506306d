package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/skitfit/internal/apierr"
	"github.com/alnah/skitfit/internal/cli"
	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/profile"
	"github.com/alnah/skitfit/internal/rewrite"
)

// allSentinelErrors lists every sentinel that maps to a dedicated exit code.
// This ensures exhaustive coverage and serves as documentation.
var allSentinelErrors = []struct {
	err      error
	exitCode int
}{
	// Usage
	{cli.ErrOutputConflict, ExitUsage},

	// Setup
	{cli.ErrAPIKeyMissing, ExitSetup},
	{cli.ErrDeepSeekKeyMissing, ExitSetup},
	{cli.ErrInvalidProvider, ExitSetup},
	{rewrite.ErrEmptyAPIKey, ExitSetup},

	// Validation
	{dialogue.ErrInvalid, ExitValidation},
	{dialogue.ErrEmpty, ExitValidation},
	{dialogue.ErrNotFound, ExitValidation},
	{profile.ErrInvalid, ExitValidation},
	{cli.ErrInvalidFormat, ExitValidation},
	{cli.ErrOutputExists, ExitValidation},
	{config.ErrNotDirectory, ExitValidation},
	{config.ErrNotWritable, ExitValidation},

	// Strict
	{cli.ErrHighRisk, ExitHighRisk},

	// Rewrite
	{apierr.ErrRateLimit, ExitRewrite},
	{apierr.ErrQuotaExceeded, ExitRewrite},
	{apierr.ErrTimeout, ExitRewrite},
	{apierr.ErrAuthFailed, ExitRewrite},
	{apierr.ErrBadRequest, ExitRewrite},
	{rewrite.ErrMalformedResponse, ExitRewrite},
}

func TestExitCode_Sentinels(t *testing.T) {
	t.Parallel()

	for _, tt := range allSentinelErrors {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			if got := exitCode(tt.err); got != tt.exitCode {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.exitCode)
			}
			wrapped := fmt.Errorf("skit.yaml: %w", tt.err)
			if got := exitCode(wrapped); got != tt.exitCode {
				t.Errorf("exitCode(wrapped %v) = %d, want %d", tt.err, got, tt.exitCode)
			}
		})
	}
}

func TestExitCode_Special(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"interrupt", fmt.Errorf("rewrite failed: %w", context.Canceled), ExitInterrupt},
		{"interrupt wins over rewrite error", fmt.Errorf("%w: %w", apierr.ErrTimeout, context.Canceled), ExitInterrupt},
		{"cobra args", errors.New("accepts 1 arg(s), received 0"), ExitUsage},
		{"cobra flag", errors.New("unknown flag: --nope"), ExitUsage},
		{"unknown error", errors.New("disk on fire"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRootCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "skit.yaml")
	content := "lines:\n  - speaker: A\n    text: \"Привет!\"\n  - speaker: B\n    text: \"Ок.\"\n"
	if err := os.WriteFile(in, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) (string, error) {
		var out, errOut bytes.Buffer
		env := cli.NewEnv(
			cli.WithStdout(&out),
			cli.WithStderr(&errOut),
			cli.WithGetenv(func(string) string { return "" }),
			cli.WithConfigLoader(staticConfig{}),
		)
		root := newRootCmd(env)
		root.SetArgs(args)
		root.SetOut(&out)
		root.SetErr(&errOut)
		err := root.ExecuteContext(context.Background())
		return out.String(), err
	}

	t.Run("estimate through the root command", func(t *testing.T) {
		t.Parallel()

		out, err := run("estimate", in, "--format", "yaml", "--verbose")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(out, "risk: low") {
			t.Errorf("output =\n%s", out)
		}
	})

	t.Run("usage errors map to exit 2", func(t *testing.T) {
		t.Parallel()

		_, err := run("estimate")
		if got := exitCode(err); got != ExitUsage {
			t.Errorf("exitCode(%v) = %d, want %d", err, got, ExitUsage)
		}
	})

	t.Run("missing dialogue maps to exit 4", func(t *testing.T) {
		t.Parallel()

		_, err := run("trim", filepath.Join(dir, "missing.yaml"))
		if got := exitCode(err); got != ExitValidation {
			t.Errorf("exitCode(%v) = %d, want %d", err, got, ExitValidation)
		}
	})

	t.Run("rewrite without key maps to exit 3", func(t *testing.T) {
		t.Parallel()

		_, err := run("trim", in, "--rewrite", "--provider", "openai")
		if got := exitCode(err); got != ExitSetup {
			t.Errorf("exitCode(%v) = %d, want %d", err, got, ExitSetup)
		}
	})
}

// staticConfig is a ConfigLoader that never touches the user's config.
type staticConfig struct{}

func (staticConfig) Load() (config.Config, error) { return config.Config{}, nil }
