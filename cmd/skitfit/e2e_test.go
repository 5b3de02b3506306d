//go:build e2e

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// TestE2E_CLIExitCodes builds the binary and checks process exit codes.
// Run with: go test -tags e2e ./cmd/skitfit
func TestE2E_CLIExitCodes(t *testing.T) {
	binaryPath := filepath.Join(t.TempDir(), "skitfit")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}

	dir := t.TempDir()
	crowded := filepath.Join(dir, "crowded.yaml")
	content := `lines:
  - speaker: A
    text: "Мы вчера с другом пошли в кино на новый фильм"
  - speaker: B
    text: "А там в зале сидел наш сосед и громко ел попкорн"
`
	if err := os.WriteFile(crowded, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{"help returns 0", []string{"--help"}, ExitOK},
		{"version returns 0", []string{"--version"}, ExitOK},
		{"missing argument returns 2", []string{"estimate"}, ExitUsage},
		{"unknown flag returns 2", []string{"trim", crowded, "--unknown-flag"}, ExitUsage},
		{"file not found returns 4", []string{"estimate", "nonexistent.yaml"}, ExitValidation},
		{"bad format returns 4", []string{"estimate", crowded, "--format", "xml"}, ExitValidation},
		{"strict high risk returns 5", []string{"trim", crowded, "--strict"}, ExitHighRisk},
		{"API key missing returns 3", []string{"trim", crowded, "--rewrite"}, ExitSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			cmd.Dir = t.TempDir() // no stray .env
			cmd.Env = []string{
				"PATH=" + os.Getenv("PATH"),
				"HOME=" + t.TempDir(),
				"XDG_CONFIG_HOME=" + t.TempDir(),
			}

			err := cmd.Run()

			gotExit := 0
			if err != nil {
				exitErr, ok := err.(*exec.ExitError)
				if !ok {
					t.Fatalf("unexpected error type: %v", err)
				}
				gotExit = exitErr.ExitCode()
			}
			if gotExit != tt.wantExit {
				t.Errorf("exit code = %d, want %d", gotExit, tt.wantExit)
			}
		})
	}
}
