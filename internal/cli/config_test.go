package cli

// Notes:
// - config set/get/list touch the real config file, isolated with
//   t.Setenv("XDG_CONFIG_HOME"); these tests are NOT parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/skitfit/internal/config"
)

func TestRunConfigSetGet(t *testing.T) {
	// NO t.Parallel() - uses t.Setenv

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"provider", config.KeyProvider, "openai", "openai"},
		{"log level is normalized", config.KeyLogLevel, "DEBUG", "debug"},
		{"model is trimmed", config.KeyModel, "  gpt-4o  ", "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			te := newTestEnv(config.Config{}, nil)

			if err := runConfigSet(te.Env, tt.key, tt.value); err != nil {
				t.Fatalf("runConfigSet() error = %v", err)
			}
			if err := runConfigGet(te.Env, tt.key); err != nil {
				t.Fatalf("runConfigGet() error = %v", err)
			}
			if got := strings.TrimSpace(te.stdout.String()); got != tt.want {
				t.Errorf("config get %s = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRunConfigSet_Validation(t *testing.T) {
	// NO t.Parallel() - uses t.Setenv

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	te := newTestEnv(config.Config{}, nil)

	t.Run("unknown key", func(t *testing.T) {
		err := runConfigSet(te.Env, "template", "x")
		if err == nil || !strings.Contains(err.Error(), "unknown config key") {
			t.Errorf("err = %v, want unknown key error", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if err := runConfigSet(te.Env, config.KeyProvider, "claude"); !errors.Is(err, ErrInvalidProvider) {
			t.Errorf("err = %v, want ErrInvalidProvider", err)
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		if err := runConfigSet(te.Env, config.KeyLogLevel, "loud"); err == nil {
			t.Error("err = nil, want invalid log-level")
		}
	})

	t.Run("missing profile file", func(t *testing.T) {
		if err := runConfigSet(te.Env, config.KeyProfile, filepath.Join(t.TempDir(), "none.yaml")); err == nil {
			t.Error("err = nil, want invalid profile")
		}
	})

	t.Run("output-dir is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "trimmed")
		if err := runConfigSet(te.Env, config.KeyOutputDir, dir); err != nil {
			t.Fatalf("runConfigSet() error = %v", err)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("output-dir %q was not created", dir)
		}
	})
}

func TestRunConfigList(t *testing.T) {
	// NO t.Parallel() - uses t.Setenv

	t.Run("empty config lists available keys", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		te := newTestEnv(config.Config{}, nil)

		if err := runConfigList(te.Env); err != nil {
			t.Fatalf("runConfigList() error = %v", err)
		}
		out := te.stdout.String()
		if !strings.Contains(out, "No configuration set.") || !strings.Contains(out, "log-level") {
			t.Errorf("output =\n%s", out)
		}
	})

	t.Run("file values first, env values marked", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		te := newTestEnv(config.Config{}, map[string]string{"SKITFIT_MODEL": "deepseek-reasoner"})

		if err := config.Save(config.KeyProvider, "deepseek"); err != nil {
			t.Fatal(err)
		}
		if err := runConfigList(te.Env); err != nil {
			t.Fatalf("runConfigList() error = %v", err)
		}

		want := "provider=deepseek\nmodel=deepseek-reasoner (from env)\n"
		if got := te.stdout.String(); got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})
}
