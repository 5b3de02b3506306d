package cli

import (
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/rewrite"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ConfigLoader     ConfigLoader
	ShortenerFactory ShortenerFactory
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ShortenerSettings carries what a ShortenerFactory needs to build a client.
type ShortenerSettings struct {
	Provider          Provider
	APIKey            string
	Model             string
	OnRetry           func(attempt int, delay time.Duration, err error)
	RequestsPerMinute int // zero keeps the client default
}

// ShortenerFactory creates LLM-backed shorteners for the rewrite fallback.
type ShortenerFactory interface {
	NewShortener(s ShortenerSettings) (rewrite.Shortener, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithShortenerFactory sets the shortener factory.
func WithShortenerFactory(f ShortenerFactory) EnvOption {
	return func(e *Env) {
		e.ShortenerFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		ConfigLoader:     &defaultConfigLoader{},
		ShortenerFactory: &defaultShortenerFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// deepSeekBaseURL is DeepSeek's OpenAI-compatible endpoint.
const deepSeekBaseURL = "https://api.deepseek.com/v1"

// defaultShortenerFactory implements ShortenerFactory with go-openai.
// DeepSeek shares the wire format, so only the base URL differs.
type defaultShortenerFactory struct{}

func (defaultShortenerFactory) NewShortener(s ShortenerSettings) (rewrite.Shortener, error) {
	if s.APIKey == "" {
		return nil, rewrite.ErrEmptyAPIKey
	}

	cfg := openai.DefaultConfig(s.APIKey)
	if s.Provider.IsDeepSeek() {
		cfg.BaseURL = deepSeekBaseURL
	}

	return rewrite.NewOpenAIShortener(openai.NewClientWithConfig(cfg),
		rewrite.WithModel(s.Provider.Model(s.Model)),
		rewrite.WithRetryHook(s.OnRetry),
		rewrite.WithRequestsPerMinute(s.RequestsPerMinute),
	), nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ ShortenerFactory = (*defaultShortenerFactory)(nil)
)
