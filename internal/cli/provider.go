package cli

import (
	"errors"
	"fmt"

	"github.com/alnah/skitfit/internal/rewrite"
)

// Provider names accepted by --provider.
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
)

// Environment variables holding provider API keys.
const (
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
)

// Provider represents a validated LLM provider for the rewrite fallback.
// Zero value is invalid and must not be used.
// Use ParseProvider to create from user input, or the pre-parsed constants.
type Provider struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Provider{}

// ErrInvalidProvider indicates an invalid provider name was specified.
var ErrInvalidProvider = errors.New("invalid provider")

// Pre-parsed provider constants for use in code.
var (
	DeepSeekProvider = Provider{name: ProviderDeepSeek}
	OpenAIProvider   = Provider{name: ProviderOpenAI}
)

// ParseProvider validates and parses a provider name string.
// Empty string returns an error.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case ProviderDeepSeek:
		return DeepSeekProvider, nil
	case ProviderOpenAI:
		return OpenAIProvider, nil
	case "":
		return Provider{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidProvider)
	default:
		return Provider{}, fmt.Errorf("unknown provider %q (use 'deepseek' or 'openai'): %w", s, ErrInvalidProvider)
	}
}

// String returns the provider name string.
// Returns empty string for zero value.
func (p Provider) String() string {
	return p.name
}

// IsZero returns true if no provider is set.
func (p Provider) IsZero() bool {
	return p.name == ""
}

// IsDeepSeek returns true if this provider is DeepSeek.
func (p Provider) IsDeepSeek() bool {
	return p.name == ProviderDeepSeek
}

// IsOpenAI returns true if this provider is OpenAI.
func (p Provider) IsOpenAI() bool {
	return p.name == ProviderOpenAI
}

// OrDefault returns the provider, or DeepSeekProvider if zero.
func (p Provider) OrDefault() Provider {
	if p.IsZero() {
		return DeepSeekProvider
	}
	return p
}

// Model returns override when set, otherwise the provider's default model.
func (p Provider) Model(override string) string {
	if override != "" {
		return override
	}
	if p.IsOpenAI() {
		return rewrite.DefaultOpenAIModel
	}
	return rewrite.DefaultDeepSeekModel
}

// apiKey resolves the provider's API key from the environment.
func (p Provider) apiKey(getenv func(string) string) (string, error) {
	if p.IsOpenAI() {
		if key := getenv(EnvOpenAIAPIKey); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
	}
	if key := getenv(EnvDeepSeekAPIKey); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w (set it with: export %s=sk-...)", ErrDeepSeekKeyMissing, EnvDeepSeekAPIKey)
}
