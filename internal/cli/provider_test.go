package cli

import (
	"errors"
	"testing"

	"github.com/alnah/skitfit/internal/rewrite"
)

func TestParseProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{"deepseek", DeepSeekProvider, false},
		{"openai", OpenAIProvider, false},
		{"", Provider{}, true},
		{"DeepSeek", Provider{}, true},
		{"anthropic", Provider{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProvider) {
					t.Errorf("ParseProvider(%q) err = %v, want ErrInvalidProvider", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseProvider(%q) = (%v, %v), want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestProvider_Defaults(t *testing.T) {
	t.Parallel()

	if got := (Provider{}).OrDefault(); !got.IsDeepSeek() {
		t.Errorf("zero OrDefault() = %v, want deepseek", got)
	}
	if got := OpenAIProvider.OrDefault(); !got.IsOpenAI() {
		t.Errorf("OrDefault() changed a set provider: %v", got)
	}
	if got := DeepSeekProvider.Model(""); got != rewrite.DefaultDeepSeekModel {
		t.Errorf("deepseek Model() = %q", got)
	}
	if got := OpenAIProvider.Model(""); got != rewrite.DefaultOpenAIModel {
		t.Errorf("openai Model() = %q", got)
	}
	if got := OpenAIProvider.Model("gpt-4o"); got != "gpt-4o" {
		t.Errorf("Model(override) = %q", got)
	}
}

func TestProvider_APIKey(t *testing.T) {
	t.Parallel()

	env := map[string]string{EnvOpenAIAPIKey: "sk-o"}
	getenv := func(k string) string { return env[k] }

	if key, err := OpenAIProvider.apiKey(getenv); err != nil || key != "sk-o" {
		t.Errorf("openai apiKey() = (%q, %v)", key, err)
	}
	if _, err := DeepSeekProvider.apiKey(getenv); !errors.Is(err, ErrDeepSeekKeyMissing) {
		t.Errorf("deepseek apiKey() err = %v, want ErrDeepSeekKeyMissing", err)
	}
	if _, err := OpenAIProvider.apiKey(func(string) string { return "" }); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("openai apiKey() err = %v, want ErrAPIKeyMissing", err)
	}
}
