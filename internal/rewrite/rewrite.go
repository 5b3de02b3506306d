// Package rewrite asks an OpenAI-compatible chat model to shorten dialogue
// lines that the rule-based trimmer could not bring under budget.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/alnah/skitfit/internal/apierr"
	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/estimate"
	"github.com/alnah/skitfit/internal/profile"
)

// Target is the limit one speaker's lines should be rewritten to.
type Target struct {
	Speaker  string
	MaxWords int
	Window   float64
}

// Targets lists one Target per speaker in first-seen order.
func Targets(lines []dialogue.Line, p profile.Profile) []Target {
	speakers := dialogue.Speakers(lines)
	out := make([]Target, 0, len(speakers))
	for _, s := range speakers {
		out = append(out, Target{Speaker: s, MaxWords: p.MaxWords(s), Window: p.Window(s)})
	}
	return out
}

// OverBudget lists targets only for speakers whose lines overflow their
// window. When no single line overflows every speaker is returned, since
// the dialogue as a whole is too long.
func OverBudget(lines []dialogue.Line, est estimate.Dialogue, p profile.Profile) []Target {
	all := Targets(lines, p)
	if !est.OverWindow() {
		return all
	}

	over := make(map[string]bool)
	for _, lr := range est.PerLine {
		if lr.OverWindow {
			over[lr.Speaker] = true
		}
	}
	return slices.DeleteFunc(all, func(t Target) bool { return !over[t.Speaker] })
}

// Shortener rewrites dialogue lines to fit the given targets.
type Shortener interface {
	Shorten(ctx context.Context, lines []dialogue.Line, targets []Target) ([]dialogue.Line, error)
}

// chatCompleter is satisfied by *openai.Client.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ Shortener = (*OpenAIShortener)(nil)

// OpenAIShortener shortens lines through a chat completion endpoint.
// DeepSeek is reached through the same client with a different base URL.
type OpenAIShortener struct {
	client     chatCompleter
	model      string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	onRetry    func(attempt int, delay time.Duration, err error)
	rpm        int
	limiter    *rate.Limiter // shared by every Shorten call, retries included
}

// Option configures an OpenAIShortener.
type Option func(*OpenAIShortener)

const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultDeepSeekModel = "deepseek-chat"

	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 20 * time.Second
	maxOutputTokens   = 1024

	// DefaultRequestsPerMinute keeps parallel batches under common
	// free-tier limits.
	DefaultRequestsPerMinute = 50
)

// WithModel sets the chat model. Empty values are ignored.
func WithModel(model string) Option {
	return func(s *OpenAIShortener) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(s *OpenAIShortener) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(s *OpenAIShortener) {
		if base > 0 {
			s.baseDelay = base
		}
		if max > 0 {
			s.maxDelay = max
		}
	}
}

// WithRetryHook registers a callback invoked before each retry.
func WithRetryHook(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(s *OpenAIShortener) {
		s.onRetry = fn
	}
}

// WithRequestsPerMinute caps the request rate across concurrent Shorten
// calls. Non-positive values are ignored.
func WithRequestsPerMinute(n int) Option {
	return func(s *OpenAIShortener) {
		if n > 0 {
			s.rpm = n
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) Option {
	return func(s *OpenAIShortener) {
		s.client = cc
	}
}

// NewOpenAIShortener creates a shortener backed by client.
func NewOpenAIShortener(client *openai.Client, opts ...Option) *OpenAIShortener {
	s := &OpenAIShortener{
		model:      DefaultOpenAIModel,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		rpm:        DefaultRequestsPerMinute,
	}
	// A nil *openai.Client must not become a non-nil interface.
	if client != nil {
		s.client = client
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.rpm)), 1)
	return s
}

type wireLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type wireDialogue struct {
	Lines []wireLine `json:"lines"`
}

// Shorten sends lines to the model and maps the reply back onto them.
// The reply must keep line count and speaker order; pace is carried over
// from the input. Transient API errors are retried with backoff.
func (s *OpenAIShortener) Shorten(ctx context.Context, lines []dialogue.Line, targets []Target) ([]dialogue.Line, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	in := wireDialogue{Lines: make([]wireLine, len(lines))}
	for i, l := range lines {
		in.Lines[i] = wireLine{Speaker: l.Speaker, Text: l.Text}
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode lines: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildPrompt(targets)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	}

	policy := apierr.Policy{
		MaxRetries: s.maxRetries,
		BaseDelay:  s.baseDelay,
		MaxDelay:   s.maxDelay,
		OnRetry:    s.onRetry,
	}
	content, err := apierr.Do(ctx, policy, func() (string, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait cancelled: %w", err)
		}
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", apierr.Classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response: %w", ErrMalformedResponse)
		}
		return resp.Choices[0].Message.Content, nil
	}, apierr.IsRetryable)
	if err != nil {
		return nil, err
	}

	return decodeLines(content, lines)
}

// decodeLines parses the model reply and aligns it with the original lines.
func decodeLines(content string, original []dialogue.Line) ([]dialogue.Line, error) {
	var out wireDialogue
	if err := json.Unmarshal([]byte(stripFence(content)), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(out.Lines) != len(original) {
		return nil, fmt.Errorf("%w: got %d lines, want %d", ErrMalformedResponse, len(out.Lines), len(original))
	}

	result := make([]dialogue.Line, len(original))
	for i, wl := range out.Lines {
		speaker := strings.TrimSpace(wl.Speaker)
		if speaker != original[i].Speaker {
			return nil, fmt.Errorf("%w: line %d speaker %q, want %q",
				ErrMalformedResponse, i+1, speaker, original[i].Speaker)
		}
		text := strings.TrimSpace(wl.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: line %d is empty", ErrMalformedResponse, i+1)
		}
		result[i] = dialogue.Line{Speaker: speaker, Text: text, Pace: original[i].Pace}
	}
	return result, nil
}

// stripFence removes a surrounding markdown code fence some models add
// even in JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
