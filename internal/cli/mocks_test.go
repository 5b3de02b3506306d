package cli

import (
	"context"
	"sync"

	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/rewrite"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	cfg config.Config
	err error
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	return m.cfg, m.err
}

// ---------------------------------------------------------------------------
// Mock ShortenerFactory / Shortener
// ---------------------------------------------------------------------------

type mockShortenerFactory struct {
	ShortenFunc func(ctx context.Context, lines []dialogue.Line, targets []rewrite.Target) ([]dialogue.Line, error)

	mu       sync.Mutex
	settings []ShortenerSettings
	calls    int
}

func (m *mockShortenerFactory) NewShortener(s ShortenerSettings) (rewrite.Shortener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = append(m.settings, s)
	return m, nil
}

func (m *mockShortenerFactory) Shorten(ctx context.Context, lines []dialogue.Line, targets []rewrite.Target) ([]dialogue.Line, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.ShortenFunc != nil {
		return m.ShortenFunc(ctx, lines, targets)
	}
	return dialogue.Clone(lines), nil
}

func (m *mockShortenerFactory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockShortenerFactory) Settings() []ShortenerSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ShortenerSettings(nil), m.settings...)
}

// Compile-time interface verification.
var (
	_ ConfigLoader      = (*mockConfigLoader)(nil)
	_ ShortenerFactory  = (*mockShortenerFactory)(nil)
	_ rewrite.Shortener = (*mockShortenerFactory)(nil)
)
