package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/alnah/skitfit/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

type testEnv struct {
	*Env
	stdout    *syncBuffer
	stderr    *syncBuffer
	shortener *mockShortenerFactory
}

// newTestEnv builds an Env with buffered output, a fixed config, and an
// environment holding only vars.
func newTestEnv(cfg config.Config, vars map[string]string) *testEnv {
	te := &testEnv{
		stdout:    &syncBuffer{},
		stderr:    &syncBuffer{},
		shortener: &mockShortenerFactory{},
	}
	te.Env = NewEnv(
		WithStdout(te.stdout),
		WithStderr(te.stderr),
		WithGetenv(func(k string) string { return vars[k] }),
		WithConfigLoader(&mockConfigLoader{cfg: cfg}),
		WithShortenerFactory(te.shortener),
	)
	return te
}

// newTestCmd returns a bare command carrying the root's persistent flag.
func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("verbose", false, "")
	return cmd
}

// ---------------------------------------------------------------------------
// Dialogue fixtures
// ---------------------------------------------------------------------------

// Fixture texts. Durations are at normal pace with the default profile.
const (
	// 12 words, overflows speaker A's window.
	longA = "Мы пошли в магазин купить хлеба и молока но там закрыто было"
	// 10 + 11 words: both fit their windows but total 9.13s exceeds the budget.
	crowdedA = "Мы вчера с другом пошли в кино на новый фильм"
	crowdedB = "А там в зале сидел наш сосед и громко ел попкорн"
)

// writeDialogue writes a YAML dialogue file and returns its path.
// Each pair is speaker, text.
func writeDialogue(t *testing.T, dir, name string, pairs ...[2]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("lines:\n")
	for _, p := range pairs {
		text, _ := json.Marshal(p[1])
		b.WriteString("  - speaker: " + p[0] + "\n    text: " + string(text) + "\n")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("failed to write dialogue: %v", err)
	}
	return path
}

// resultJSON mirrors the fields of trimDoc the tests inspect.
type resultJSON struct {
	Lines []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	} `json:"lines"`
	AutoFixes []string `json:"auto_fixes"`
	Estimate  struct {
		Total float64 `json:"total"`
		Risk  string  `json:"risk"`
	} `json:"estimate"`
	Trimmed    bool   `json:"trimmed"`
	Outcome    string `json:"outcome"`
	Iterations int    `json:"iterations"`
	Rewritten  bool   `json:"rewritten"`
}

func decodeResult(t *testing.T, data string) resultJSON {
	t.Helper()
	var r resultJSON
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("output is not a JSON result: %v\n%s", err, data)
	}
	return r
}
