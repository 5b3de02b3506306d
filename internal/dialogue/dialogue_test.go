package dialogue_test

// Notes:
// - Parse accepts JSON too because JSON is a YAML subset; both shapes are
//   covered by the same table.
// - Load error paths use t.TempDir so nothing depends on the working tree.

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alnah/skitfit/internal/dialogue"
)

// ---------------------------------------------------------------------------
// ParsePace
// ---------------------------------------------------------------------------

func TestParsePace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want dialogue.Pace
	}{
		{"slow", dialogue.PaceSlow},
		{"  FAST ", dialogue.PaceFast},
		{"normal", dialogue.PaceNormal},
		{"", dialogue.PaceNormal},
		{"brisk", dialogue.PaceNormal},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := dialogue.ParsePace(tt.in); got != tt.want {
				t.Errorf("ParsePace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    []dialogue.Line
		wantErr error
	}{
		{
			name: "yaml",
			data: "lines:\n  - speaker: A\n    text: Привет!\n    pace: fast\n  - speaker: B\n    text: Ок.\n",
			want: []dialogue.Line{
				{Speaker: "A", Text: "Привет!", Pace: dialogue.PaceFast},
				{Speaker: "B", Text: "Ок.", Pace: dialogue.PaceNormal},
			},
		},
		{
			name: "json",
			data: `{"lines":[{"speaker":" A ","text":"Это база!","pace":"SLOW"}]}`,
			want: []dialogue.Line{
				{Speaker: "A", Text: "Это база!", Pace: dialogue.PaceSlow},
			},
		},
		{
			name: "unknown pace falls back",
			data: "lines:\n  - speaker: B\n    text: Да\n    pace: whisper\n",
			want: []dialogue.Line{
				{Speaker: "B", Text: "Да", Pace: dialogue.PaceNormal},
			},
		},
		{name: "no lines", data: "lines: []\n", wantErr: dialogue.ErrEmpty},
		{name: "empty document", data: "", wantErr: dialogue.ErrEmpty},
		{name: "malformed", data: "lines: [\n", wantErr: dialogue.ErrInvalid},
		{name: "wrong shape", data: "lines: hello\n", wantErr: dialogue.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dialogue.Parse([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Lines, tt.want) {
				t.Errorf("Parse() lines = %+v, want %+v", got.Lines, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "skit.yaml")
		if err := os.WriteFile(path, []byte("lines:\n  - speaker: A\n    text: Привет!\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		d, err := dialogue.Load(path)
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if len(d.Lines) != 1 || d.Lines[0].Text != "Привет!" {
			t.Errorf("Load() lines = %+v", d.Lines)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := dialogue.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, dialogue.ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.yaml")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := dialogue.Load(path)
		if !errors.Is(err, dialogue.ErrEmpty) {
			t.Errorf("Load() error = %v, want ErrEmpty", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Clone / Speakers
// ---------------------------------------------------------------------------

func TestClone(t *testing.T) {
	t.Parallel()

	if dialogue.Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}

	orig := []dialogue.Line{{Speaker: "A", Text: "Привет"}}
	cp := dialogue.Clone(orig)
	cp[0].Text = "Пока"
	if orig[0].Text != "Привет" {
		t.Errorf("Clone() shares storage: original changed to %q", orig[0].Text)
	}
}

func TestSpeakers(t *testing.T) {
	t.Parallel()

	lines := []dialogue.Line{
		{Speaker: "B"}, {Speaker: "A"}, {Speaker: "B"}, {Speaker: "C"},
	}
	got := dialogue.Speakers(lines)
	want := []string{"B", "A", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Speakers() = %v, want %v", got, want)
	}
}
