// Package dialogue holds the line model shared by the estimator, the
// trim engine and the CLI, plus YAML/JSON document loading.
package dialogue

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pace is the delivery speed of a line.
type Pace string

// Supported paces. Anything else is treated as PaceNormal.
const (
	PaceSlow   Pace = "slow"
	PaceNormal Pace = "normal"
	PaceFast   Pace = "fast"
)

// ParsePace normalizes s into a Pace.
// Unknown and empty values fall back to PaceNormal; pace is advisory
// and never a reason to reject a dialogue.
func ParsePace(s string) Pace {
	switch p := Pace(strings.ToLower(strings.TrimSpace(s))); p {
	case PaceSlow, PaceNormal, PaceFast:
		return p
	default:
		return PaceNormal
	}
}

// String returns the pace name.
func (p Pace) String() string {
	return string(p)
}

// Line is one spoken line of the dialogue.
type Line struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
	Pace    Pace   `json:"pace,omitempty" yaml:"pace,omitempty"`
}

// Dialogue is the on-disk document shape.
type Dialogue struct {
	Lines []Line `json:"lines" yaml:"lines"`
}

// Clone returns an independent copy of lines.
// Line holds only value fields, so a slice copy is a deep copy.
func Clone(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Speakers returns the distinct speaker tokens in first-seen order.
func Speakers(lines []Line) []string {
	seen := make(map[string]bool, len(lines))
	var out []string
	for _, l := range lines {
		if seen[l.Speaker] {
			continue
		}
		seen[l.Speaker] = true
		out = append(out, l.Speaker)
	}
	return out
}

// Parse decodes a YAML or JSON dialogue document.
// Speakers are trimmed and paces normalized with ParsePace.
func Parse(data []byte) (Dialogue, error) {
	var d Dialogue
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dialogue{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(d.Lines) == 0 {
		return Dialogue{}, ErrEmpty
	}
	for i := range d.Lines {
		d.Lines[i].Speaker = strings.TrimSpace(d.Lines[i].Speaker)
		d.Lines[i].Pace = ParsePace(string(d.Lines[i].Pace))
	}
	return d, nil
}

// Load reads and parses the dialogue file at path.
func Load(path string) (Dialogue, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Dialogue{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return Dialogue{}, fmt.Errorf("cannot read dialogue: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return Dialogue{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
