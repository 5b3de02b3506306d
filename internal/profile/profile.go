// Package profile defines the timing profile shared by the duration
// estimator and the auto-trim engine.
//
// A single Profile value is injected into both components at construction.
// Windows, tolerance and budgets therefore always agree between the stage
// that judges a dialogue and the stage that trims it.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alnah/skitfit/internal/dialogue"
)

// Speaker is the time slot allotted to one speaker token.
type Speaker struct {
	Window   float64 `yaml:"window"`    // seconds of screen time
	MaxWords int     `yaml:"max_words"` // ceiling used by structural truncation
}

// Solo configures the single-speaker variant.
type Solo struct {
	Window   float64 `yaml:"window"`
	Budget   float64 `yaml:"budget"`
	MaxWords int     `yaml:"max_words"`
}

// Pace is the words-per-second table. It is a fixed 3-point table.
type Pace struct {
	Slow   float64 `yaml:"slow"`
	Normal float64 `yaml:"normal"`
	Fast   float64 `yaml:"fast"`
}

// Penalties holds the additive duration adjustments of the estimator.
type Penalties struct {
	LongWordLength    int     `yaml:"long_word_length"`    // runes; longer words are penalized
	LongWord          float64 `yaml:"long_word"`           // seconds per long word
	Filler            float64 `yaml:"filler"`              // seconds per filler word
	Pause             float64 `yaml:"pause"`               // seconds per pause marker
	PunchlineBonus    float64 `yaml:"punchline_bonus"`     // seconds subtracted
	PunchlineMaxWords int     `yaml:"punchline_max_words"` // bonus applies at or below this count
}

// Profile is the complete timing configuration.
type Profile struct {
	Primary       string             `yaml:"primary"`
	Speakers      map[string]Speaker `yaml:"speakers"`
	Fallback      Speaker            `yaml:"fallback"`
	Tolerance     float64            `yaml:"tolerance"`
	MediumMargin  float64            `yaml:"medium_margin"`
	Solo          Solo               `yaml:"solo"`
	Pace          Pace               `yaml:"pace"`
	Penalties     Penalties          `yaml:"penalties"`
	Floor         float64            `yaml:"floor"`
	MaxIterations int                `yaml:"max_iterations"`
}

// Default returns the 8-second two-speaker profile.
func Default() Profile {
	return Profile{
		Primary: "A",
		Speakers: map[string]Speaker{
			"A": {Window: 3.5, MaxWords: 7},
			"B": {Window: 4.0, MaxWords: 8},
		},
		Fallback:     Speaker{Window: 3.5, MaxWords: 7},
		Tolerance:    1.2,
		MediumMargin: 0.5,
		Solo:         Solo{Window: 6.7, Budget: 6.7, MaxWords: 14},
		Pace:         Pace{Slow: 1.8, Normal: 2.3, Fast: 2.8},
		Penalties: Penalties{
			LongWordLength:    8,
			LongWord:          0.15,
			Filler:            0.4,
			Pause:             0.35,
			PunchlineBonus:    0.25,
			PunchlineMaxWords: 3,
		},
		Floor:         0.2,
		MaxIterations: 5,
	}
}

// SpeechBudget returns the sum of all per-speaker windows.
// Keys are summed in sorted order so the result is reproducible.
func (p Profile) SpeechBudget() float64 {
	var total float64
	for _, k := range p.speakerKeys() {
		total += p.Speakers[k].Window
	}
	return total
}

// Window returns the configured window of speaker, or the fallback window.
func (p Profile) Window(speaker string) float64 {
	if s, ok := p.Speakers[speaker]; ok {
		return s.Window
	}
	return p.Fallback.Window
}

// MaxWords returns the configured word ceiling of speaker, or the fallback.
func (p Profile) MaxWords(speaker string) int {
	if s, ok := p.Speakers[speaker]; ok {
		return s.MaxWords
	}
	return p.Fallback.MaxWords
}

// WordsPerSecond returns the rate for pace. Unknown paces use normal.
func (p Profile) WordsPerSecond(pace dialogue.Pace) float64 {
	switch pace {
	case dialogue.PaceSlow:
		return p.Pace.Slow
	case dialogue.PaceFast:
		return p.Pace.Fast
	default:
		return p.Pace.Normal
	}
}

// Validate checks that every value keeps the estimator well defined.
func (p Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Primary) == "" {
		errs = append(errs, errors.New("primary speaker cannot be empty"))
	}
	if len(p.Speakers) == 0 {
		errs = append(errs, errors.New("at least one speaker is required"))
	}
	for _, k := range p.speakerKeys() {
		errs = append(errs, checkSpeaker("speaker "+k, p.Speakers[k]))
	}
	errs = append(errs, checkSpeaker("fallback", p.Fallback))
	errs = append(errs, checkSpeaker("solo", Speaker{Window: p.Solo.Window, MaxWords: p.Solo.MaxWords}))
	if p.Solo.Budget <= 0 {
		errs = append(errs, errors.New("solo budget must be positive"))
	}
	if p.Tolerance < 0 || p.MediumMargin < 0 {
		errs = append(errs, errors.New("tolerance and medium_margin must be non-negative"))
	}
	if p.Pace.Slow <= 0 || p.Pace.Normal <= 0 || p.Pace.Fast <= 0 {
		errs = append(errs, errors.New("pace rates must be positive"))
	}
	pen := p.Penalties
	if pen.LongWord < 0 || pen.Filler < 0 || pen.Pause < 0 || pen.PunchlineBonus < 0 {
		errs = append(errs, errors.New("penalties must be non-negative"))
	}
	if pen.LongWordLength < 1 {
		errs = append(errs, errors.New("long_word_length must be at least 1"))
	}
	if p.Floor <= 0 {
		errs = append(errs, errors.New("floor must be positive"))
	}
	if p.MaxIterations < 1 {
		errs = append(errs, errors.New("max_iterations must be at least 1"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// checkSpeaker returns nil for a usable slot.
// MaxWords below 3 would leave no room for the hook + punchline split.
func checkSpeaker(name string, s Speaker) error {
	if s.Window <= 0 {
		return fmt.Errorf("%s: window must be positive", name)
	}
	if s.MaxWords < 3 {
		return fmt.Errorf("%s: max_words must be at least 3", name)
	}
	return nil
}

func (p Profile) speakerKeys() []string {
	keys := make([]string, 0, len(p.Speakers))
	for k := range p.Speakers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Decode reads a YAML profile from r, layered over Default.
// A speakers block replaces the default speaker map instead of merging
// with it, otherwise custom speaker tokens would inflate the budget.
func Decode(r io.Reader) (Profile, error) {
	p := Default()
	defaults := p.Speakers
	p.Speakers = nil

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if p.Speakers == nil {
		p.Speakers = defaults
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Load reads the YAML profile at path. An empty path returns Default.
func Load(path string) (Profile, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected profile
	if err != nil {
		return Profile{}, fmt.Errorf("cannot read profile: %w", err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Marshal returns the profile as YAML.
func (p Profile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return buf.Bytes(), nil
}
