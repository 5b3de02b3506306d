// Package estimate predicts how long dialogue lines take to speak and
// classifies whether a dialogue fits its time budget.
//
// The model is a closed-form heuristic: a words-per-second base plus
// additive penalties. It is pure and deterministic and never fails.
package estimate

import (
	"strconv"
	"strings"

	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/format"
	"github.com/alnah/skitfit/internal/lexicon"
	"github.com/alnah/skitfit/internal/profile"
)

// Risk is the discrete likelihood that a dialogue overruns its budget.
type Risk string

// Risk levels, ordered.
const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Line is the estimate of a single line of text.
type Line struct {
	Duration  float64  `json:"duration" yaml:"duration"`
	WordCount int      `json:"word_count" yaml:"word_count"`
	Details   []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// LineResult is a line estimate placed within its speaker window.
type LineResult struct {
	Index      int      `json:"index" yaml:"index"`
	Speaker    string   `json:"speaker" yaml:"speaker"`
	Duration   float64  `json:"duration" yaml:"duration"`
	WordCount  int      `json:"word_count" yaml:"word_count"`
	Details    []string `json:"details,omitempty" yaml:"details,omitempty"`
	Window     float64  `json:"window" yaml:"window"`
	MaxWords   int      `json:"max_words" yaml:"max_words"`
	OverWindow bool     `json:"over_window" yaml:"over_window"`
	Tight      bool     `json:"tight" yaml:"tight"`
}

// Dialogue is the aggregate estimate of a whole dialogue.
type Dialogue struct {
	Total       float64      `json:"total" yaml:"total"`
	Budget      float64      `json:"speech_budget" yaml:"speech_budget"`
	Solo        bool         `json:"solo" yaml:"solo"`
	PerLine     []LineResult `json:"per_line" yaml:"per_line"`
	Risk        Risk         `json:"risk" yaml:"risk"`
	Notes       []string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Suggestions []string     `json:"trimming_suggestions,omitempty" yaml:"trimming_suggestions,omitempty"`
}

// OverWindow reports whether any line overflows its window plus tolerance.
func (d Dialogue) OverWindow() bool {
	for _, l := range d.PerLine {
		if l.OverWindow {
			return true
		}
	}
	return false
}

// Estimator computes line and dialogue estimates for one profile.
// It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	profile profile.Profile
}

// New creates an Estimator for p.
func New(p profile.Profile) *Estimator {
	return &Estimator{profile: p}
}

// Profile returns the profile the estimator was built with.
func (e *Estimator) Profile() profile.Profile {
	return e.profile
}

// Line estimates how long text takes to speak at pace.
func (e *Estimator) Line(text string, pace dialogue.Pace) Line {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Line{}
	}

	pen := e.profile.Penalties
	words := lexicon.Words(trimmed)
	duration := float64(len(words)) / e.profile.WordsPerSecond(pace)
	var details []string

	long, fillers := 0, 0
	for _, w := range words {
		if lexicon.IsLongWord(w, pen.LongWordLength) {
			long++
		}
		if lexicon.IsFiller(w) {
			fillers++
		}
	}
	if long > 0 {
		p := float64(long) * pen.LongWord
		duration += p
		details = append(details, format.Words(long)+" longer than "+strconv.Itoa(pen.LongWordLength)+" letters: "+format.Delta(p))
	}
	if fillers > 0 {
		p := float64(fillers) * pen.Filler
		duration += p
		details = append(details, "filler "+format.Words(fillers)+": "+format.Delta(p))
	}
	if pauses := lexicon.CountPauses(trimmed); pauses > 0 {
		p := float64(pauses) * pen.Pause
		duration += p
		details = append(details, strconv.Itoa(pauses)+" pause marker(s): "+format.Delta(p))
	}
	if len(words) <= pen.PunchlineMaxWords && strings.HasSuffix(trimmed, "!") {
		duration -= pen.PunchlineBonus
		details = append(details, "short punchline bonus: "+format.Delta(-pen.PunchlineBonus))
	}

	return Line{
		Duration:  format.Round2(max(e.profile.Floor, duration)),
		WordCount: len(words),
		Details:   details,
	}
}

// Dialogue estimates every line, places each in its window and
// classifies the overall risk.
func (e *Estimator) Dialogue(lines []dialogue.Line) Dialogue {
	p := e.profile
	solo := isSolo(p, lines)
	budget := p.SpeechBudget()
	if solo {
		budget = p.Solo.Budget
	}

	d := Dialogue{
		Budget:  budget,
		Solo:    solo,
		PerLine: make([]LineResult, 0, len(lines)),
	}

	var total float64
	for i, l := range lines {
		le := e.Line(l.Text, l.Pace)
		window, maxWords := p.Window(l.Speaker), p.MaxWords(l.Speaker)
		if solo {
			window, maxWords = p.Solo.Window, p.Solo.MaxWords
		}
		over := le.Duration > window+p.Tolerance
		d.PerLine = append(d.PerLine, LineResult{
			Index:      i,
			Speaker:    l.Speaker,
			Duration:   le.Duration,
			WordCount:  le.WordCount,
			Details:    le.Details,
			Window:     window,
			MaxWords:   maxWords,
			OverWindow: over,
			Tight:      !over && le.Duration > window,
		})
		total += le.Duration
	}

	d.Total = format.Round2(total)
	d.Risk = classify(d.Total, budget, p.MediumMargin, d.OverWindow())
	d.Notes = notes(d, p.Tolerance)
	if d.Risk != RiskLow {
		d.Suggestions = suggestions(lines, d, p.Penalties.LongWordLength)
	}
	return d
}

// isSolo reports whether lines is a single line by the primary speaker.
func isSolo(p profile.Profile, lines []dialogue.Line) bool {
	return len(lines) == 1 && lines[0].Speaker == p.Primary
}

// epsilon absorbs float noise left after rounding to two decimals.
const epsilon = 1e-9

// classify maps a total and the overflow flag to a risk level.
// Overflow is checked before the margin. Both thresholds are inclusive,
// so a total exactly at the budget is already high.
func classify(total, budget, margin float64, overWindow bool) Risk {
	switch {
	case overWindow || total >= budget-epsilon:
		return RiskHigh
	case total >= budget-margin-epsilon:
		return RiskMedium
	default:
		return RiskLow
	}
}
