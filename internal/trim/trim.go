// Package trim implements the auto-trim engine: a bounded fixed-point
// iteration that rewrites dialogue lines through an ordered list of
// reduction strategies until the dialogue is no longer high risk.
package trim

import (
	"fmt"

	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/estimate"
	"github.com/alnah/skitfit/internal/profile"
)

// Outcome is the terminal state of an AutoTrim run.
type Outcome int

const (
	running Outcome = iota

	// Converged means the risk dropped below high.
	Converged
	// Exhausted means no strategy could change any line.
	Exhausted
	// Capped means the iteration limit was reached while still high risk.
	Capped
)

var outcomeNames = map[Outcome]string{
	running:   "running",
	Converged: "converged",
	Exhausted: "exhausted",
	Capped:    "capped",
}

// String returns the outcome name.
func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Fix is one logged, human-readable text mutation.
type Fix struct {
	Speaker  string   `json:"speaker" yaml:"speaker"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Detail   string   `json:"detail" yaml:"detail"`
}

// String returns the speaker-tagged description.
func (f Fix) String() string {
	speaker := f.Speaker
	if speaker == "" {
		speaker = "?"
	}
	return speaker + ": " + f.Detail
}

// Result is the output of AutoTrim.
type Result struct {
	Lines      []dialogue.Line   `json:"lines" yaml:"lines"`
	Fixes      []Fix             `json:"fixes" yaml:"fixes"`
	Initial    estimate.Dialogue `json:"-" yaml:"-"`
	Estimate   estimate.Dialogue `json:"estimate" yaml:"estimate"`
	Trimmed    bool              `json:"trimmed" yaml:"trimmed"`
	Outcome    Outcome           `json:"outcome" yaml:"outcome"`
	Iterations int               `json:"iterations" yaml:"iterations"`
}

// AutoFixes returns the change log as plain strings, in application order.
func (r Result) AutoFixes() []string {
	out := make([]string, len(r.Fixes))
	for i, f := range r.Fixes {
		out[i] = f.String()
	}
	return out
}

// Step describes one successful mutation. It is passed to the progress
// callback after the dialogue has been re-estimated.
type Step struct {
	Iteration int
	Strategy  Strategy
	Fixes     []Fix
	Risk      estimate.Risk
	Total     float64
}

// Engine trims dialogues against one timing profile.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	profile       profile.Profile
	estimator     *estimate.Estimator
	maxIterations int
	onProgress    func(Step) // Optional progress callback
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIterations overrides the profile's iteration cap.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithProgress sets a callback invoked after every successful mutation.
func WithProgress(fn func(Step)) Option {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

// New creates an Engine. The estimator is built from the same profile,
// so both stages judge windows identically.
func New(p profile.Profile, opts ...Option) *Engine {
	e := &Engine{
		profile:       p,
		estimator:     estimate.New(p),
		maxIterations: max(p.MaxIterations, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimator returns the estimator shared with the engine.
func (e *Engine) Estimator() *estimate.Estimator {
	return e.estimator
}

// AutoTrim shortens lines until the dialogue is no longer high risk, no
// strategy can change anything, or the iteration cap is reached.
// Medium risk is left alone. The input slice is never modified.
func (e *Engine) AutoTrim(lines []dialogue.Line) Result {
	current := dialogue.Clone(lines)
	initial := e.estimator.Dialogue(current)
	est := initial

	var fixes []Fix
	iterations := 0
	outcome := running

	for outcome == running {
		switch {
		case est.Risk != estimate.RiskHigh:
			outcome = Converged
		case iterations >= e.maxIterations:
			outcome = Capped
		default:
			next, applied, s := e.step(current, est)
			if len(applied) == 0 {
				outcome = Exhausted
				continue
			}
			iterations++
			current = next
			fixes = append(fixes, applied...)
			est = e.estimator.Dialogue(current)

			if e.onProgress != nil {
				e.onProgress(Step{
					Iteration: iterations,
					Strategy:  s,
					Fixes:     applied,
					Risk:      est.Risk,
					Total:     est.Total,
				})
			}
		}
	}

	return Result{
		Lines:      current,
		Fixes:      fixes,
		Initial:    initial,
		Estimate:   est,
		Trimmed:    len(fixes) > 0,
		Outcome:    outcome,
		Iterations: iterations,
	}
}

// step applies the first strategy, in order, that changes any line.
// Every line is tried independently under that strategy.
func (e *Engine) step(lines []dialogue.Line, est estimate.Dialogue) ([]dialogue.Line, []Fix, Strategy) {
	for _, s := range order {
		if next, fixes := e.apply(s, lines, est); len(fixes) > 0 {
			return next, fixes, s
		}
	}
	return lines, nil, 0
}
