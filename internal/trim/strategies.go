package trim

import (
	"fmt"
	"strings"

	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/estimate"
	"github.com/alnah/skitfit/internal/format"
	"github.com/alnah/skitfit/internal/lexicon"
)

// Strategy identifies one reduction step.
type Strategy int

// Strategies, from least to most destructive.
const (
	CapPauses Strategy = iota
	StripPauses
	RemoveFillers
	ShortenWords
	Truncate
)

// order is the scan order of every iteration.
var order = []Strategy{CapPauses, StripPauses, RemoveFillers, ShortenWords, Truncate}

var strategyNames = map[Strategy]string{
	CapPauses:     "cap-pauses",
	StripPauses:   "strip-pauses",
	RemoveFillers: "remove-fillers",
	ShortenWords:  "shorten-words",
	Truncate:      "truncate",
}

// String returns the strategy name.
func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// MarshalText encodes the strategy as its name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// apply runs strategy s over every line and returns the new lines with
// one fix per changed line.
func (e *Engine) apply(s Strategy, lines []dialogue.Line, est estimate.Dialogue) ([]dialogue.Line, []Fix) {
	next := dialogue.Clone(lines)
	var overflowing map[string]bool
	if s == Truncate {
		overflowing = overflowingSpeakers(est)
	}

	var fixes []Fix
	for i, l := range next {
		var (
			text   string
			detail string
			ok     bool
		)
		switch s {
		case CapPauses:
			text, detail, ok = capPausesFix(l.Text)
		case StripPauses:
			text, detail, ok = stripPausesFix(l.Text)
		case RemoveFillers:
			text, detail, ok = removeFillersFix(l.Text)
		case ShortenWords:
			text, detail, ok = shortenWordsFix(l.Text)
		case Truncate:
			if overflowing[l.Speaker] && i < len(est.PerLine) {
				text, detail, ok = e.truncate(l, est.PerLine[i])
			}
		}
		if !ok {
			continue
		}
		next[i].Text = text
		fixes = append(fixes, Fix{Speaker: l.Speaker, Strategy: s, Detail: detail})
	}
	return next, fixes
}

// overflowingSpeakers returns the speakers with at least one line over
// its window plus tolerance.
func overflowingSpeakers(est estimate.Dialogue) map[string]bool {
	out := make(map[string]bool)
	for _, l := range est.PerLine {
		if l.OverWindow {
			out[l.Speaker] = true
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Line rewrites
// ---------------------------------------------------------------------------

// capPauses keeps the first pause marker and drops the rest.
func capPauses(text string) (string, bool) {
	if lexicon.CountPauses(text) <= 1 {
		return text, false
	}
	i := strings.Index(text, lexicon.PauseMarker) + len(lexicon.PauseMarker)
	rest := strings.ReplaceAll(text[i:], lexicon.PauseMarker, " ")
	return lexicon.NormalizeSpace(text[:i] + " " + rest), true
}

func capPausesFix(text string) (string, string, bool) {
	n := lexicon.CountPauses(text)
	out, ok := capPauses(text)
	return out, fmt.Sprintf("capped pause markers (%d → 1)", n), ok
}

func stripPausesFix(text string) (string, string, bool) {
	n := lexicon.CountPauses(text)
	if n == 0 {
		return text, "", false
	}
	return lexicon.StripPauses(text), fmt.Sprintf("removed %d pause marker(s)", n), true
}

// terminalPunct is punctuation that ends a sentence.
const terminalPunct = ".!?…"

// removeFillers drops filler tokens. A stray comma or pause marker right
// before a dropped filler goes with it, sentence-ending punctuation moves
// to the previous word, and a capitalized filler passes its capital to
// the next kept word. A line made only of fillers is left unchanged.
func removeFillers(text string) (string, []string) {
	tokens := strings.Fields(text)
	kept := make([]string, 0, len(tokens))
	var removed []string
	pendingCap := false

	for _, tok := range tokens {
		if !lexicon.IsFiller(tok) {
			if pendingCap && lexicon.Core(tok) != "" {
				tok = lexicon.Capitalize(tok)
				pendingCap = false
			}
			kept = append(kept, tok)
			continue
		}

		removed = append(removed, lexicon.Core(tok))
		if lexicon.IsCapitalized(tok) {
			pendingCap = true
		}
		if n := len(kept); n > 0 {
			switch {
			case kept[n-1] == lexicon.PauseMarker:
				kept = kept[:n-1]
			case strings.HasSuffix(kept[n-1], ","):
				kept[n-1] = strings.TrimSuffix(kept[n-1], ",")
			}
		}
		if term := trailing(tok, terminalPunct); term != "" && len(kept) > 0 {
			last := &kept[len(kept)-1]
			if trailing(*last, terminalPunct) == "" {
				*last = strings.TrimRight(*last, ",;:") + term
			}
		}
	}

	if len(removed) == 0 || lexicon.Core(strings.Join(kept, "")) == "" {
		return text, nil
	}
	return lexicon.NormalizeSpace(strings.Join(kept, " ")), removed
}

func removeFillersFix(text string) (string, string, bool) {
	out, removed := removeFillers(text)
	if len(removed) == 0 {
		return text, "", false
	}
	return out, "removed filler words: " + strings.Join(removed, ", "), true
}

// trailing returns the run of characters from set at the end of s.
func trailing(s, set string) string {
	return s[len(strings.TrimRight(s, set)):]
}

// shortenWords substitutes short synonyms token by token.
func shortenWords(text string) (string, []string) {
	tokens := strings.Fields(text)
	var swaps []string
	for i, tok := range tokens {
		if short, ok := lexicon.Shorten(tok); ok {
			swaps = append(swaps, lexicon.Core(tok)+" → "+lexicon.Core(short))
			tokens[i] = short
		}
	}
	if len(swaps) == 0 {
		return text, nil
	}
	return strings.Join(tokens, " "), swaps
}

func shortenWordsFix(text string) (string, string, bool) {
	out, swaps := shortenWords(text)
	if len(swaps) == 0 {
		return text, "", false
	}
	return out, "shortened " + strings.Join(swaps, ", "), true
}

// truncate keeps the opening "hook" and closing "punchline" of a line
// that is longer than its speaker's word ceiling. The first attempt keeps
// two hook words and is accepted only if it fits the window plus
// tolerance. Otherwise the cut keeps a single hook word, accepted as is.
func (e *Engine) truncate(l dialogue.Line, lr estimate.LineResult) (string, string, bool) {
	words := lexicon.Words(l.Text)
	maxWords := max(lr.MaxWords, 3)
	if len(words) <= maxWords {
		return l.Text, "", false
	}

	tail := words[len(words)-(maxWords-2):]
	candidate := joinWords(words[:2], tail)
	if e.estimator.Line(candidate, l.Pace).Duration <= lr.Window+e.profile.Tolerance {
		return candidate, fmt.Sprintf("kept hook + punchline (%d → %s)", len(words), format.Words(maxWords)), true
	}

	fallback := joinWords(words[:1], tail)
	return fallback, fmt.Sprintf("cut to opening word + punchline (%d → %s)", len(words), format.Words(maxWords-1)), true
}

func joinWords(head, tail []string) string {
	out := make([]string, 0, len(head)+len(tail))
	out = append(out, head...)
	out = append(out, tail...)
	return strings.Join(out, " ")
}
