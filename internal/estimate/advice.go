package estimate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/format"
	"github.com/alnah/skitfit/internal/lexicon"
)

// notes returns per-line window warnings and a budget warning.
func notes(d Dialogue, tolerance float64) []string {
	var out []string
	for _, l := range d.PerLine {
		switch {
		case l.OverWindow:
			out = append(out, fmt.Sprintf("%s: %s exceeds the %s window even with %s tolerance",
				speakerLabel(l.Speaker), format.Seconds(l.Duration), format.Seconds(l.Window), format.Seconds(tolerance)))
		case l.Tight:
			out = append(out, fmt.Sprintf("%s: %s is tight for the %s window but fits within tolerance",
				speakerLabel(l.Speaker), format.Seconds(l.Duration), format.Seconds(l.Window)))
		}
	}
	if d.Total >= d.Budget-epsilon {
		out = append(out, fmt.Sprintf("total %s reaches the %s speech budget",
			format.Seconds(d.Total), format.Seconds(d.Budget)))
	}
	return out
}

// suggestions lists concrete edits that would shorten the dialogue.
func suggestions(lines []dialogue.Line, d Dialogue, longWordLength int) []string {
	var out []string
	for i, l := range lines {
		words := lexicon.Words(l.Text)
		var fillers, long []string
		for _, w := range words {
			if lexicon.IsFiller(w) {
				fillers = appendUnique(fillers, lexicon.Core(w))
			}
			if lexicon.IsLongWord(w, longWordLength) {
				long = appendUnique(long, lexicon.Core(w))
			}
		}
		label := speakerLabel(l.Speaker)
		if len(fillers) > 0 {
			out = append(out, fmt.Sprintf("%s: drop filler words (%s)", label, strings.Join(fillers, ", ")))
		}
		if len(long) > 0 {
			out = append(out, fmt.Sprintf("%s: shorten long words (%s)", label, strings.Join(long, ", ")))
		}
		if maxWords := d.PerLine[i].MaxWords; len(words) > maxWords {
			out = append(out, fmt.Sprintf("%s: %s exceeds the %d-word ceiling", label, format.Words(len(words)), maxWords))
		}
	}

	if len(out) == 0 && d.Risk == RiskHigh {
		out = append(out,
			"remove pause markers ("+lexicon.PauseMarker+") to tighten delivery",
			"keep only the punchline and drop the setup",
		)
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// speakerLabel names a speaker in notes.
func speakerLabel(speaker string) string {
	if speaker == "" {
		return "?"
	}
	return speaker
}
