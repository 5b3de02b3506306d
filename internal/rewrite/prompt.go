package rewrite

import (
	"fmt"
	"strings"

	"github.com/alnah/skitfit/internal/format"
)

const systemPrompt = `You shorten lines of a two-speaker comedic sketch so it fits an 8-second video.

Rules:
- Keep the same number of lines, the same speakers, and the same order.
- Keep the joke: the setup must still lead to the punchline.
- Keep the original language. Do not translate.
- Prefer short common words. Drop filler words and pause markers (|).
- Respect each speaker's word ceiling and time window given below.

Reply with a JSON object only, shaped like:
{"lines":[{"speaker":"A","text":"..."}]}`

// buildPrompt appends the per-speaker limits to the system prompt.
func buildPrompt(targets []Target) string {
	if len(targets) == 0 {
		return systemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nLimits:")
	for _, t := range targets {
		fmt.Fprintf(&b, "\n- %s: at most %s, about %s of speech",
			t.Speaker, format.Words(t.MaxWords), format.Seconds(t.Window))
	}
	return b.String()
}
