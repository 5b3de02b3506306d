// Package lexicon provides the tokenizer and lexical tables used to
// estimate and shorten dialogue lines.
package lexicon

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// PauseMarker is the literal glyph that marks a dramatic pause.
const PauseMarker = "|"

var (
	spaceRun         = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?…:;])`)
)

// CountPauses returns the number of pause markers in raw text.
func CountPauses(text string) int {
	return strings.Count(text, PauseMarker)
}

// StripPauses removes every pause marker and normalizes whitespace.
func StripPauses(text string) string {
	return NormalizeSpace(strings.ReplaceAll(text, PauseMarker, " "))
}

// NormalizeSpace collapses whitespace runs and removes spaces that
// precede punctuation.
func NormalizeSpace(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Words splits text into spoken words.
// Pause markers and tokens without any letter or digit (dashes, stray
// punctuation) are not words.
func Words(text string) []string {
	fields := strings.Fields(norm.NFC.String(strings.ReplaceAll(text, PauseMarker, " ")))
	words := fields[:0]
	for _, f := range fields {
		if strings.IndexFunc(f, isWordRune) >= 0 {
			words = append(words, f)
		}
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Core returns the lowercase, letters-only form of token.
func Core(token string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(token) {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// IsFiller reports whether token is a discourse filler.
func IsFiller(token string) bool {
	return fillers[Core(token)]
}

// IsLongWord reports whether the alphabetic part of token is longer
// than threshold runes.
func IsLongWord(token string, threshold int) bool {
	return utf8.RuneCountInString(Core(token)) > threshold
}

// Fillers returns the filler set in sorted order.
func Fillers() []string {
	out := make([]string, 0, len(fillers))
	for f := range fillers {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Shorten returns the short synonym of token, if any.
// Matching ignores case and any non-Cyrillic character. Leading and
// trailing non-Cyrillic characters (quotes, punctuation) are kept, and
// a capitalized or all-caps token yields a replacement cased the same way.
func Shorten(token string) (string, bool) {
	runes := []rune(norm.NFC.String(token))
	start, end := 0, len(runes)
	for start < end && !isCyrillic(runes[start]) {
		start++
	}
	for end > start && !isCyrillic(runes[end-1]) {
		end--
	}
	if start == end {
		return token, false
	}

	var key strings.Builder
	for _, r := range runes[start:end] {
		if isCyrillic(r) {
			key.WriteRune(unicode.ToLower(r))
		}
	}
	short, ok := shortenings[key.String()]
	if !ok {
		return token, false
	}

	return string(runes[:start]) + matchCase(runes[start:end], short) + string(runes[end:]), true
}

func isCyrillic(r rune) bool {
	return unicode.Is(unicode.Cyrillic, r)
}

// matchCase applies the capitalization pattern of original to repl.
func matchCase(original []rune, repl string) string {
	upper, lower := 0, 0
	for _, r := range original {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	switch {
	case upper > 1 && lower == 0:
		return strings.ToUpper(repl)
	case len(original) > 0 && unicode.IsUpper(original[0]):
		return Capitalize(repl)
	default:
		return repl
	}
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// IsCapitalized reports whether the first letter of s is upper case.
func IsCapitalized(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}
