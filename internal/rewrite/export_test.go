package rewrite

// Exports for black-box tests.
var (
	WithChatCompleter = withChatCompleter
	DecodeLines       = decodeLines
	BuildPrompt       = buildPrompt
)
