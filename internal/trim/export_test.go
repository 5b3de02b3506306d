package trim

// Line rewrites, exposed for direct tests.
var (
	CapPauseMarkers = capPauses
	DropFillers     = removeFillers
	SwapShortWords  = shortenWords
)
