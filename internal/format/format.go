package format

import (
	"fmt"
	"math"
)

// Seconds formats a duration in seconds with two decimals.
// Example: 1.5 -> "1.50s"
func Seconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}

// Delta formats a signed duration adjustment.
// Examples: 0.3 -> "+0.30s", -0.25 -> "-0.25s"
func Delta(s float64) string {
	if s < 0 {
		return fmt.Sprintf("-%.2fs", math.Abs(s))
	}
	return fmt.Sprintf("+%.2fs", s)
}

// Words formats a word count with the right plural.
// Examples: "1 word", "3 words"
func Words(n int) string {
	if n == 1 {
		return "1 word"
	}
	return fmt.Sprintf("%d words", n)
}

// Round2 rounds s to two decimal places.
func Round2(s float64) float64 {
	return math.Round(s*100) / 100
}
