package format_test

import (
	"testing"

	"github.com/alnah/skitfit/internal/format"
)

func TestSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00s"},
		{1.5, "1.50s"},
		{3.456, "3.46s"},
	}
	for _, tt := range tests {
		if got := format.Seconds(tt.in); got != tt.want {
			t.Errorf("Seconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0.3, "+0.30s"},
		{0, "+0.00s"},
		{-0.25, "-0.25s"},
	}
	for _, tt := range tests {
		if got := format.Delta(tt.in); got != tt.want {
			t.Errorf("Delta(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{0, "0 words"},
		{1, "1 word"},
		{7, "7 words"},
	}
	for _, tt := range tests {
		if got := format.Words(tt.in); got != tt.want {
			t.Errorf("Words(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{10.0 / 2.3, 4.35},
		{0.125, 0.13},
		{-0.254, -0.25},
		{2, 2},
	}
	for _, tt := range tests {
		if got := format.Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
