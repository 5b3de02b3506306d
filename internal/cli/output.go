package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/alnah/skitfit/internal/estimate"
	"github.com/alnah/skitfit/internal/format"
)

// Format is a validated output format.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (use text, json or yaml): %w", s, ErrInvalidFormat)
	}
}

// Ext returns the file extension for the format, with the leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// encodeDocument serializes v as JSON or YAML.
func encodeDocument(f Format, v any) (string, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("failed to encode yaml: %w", err)
		}
	default:
		return "", fmt.Errorf("format %q is not a document format: %w", f, ErrInvalidFormat)
	}
	return buf.String(), nil
}

// ---------------------------------------------------------------------------
// Text report
// ---------------------------------------------------------------------------

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	riskStyles   = map[estimate.Risk]lipgloss.Style{
		estimate.RiskLow:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		estimate.RiskMedium: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		estimate.RiskHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
)

// riskLine renders the one-line verdict, e.g. "Risk: high (7.58s of 7.50s)".
func riskLine(est estimate.Dialogue) string {
	style, ok := riskStyles[est.Risk]
	if !ok {
		style = headingStyle
	}
	line := fmt.Sprintf("%s %s (%s of %s)",
		headingStyle.Render("Risk:"), style.Render(string(est.Risk)),
		format.Seconds(est.Total), format.Seconds(est.Budget))
	if est.Solo {
		line += mutedStyle.Render(" solo")
	}
	return line
}

// lineTable renders per-line timings. texts, when non-nil, adds a text column.
func lineTable(est estimate.Dialogue, texts []string) string {
	headers := []string{"#", "Speaker", "Words", "Duration", "Window", "Status"}
	if texts != nil {
		headers = append(headers, "Text")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)

	for i, lr := range est.PerLine {
		status := "ok"
		switch {
		case lr.OverWindow:
			status = "over"
		case lr.Tight:
			status = "tight"
		}
		row := []string{
			strconv.Itoa(lr.Index + 1),
			speakerLabel(lr.Speaker),
			strconv.Itoa(lr.WordCount),
			format.Seconds(lr.Duration),
			format.Seconds(lr.Window),
			status,
		}
		if texts != nil && i < len(texts) {
			row = append(row, texts[i])
		}
		t.Row(row...)
	}
	return t.String()
}

// bulletList renders a titled list, or nothing when items is empty.
func bulletList(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render(title))
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("  - ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

func speakerLabel(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// ---------------------------------------------------------------------------
// Files and logging
// ---------------------------------------------------------------------------

// deriveTrimmedPath converts an input path to a trimmed output name.
// Example: "sketches/coffee.yaml" with json -> "coffee_trimmed.json"
func deriveTrimmedPath(inputPath string, f Format) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_trimmed" + f.Ext()
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path, content string) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}

// newLogger builds the stderr logger. verbose forces debug level;
// otherwise level comes from config and defaults to info.
func newLogger(w io.Writer, level string, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "skitfit"})

	lvl := log.InfoLevel
	var invalid bool
	if level != "" {
		parsed, err := log.ParseLevel(level)
		invalid = err != nil
		if !invalid {
			lvl = parsed
		}
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)

	if invalid {
		logger.Warn("ignoring invalid log level", "level", level)
	}
	return logger
}
