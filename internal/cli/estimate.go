package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/estimate"
)

// estimateOptions holds validated options for the estimate command.
type estimateOptions struct {
	inputPath string
	profile   string
	format    Format
	strict    bool
}

// estimateDoc is the json/yaml document printed by the estimate command.
type estimateDoc struct {
	Lines    []dialogue.Line   `json:"lines" yaml:"lines"`
	Estimate estimate.Dialogue `json:"estimate" yaml:"estimate"`
}

// EstimateCmd creates the estimate command.
// The env parameter provides injectable dependencies for testing.
func EstimateCmd(env *Env) *cobra.Command {
	var (
		profilePath string
		formatName  string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "estimate <dialogue-file>",
		Short: "Estimate how long a dialogue takes to speak",
		Long: `Estimate spoken duration per line and classify the overrun risk.

The dialogue file is YAML (or JSON) with a list of lines:

  lines:
    - speaker: A
      text: "Ну | вот, я вообще не понимаю"
      pace: slow
    - speaker: B
      text: "Это база!"

Risk is high when a line overflows its speaker window or the total reaches
the speech budget. With --strict a high risk exits with code 5.`,
		Example: `  skitfit estimate sketch.yaml
  skitfit estimate sketch.yaml --format json
  skitfit estimate sketch.yaml --profile fast-cut.yaml --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ParseFormat(formatName)
			if err != nil {
				return err
			}
			return runEstimate(cmd, env, estimateOptions{
				inputPath: args[0],
				profile:   profilePath,
				format:    f,
				strict:    strict,
			})
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Timing profile YAML (default: built-in profile)")
	cmd.Flags().StringVarP(&formatName, "format", "f", string(FormatText), "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with code 5 when risk is high")

	return cmd
}

// runEstimate executes the estimate command with validated options.
func runEstimate(cmd *cobra.Command, env *Env, opts estimateOptions) error {
	s, err := newSession(cmd, env, opts.profile)
	if err != nil {
		return err
	}

	d, err := dialogue.Load(opts.inputPath)
	if err != nil {
		return err
	}
	s.log.Debug("loaded dialogue", "path", opts.inputPath, "lines", len(d.Lines))

	est := estimate.New(s.profile).Dialogue(d.Lines)

	out, err := renderEstimate(opts.format, d.Lines, est)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(env.Stdout, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.strict && est.Risk == estimate.RiskHigh {
		return fmt.Errorf("%s: %w", opts.inputPath, ErrHighRisk)
	}
	return nil
}

// renderEstimate formats an estimate for output.
func renderEstimate(f Format, lines []dialogue.Line, est estimate.Dialogue) (string, error) {
	if f != FormatText {
		return encodeDocument(f, estimateDoc{Lines: lines, Estimate: est})
	}

	var b strings.Builder
	b.WriteString(riskLine(est))
	b.WriteString("\n")
	b.WriteString(lineTable(est, nil))
	b.WriteString("\n")
	for _, lr := range est.PerLine {
		if len(lr.Details) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s %d (%s): %s\n", mutedStyle.Render("line"), lr.Index+1,
			speakerLabel(lr.Speaker), strings.Join(lr.Details, "; "))
	}
	b.WriteString(bulletList("Notes", est.Notes))
	b.WriteString(bulletList("Suggestions", est.Suggestions))
	return b.String(), nil
}
