package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/dialogue"
	"github.com/alnah/skitfit/internal/estimate"
	"github.com/alnah/skitfit/internal/format"
	"github.com/alnah/skitfit/internal/lexicon"
	"github.com/alnah/skitfit/internal/profile"
	"github.com/alnah/skitfit/internal/rewrite"
	"github.com/alnah/skitfit/internal/trim"
)

// Parallelism bounds for batch trimming.
const (
	defaultParallel = 4
	maxParallel     = 16
)

// trimOptions holds validated options for the trim command.
type trimOptions struct {
	inputs        []string
	profile       string
	format        Format
	output        string
	outputDir     string
	maxIterations int
	parallel      int
	rewrite       bool
	provider      Provider
	model         string
	rpm           int
	strict        bool
}

// trimDoc is the result document for one trimmed dialogue.
type trimDoc struct {
	Lines      []dialogue.Line   `json:"lines" yaml:"lines"`
	AutoFixes  []string          `json:"auto_fixes" yaml:"auto_fixes"`
	Estimate   estimate.Dialogue `json:"estimate" yaml:"estimate"`
	Trimmed    bool              `json:"trimmed" yaml:"trimmed"`
	Outcome    trim.Outcome      `json:"outcome" yaml:"outcome"`
	Iterations int               `json:"iterations" yaml:"iterations"`
	Rewritten  bool              `json:"rewritten" yaml:"rewritten"`
}

func newTrimDoc(r trim.Result) trimDoc {
	return trimDoc{
		Lines:      r.Lines,
		AutoFixes:  r.AutoFixes(),
		Estimate:   r.Estimate,
		Trimmed:    r.Trimmed,
		Outcome:    r.Outcome,
		Iterations: r.Iterations,
	}
}

// clampParallel constrains parallel file count to [1, maxParallel].
func clampParallel(n int) int {
	return max(1, min(n, maxParallel))
}

// TrimCmd creates the trim command.
// The env parameter provides injectable dependencies for testing.
func TrimCmd(env *Env) *cobra.Command {
	var (
		profilePath   string
		formatName    string
		output        string
		outputDir     string
		maxIterations int
		parallel      int
		useRewrite    bool
		provider      string
		model         string
		rpm           int
		strict        bool
	)

	cmd := &cobra.Command{
		Use:   "trim <dialogue-file>...",
		Short: "Shorten a dialogue until it fits the time budget",
		Long: `Shorten dialogue lines until the overrun risk is no longer high.

Strategies run in a fixed order, one per iteration: cap repeated pause
markers, strip pause markers, remove filler words, swap long words for
shorter synonyms, and finally cut overflowing lines down to hook and
punchline. Medium risk is left untouched.

With --rewrite, a dialogue that is still high risk is sent to an LLM
(DeepSeek by default, or OpenAI with --provider openai) and the rewrite is
kept only when it is shorter.

A single input prints to stdout unless -o or --output-dir is given.
Several inputs are processed in parallel and written to
<output-dir>/<name>_trimmed.<ext>. Existing files are never overwritten.`,
		Example: `  skitfit trim sketch.yaml
  skitfit trim sketch.yaml -o sketch_short.yaml --format yaml
  skitfit trim sketches/*.yaml --output-dir out --format json
  skitfit trim sketch.yaml --rewrite --provider openai`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseTrimOptions(args, profilePath, formatName, output, outputDir,
				maxIterations, parallel, useRewrite, provider, model, strict)
			if err != nil {
				return err
			}
			opts.rpm = rpm
			return runTrim(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Timing profile YAML (default: built-in profile)")
	cmd.Flags().StringVarP(&formatName, "format", "f", string(FormatText), "Output format: text, json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (single input only)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for output files (default: config output-dir)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Maximum trim iterations (default: profile value)")
	cmd.Flags().IntVar(&parallel, "parallel", defaultParallel, fmt.Sprintf("Files trimmed concurrently (1-%d)", maxParallel))
	cmd.Flags().BoolVar(&useRewrite, "rewrite", false, "Ask an LLM to shorten dialogues that stay high risk")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider for --rewrite: deepseek, openai (default: config or deepseek)")
	cmd.Flags().StringVar(&model, "model", "", "LLM model for --rewrite (default: provider default)")
	cmd.Flags().IntVar(&rpm, "rpm", 0, fmt.Sprintf("Max LLM requests per minute for --rewrite (default %d)", rewrite.DefaultRequestsPerMinute))
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with code 5 when any result is still high risk")

	return cmd
}

// parseTrimOptions validates and parses CLI inputs into trimOptions.
// All parsing happens at the CLI boundary.
func parseTrimOptions(inputs []string, profilePath, formatName, output, outputDir string,
	maxIterations, parallel int, useRewrite bool, provider, model string, strict bool,
) (trimOptions, error) {
	f, err := ParseFormat(formatName)
	if err != nil {
		return trimOptions{}, err
	}

	if output != "" && len(inputs) > 1 {
		return trimOptions{}, ErrOutputConflict
	}

	var p Provider
	if provider != "" {
		if p, err = ParseProvider(provider); err != nil {
			return trimOptions{}, err
		}
	}

	return trimOptions{
		inputs:        inputs,
		profile:       profilePath,
		format:        f,
		output:        output,
		outputDir:     outputDir,
		maxIterations: maxIterations,
		parallel:      clampParallel(parallel),
		rewrite:       useRewrite,
		provider:      p,
		model:         model,
		strict:        strict,
	}, nil
}

// trimRunner processes dialogue files with shared, read-only settings.
type trimRunner struct {
	profile       profile.Profile
	maxIterations int
	shortener     rewrite.Shortener
	model         string
	log           *log.Logger
}

// runTrim executes the trim command with validated options.
func runTrim(cmd *cobra.Command, env *Env, opts trimOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// === VALIDATION (fail-fast) ===

	s, err := newSession(cmd, env, opts.profile)
	if err != nil {
		return err
	}

	runner := &trimRunner{profile: s.profile, maxIterations: opts.maxIterations, log: s.log}
	if opts.rewrite {
		if err := runner.setupRewrite(env, s.cfg, opts); err != nil {
			return err
		}
	}

	toStdout := len(opts.inputs) == 1 && opts.output == "" && opts.outputDir == ""
	outputDir := opts.outputDir
	if outputDir == "" && !toStdout {
		outputDir = s.cfg.OutputDir
	}
	outputDir = config.ExpandPath(outputDir)
	if outputDir != "" {
		if err := config.EnsureOutputDir(outputDir); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
	}

	// === TRIM ===

	docs := make([]trimDoc, len(opts.inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallel)
	for i, path := range opts.inputs {
		g.Go(func() error {
			doc, err := runner.process(gctx, path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// === WRITE OUTPUT ===

	highRisk := 0
	for i, path := range opts.inputs {
		doc := docs[i]
		if doc.Estimate.Risk == estimate.RiskHigh {
			highRisk++
		}

		out, err := renderTrim(opts.format, doc)
		if err != nil {
			return err
		}

		if toStdout {
			if _, err := fmt.Fprint(env.Stdout, out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}

		dest := config.ResolveOutputPath(opts.output, outputDir, deriveTrimmedPath(path, opts.format))
		if err := writeFileAtomic(dest, out); err != nil {
			return err
		}
		s.log.Info("wrote", "path", dest, "outcome", doc.Outcome, "risk", doc.Estimate.Risk)
	}

	if opts.strict && highRisk > 0 {
		return fmt.Errorf("%d of %d dialogue(s): %w", highRisk, len(opts.inputs), ErrHighRisk)
	}
	return nil
}

// setupRewrite resolves provider, API key and model, and builds the shortener.
// Provider precedence: --provider flag, then config, then DeepSeek.
func (r *trimRunner) setupRewrite(env *Env, cfg config.Config, opts trimOptions) error {
	provider := opts.provider
	if provider.IsZero() && cfg.Provider != "" {
		p, err := ParseProvider(cfg.Provider)
		if err != nil {
			return fmt.Errorf("config provider: %w", err)
		}
		provider = p
	}
	provider = provider.OrDefault()

	apiKey, err := provider.apiKey(env.Getenv)
	if err != nil {
		return err
	}

	model := opts.model
	if model == "" {
		model = cfg.Model
	}
	r.model = provider.Model(model)

	r.shortener, err = env.ShortenerFactory.NewShortener(ShortenerSettings{
		Provider:          provider,
		APIKey:            apiKey,
		Model:             r.model,
		RequestsPerMinute: opts.rpm,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			r.log.Warn("rewrite request failed, retrying", "attempt", attempt, "delay", delay, "err", err)
		},
	})
	if err != nil {
		return err
	}
	r.log.Debug("rewrite fallback enabled", "provider", provider, "model", r.model)
	return nil
}

// process trims one dialogue file and, when configured, falls back to an
// LLM rewrite for results that are still high risk.
func (r *trimRunner) process(ctx context.Context, path string) (trimDoc, error) {
	if err := ctx.Err(); err != nil {
		return trimDoc{}, err
	}

	d, err := dialogue.Load(path)
	if err != nil {
		return trimDoc{}, err
	}

	logger := r.log.With("file", path)
	engine := trim.New(r.profile,
		trim.WithMaxIterations(r.maxIterations),
		trim.WithProgress(func(st trim.Step) {
			logger.Debug("trim step", "iteration", st.Iteration, "strategy", st.Strategy,
				"fixes", len(st.Fixes), "total", format.Seconds(st.Total), "risk", st.Risk)
		}),
	)

	res := engine.AutoTrim(d.Lines)
	logger.Info("trimmed", "outcome", res.Outcome, "iterations", res.Iterations,
		"total", format.Seconds(res.Estimate.Total), "risk", res.Estimate.Risk)

	doc := newTrimDoc(res)
	if r.shortener == nil || res.Estimate.Risk != estimate.RiskHigh {
		return doc, nil
	}
	return r.rewrite(ctx, logger, engine, res, doc)
}

// rewrite asks the shortener for shorter lines, trims them again and keeps
// them only when the total strictly drops.
func (r *trimRunner) rewrite(ctx context.Context, logger *log.Logger, engine *trim.Engine, res trim.Result, doc trimDoc) (trimDoc, error) {
	targets := rewrite.OverBudget(res.Lines, res.Estimate, r.profile)
	logger.Info("asking model to shorten", "model", r.model, "speakers", len(targets))

	shortened, err := r.shortener.Shorten(ctx, res.Lines, targets)
	if err != nil {
		return trimDoc{}, fmt.Errorf("rewrite failed: %w", err)
	}

	again := engine.AutoTrim(shortened)
	if again.Estimate.Total >= res.Estimate.Total {
		logger.Warn("rewrite did not shorten the dialogue; keeping trimmed lines",
			"before", format.Seconds(res.Estimate.Total), "after", format.Seconds(again.Estimate.Total))
		return doc, nil
	}

	fixes := append(doc.AutoFixes, rewriteFixes(res.Lines, shortened, r.model)...)
	fixes = append(fixes, again.AutoFixes()...)

	return trimDoc{
		Lines:      again.Lines,
		AutoFixes:  fixes,
		Estimate:   again.Estimate,
		Trimmed:    true,
		Outcome:    again.Outcome,
		Iterations: res.Iterations + again.Iterations,
		Rewritten:  true,
	}, nil
}

// rewriteFixes describes each line the model changed.
func rewriteFixes(before, after []dialogue.Line, model string) []string {
	var out []string
	for i := range min(len(before), len(after)) {
		if before[i].Text == after[i].Text {
			continue
		}
		out = append(out, fmt.Sprintf("%s: rewrite by %s (%d → %d words)",
			speakerLabel(before[i].Speaker), model,
			len(lexicon.Words(before[i].Text)), len(lexicon.Words(after[i].Text))))
	}
	return out
}

// renderTrim formats a trim result for output.
func renderTrim(f Format, doc trimDoc) (string, error) {
	if f != FormatText {
		return encodeDocument(f, doc)
	}

	texts := make([]string, len(doc.Lines))
	for i, l := range doc.Lines {
		texts[i] = l.Text
	}

	var b strings.Builder
	status := doc.Outcome.String()
	if doc.Rewritten {
		status += ", rewritten"
	}
	fmt.Fprintf(&b, "%s %s after %d iteration(s)\n", headingStyle.Render("Outcome:"), status, doc.Iterations)
	b.WriteString(riskLine(doc.Estimate))
	b.WriteString("\n")
	b.WriteString(lineTable(doc.Estimate, texts))
	b.WriteString("\n")
	b.WriteString(bulletList("Auto-fixes", doc.AutoFixes))
	b.WriteString(bulletList("Notes", doc.Estimate.Notes))
	b.WriteString(bulletList("Suggestions", doc.Estimate.Suggestions))
	return b.String(), nil
}
