package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/profile"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/skitfit/config.
Settings can also be provided via environment variables.

Supported settings:
  profile       Default timing profile YAML (env: SKITFIT_PROFILE)
  output-dir    Default directory for output files (env: SKITFIT_OUTPUT_DIR)
  provider      LLM provider for --rewrite: deepseek, openai (env: SKITFIT_PROVIDER)
  model         LLM model for --rewrite (env: SKITFIT_MODEL)
  log-level     debug, info, warn, error (env: SKITFIT_LOG_LEVEL)`,
		Example: `  skitfit config set output-dir ~/sketches/trimmed
  skitfit config set provider openai
  skitfit config get profile
  skitfit config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Values are validated before saving: output-dir is created if missing,
profile must be a loadable profile file, provider and log-level must be
known names.`,
		Example: `  skitfit config set output-dir ~/sketches/trimmed
  skitfit config set log-level debug`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  skitfit config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  skitfit config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// validateConfigValue checks and normalizes a value before it is saved.
func validateConfigValue(key, value string) (string, error) {
	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
		return expanded, nil
	case config.KeyProfile:
		expanded := config.ExpandPath(value)
		if _, err := profile.Load(expanded); err != nil {
			return "", fmt.Errorf("invalid profile: %w", err)
		}
		return expanded, nil
	case config.KeyProvider:
		p, err := ParseProvider(value)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	case config.KeyLogLevel:
		lvl, err := log.ParseLevel(value)
		if err != nil {
			return "", fmt.Errorf("invalid log-level %q: %w", value, err)
		}
		return lvl.String(), nil
	default:
		return strings.TrimSpace(value), nil
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(config.Keys, ", "))
	}

	value, err := validateConfigValue(key, value)
	if err != nil {
		return err
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(config.Keys, ", "))
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		value = env.Getenv(config.EnvVars[key])
	}

	if value != "" {
		_, _ = fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	var lines []string
	for _, key := range config.Keys {
		if v, ok := data[key]; ok {
			lines = append(lines, key+"="+v)
			continue
		}
		if v := env.Getenv(config.EnvVars[key]); v != "" {
			lines = append(lines, key+"="+v+" (from env)")
		}
	}

	if len(lines) == 0 {
		_, _ = fmt.Fprintln(env.Stdout, "No configuration set.")
		_, _ = fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			_, _ = fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	for _, l := range lines {
		_, _ = fmt.Fprintln(env.Stdout, l)
	}
	return nil
}
