package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/alnah/skitfit/internal/config"
	"github.com/alnah/skitfit/internal/profile"
)

// session bundles the settings every command resolves before doing work.
type session struct {
	cfg     config.Config
	log     *log.Logger
	profile profile.Profile
}

// newSession loads config, builds the logger and resolves the timing
// profile. Profile precedence: --profile flag, then config, then defaults.
// A config load failure is logged and ignored.
func newSession(cmd *cobra.Command, env *Env, profileFlag string) (*session, error) {
	cfg, cfgErr := env.ConfigLoader.Load()

	// --verbose is a persistent root flag; absent when a command runs alone.
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(env.Stderr, cfg.LogLevel, verbose)
	if cfgErr != nil {
		logger.Warn("failed to load config", "err", cfgErr)
	}

	path := profileFlag
	if path == "" {
		path = cfg.Profile
	}
	p, err := profile.Load(config.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("using profile", "path", path)
	}

	return &session{cfg: cfg, log: logger, profile: p}, nil
}
