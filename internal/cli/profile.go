package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ProfileCmd creates the profile command, which prints the effective
// timing profile as YAML. The output is a valid --profile file.
func ProfileCmd(env *Env) *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the effective timing profile",
		Long: `Print the timing profile skitfit would use, as YAML.

Without --profile this is the profile set in config, or the built-in
defaults. Redirect the output to a file to start a custom profile.`,
		Example: `  skitfit profile > fast-cut.yaml
  skitfit profile --profile fast-cut.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd, env, profilePath)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Timing profile YAML to validate and print")

	return cmd
}

// runProfile handles the profile command.
func runProfile(cmd *cobra.Command, env *Env, profilePath string) error {
	s, err := newSession(cmd, env, profilePath)
	if err != nil {
		return err
	}

	data, err := s.profile.Marshal()
	if err != nil {
		return err
	}
	if _, err := env.Stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
