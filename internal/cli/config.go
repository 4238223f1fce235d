package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/artdiff/internal/config"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// ConfigInitOptions contains the options for the config init command.
type ConfigInitOptions struct {
	Force bool
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the artdiff configuration",
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	opts := &ConfigInitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write a config file holding the effective settings. In a terminal the
GitHub owner and token variable are asked for first.

The file is written to --config, or ~/.config/artdiff/config.toml.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{configOptional: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, opts *ConfigInitOptions) error {
	path := ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine the config path; pass --config")
	}

	out := *cfg
	if interactive() {
		if err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("GitHub owner").
					Description("Account owning the projects").
					Value(&out.GitHub.Owner),
				huh.NewInput().
					Title("Token variable").
					Description("Environment variable holding the GitHub token").
					Value(&out.GitHub.TokenEnv),
			),
		).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return aderrors.ErrCanceled
			}
			return fmt.Errorf("form error: %w", err)
		}
	}
	if err := out.Validate(); err != nil {
		return err
	}

	if err := config.Write(path, &out, opts.Force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to: %s\n", path)
	return nil
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	}
}
