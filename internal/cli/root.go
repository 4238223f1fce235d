package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazuruo/artdiff/internal/config"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/logging"
	"github.com/chazuruo/artdiff/internal/report"
	"github.com/chazuruo/artdiff/internal/tui"
)

// NewRootCommand creates the artdiff command tree.
func NewRootCommand(info VersionInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "artdiff",
		Short: "Compare CI build artifacts and lock files between two runs",
		Long: `artdiff downloads the artifacts of two GitHub Actions runs of a project,
caches them locally and reports what changed between them: the file lists of
the built packages (wheel, sdist, conda, npm) with version numbers normalized,
or the locked packages of every pixi test environment.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	AddGlobalFlags(rootCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewLockCommand())
	rootCmd.AddCommand(NewLockFetchCommand())
	rootCmd.AddCommand(NewRunsCommand())
	rootCmd.AddCommand(NewCacheCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand(info))

	return rootCmd
}

// configOptional marks commands that run without an existing --config file.
const configOptional = "config-optional"

// setup loads .env, the configuration and the logger.
func setup(cmd *cobra.Command) error {
	config.LoadDotEnv()

	loaded, err := config.LoadWithDefaults(ConfigPath)
	if aderrors.IsNotFound(err) && cmd.Annotations[configOptional] == "true" {
		loaded, err = config.FromEnv()
	}
	if err != nil {
		return err
	}
	if _, err := report.ParseFormat(Format); err != nil {
		return err
	}

	level := loaded.Log.Level
	if Verbose {
		level = "debug"
	}
	l, err := logging.New(level, loaded.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, logger = loaded, l
	logger.Debug("configuration loaded", zap.String("cache_dir", cfg.Cache.Dir), zap.String("owner", cfg.GitHub.Owner))
	return nil
}

// Run executes artdiff with args and returns the process exit code.
// Errors are printed to stderr; an interrupted run prints "Aborted.".
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, info VersionInfo) int {
	rootCmd := NewRootCommand(info)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return aderrors.ExitSuccess
	}
	if aderrors.IsCanceled(err) || ctx.Err() != nil {
		fmt.Fprintln(stderr, "Aborted.")
		return aderrors.ExitAborted
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return aderrors.ExitCode(err)
}

// interactive reports whether pickers and spinners may be shown.
func interactive() bool {
	if IsNoTUI() || cfg == nil || !cfg.TUI.Enabled {
		return false
	}
	return tui.Interactive(os.Stdin) && tui.Interactive(os.Stderr)
}

func printer(cmd *cobra.Command) *report.Printer {
	return report.NewPrinter(cmd.OutOrStdout(), report.Format(Format))
}
