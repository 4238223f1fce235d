// Package cli provides the Cobra commands of artdiff and their shared
// global state.
package cli

import (
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazuruo/artdiff/internal/config"
)

var (
	// NoTUI indicates that TUI/interactive mode should be disabled.
	// This is set by the global --no-tui flag.
	NoTUI bool

	// ConfigPath is set by the global --config flag.
	ConfigPath string

	// Verbose forces debug logging. Set by --verbose.
	Verbose bool

	// Format is the output format set by --format.
	Format string

	// noTUIMutex protects NoTUI for concurrent access.
	noTUIMutex sync.RWMutex

	// cfg and logger are loaded by the root command before any subcommand
	// runs.
	cfg    *config.Config
	logger = zap.NewNop()
)

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&NoTUI, "no-tui", false,
		"disable TUI/interactive mode; use plain text or JSON output")
	cmd.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"config file path (default ~/.config/artdiff/config.toml)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false,
		"enable debug logging")
	cmd.PersistentFlags().StringVar(&Format, "format", "table",
		"output format (table, json, plain)")
}

// IsNoTUI returns true if TUI mode is disabled.
func IsNoTUI() bool {
	noTUIMutex.RLock()
	defer noTUIMutex.RUnlock()
	return NoTUI
}
