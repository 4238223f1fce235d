package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazuruo/artdiff/internal/cache"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean the artifact cache",
		Long: `Downloaded artifacts are cached per project, workflow and run in the
directory configured by cache.dir. Entries never expire; use "clean" or
--force on a compare command to download again.`,
	}

	cmd.AddCommand(newCacheListCommand())
	cmd.AddCommand(newCacheCleanCommand())
	cmd.AddCommand(newCachePathCommand())
	return cmd
}

func newStore() *cache.Store {
	return cache.NewStore(cfg.Cache.Dir, logger)
}

func newCacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := newStore().List()
			if err != nil {
				return err
			}
			return printer(cmd).CacheEntries(entries)
		},
	}
}

func newCacheCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [project]",
		Short: "Remove cached runs, all of them or one project's",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			n, err := newStore().Clean(project)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", n)
			return nil
		},
	}
}

func newCachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), newStore().Root())
			return nil
		},
	}
}
