package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// RunsOptions contains the options for the runs command.
type RunsOptions struct {
	Workflow string
	Page     int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs <project>",
		Short: "List the runs of a workflow",
		Long: `List one page of a workflow's runs, newest first.

Examples:
  artdiff runs panel
  artdiff runs panel --workflow test.yaml --page 2
  artdiff runs holoviz-dev/panel --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Workflow, "workflow", "", "workflow filename (default from config, build.yaml)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "listing page")

	return cmd
}

func runRuns(cmd *cobra.Command, project string, opts *RunsOptions) error {
	if opts.Page < 1 {
		return fmt.Errorf("%w: --page must be >= 1", aderrors.ErrInvalid)
	}
	workflow := opts.Workflow
	if workflow == "" {
		workflow = cfg.Build.Workflow
	}

	runs, err := newSession().ListRuns(cmd.Context(), project, workflow, opts.Page)
	if err != nil {
		return err
	}
	return printer(cmd).Runs(runs)
}
