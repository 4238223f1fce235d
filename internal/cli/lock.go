package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazuruo/artdiff/internal/app"
)

// LockOptions contains the options for the lock command.
type LockOptions struct {
	Workflow string
	Env      string
	Platform string
	Force    bool
	Copy     bool
}

// NewLockCommand creates the lock command.
func NewLockCommand() *cobra.Command {
	opts := &LockOptions{}

	cmd := &cobra.Command{
		Use:   "lock [project] [good-run] [bad-run]",
		Short: "Compare the locked test environments of two runs",
		Long: `Compare the pixi lock files uploaded by two workflow runs.

Every test environment (names starting with lock.env_prefix) is compared on
every platform, and each package whose locked file changed is reported as
one row. Use --env and --platform to narrow the matrix.

Examples:
  artdiff lock panel 812 815
  artdiff lock panel 812 815 --env test-312 --platform linux-64`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLock(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Workflow, "workflow", "", "workflow filename (default from config, test.yaml)")
	cmd.Flags().StringVar(&opts.Env, "env", "", "environment to compare, e.g. test-312")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "platform to compare, e.g. linux-64")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "download artifacts again even if cached")
	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "copy the repro command to the clipboard")

	return cmd
}

func runLock(cmd *cobra.Command, args []string, opts *LockOptions) error {
	workflow := opts.Workflow
	if workflow == "" {
		workflow = cfg.Lock.Workflow
	}

	s := newSession()
	t, err := resolveTargets(cmd.Context(), s, args, workflow, 2)
	if err != nil {
		return err
	}

	var rep *app.LockReport
	err = withStatus(cmd, s, "Downloading artifacts...", func(ctx context.Context) error {
		var err error
		rep, err = s.CompareLocks(ctx, app.LockRequest{
			Project:  t.project,
			Workflow: workflow,
			Left:     t.runs[0],
			Right:    t.runs[1],
			Env:      opts.Env,
			Platform: opts.Platform,
			Force:    opts.Force,
		})
		return err
	})
	if err != nil {
		return err
	}

	newRepro("lock", t.project, t.runs...).
		flag("env", opts.Env, "").
		flag("platform", opts.Platform, "").
		flag("workflow", workflow, cfg.Lock.Workflow).
		toggle("force", opts.Force).
		emit(cmd, opts.Copy)

	return printer(cmd).Lock(rep)
}

// LockFetchOptions contains the options for the lock-fetch command.
type LockFetchOptions struct {
	Workflow string
	Dest     string
	Force    bool
	Copy     bool
}

// NewLockFetchCommand creates the lock-fetch command.
func NewLockFetchCommand() *cobra.Command {
	opts := &LockFetchOptions{}

	cmd := &cobra.Command{
		Use:   "lock-fetch [project] [run]",
		Short: "Install the lock file of a run into the project checkout",
		Long: `Download the lock artifact of one run and copy its pixi.lock into
<lock.checkout_root>/<project>/pixi.lock. The checkout root defaults to
$HOLOVIZ_REP.

Examples:
  artdiff lock-fetch panel 1203
  artdiff lock-fetch panel 1203 --dest ./pixi.lock`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLockFetch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Workflow, "workflow", "", "workflow filename (default from config, nightly_lock.yaml)")
	cmd.Flags().StringVar(&opts.Dest, "dest", "", "destination file (default <checkout_root>/<project>/pixi.lock)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "download the artifact again even if cached")
	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "copy the repro command to the clipboard")

	return cmd
}

func runLockFetch(cmd *cobra.Command, args []string, opts *LockFetchOptions) error {
	workflow := opts.Workflow
	if workflow == "" {
		workflow = cfg.Lock.FetchWorkflow
	}

	s := newSession()
	t, err := resolveTargets(cmd.Context(), s, args, workflow, 1)
	if err != nil {
		return err
	}

	var res *app.LockFetchResult
	err = withStatus(cmd, s, "Downloading lock file...", func(ctx context.Context) error {
		var err error
		res, err = s.FetchLock(ctx, app.LockFetchRequest{
			Project:  t.project,
			Workflow: workflow,
			Run:      t.runs[0],
			Dest:     opts.Dest,
			Force:    opts.Force,
		})
		return err
	})
	if err != nil {
		return err
	}

	newRepro("lock-fetch", t.project, t.runs...).
		flag("workflow", workflow, cfg.Lock.FetchWorkflow).
		flag("dest", opts.Dest, "").
		toggle("force", opts.Force).
		emit(cmd, opts.Copy)

	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s from run #%d\n", res.Dest, res.Side.Run)
	return nil
}
