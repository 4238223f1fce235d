package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazuruo/artdiff/internal/app"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/fetch"
	"github.com/chazuruo/artdiff/internal/tui"
)

// targets are the positional arguments of the compare commands.
type targets struct {
	project string
	runs    []int
}

// resolveTargets reads "<project> <run>..." from args, asking for what is
// missing when interactive. want is the number of runs needed.
func resolveTargets(ctx context.Context, s *app.Session, args []string, workflow string, want int) (targets, error) {
	var t targets
	if len(args) > 0 {
		t.project = args[0]
		for _, arg := range args[1:] {
			n, err := tui.ParseRun(arg)
			if err != nil {
				return t, err
			}
			t.runs = append(t.runs, n)
		}
	}
	if t.project != "" && len(t.runs) == want {
		return t, nil
	}
	if len(t.runs) != 0 {
		return t, fmt.Errorf("%w: expected %d run numbers, got %d", aderrors.ErrInvalid, want, len(t.runs))
	}
	if !interactive() {
		return t, fmt.Errorf("%w: project and %d run number(s) are required without a terminal", aderrors.ErrInvalid, want)
	}

	if t.project == "" {
		p, err := tui.PickProject(cfg.GitHub.Projects)
		if err != nil {
			return t, err
		}
		t.project = p
	}

	runs, err := s.ListRuns(ctx, t.project, workflow, 1)
	if err != nil {
		return t, err
	}
	switch want {
	case 1:
		n, err := tui.PickRun("Select a run", runs)
		if err != nil {
			return t, err
		}
		t.runs = []int{n}
	default:
		good, bad, err := tui.PickRuns(runs)
		if err != nil {
			return t, err
		}
		t.runs = []int{good, bad}
	}
	return t, nil
}

// withStatus runs task behind a spinner when interactive.
func withStatus(cmd *cobra.Command, s *app.Session, title string, task func(ctx context.Context) error) error {
	run := func(ctx context.Context, progress func(done, total int)) error {
		s.SetProgressHook(fetch.ProgressHook(progress))
		defer s.SetProgressHook(nil)
		return task(ctx)
	}

	ctx := cmd.Context()
	if interactive() {
		return tui.RunWithStatus(ctx, cmd.ErrOrStderr(), title, run)
	}
	if IsNoTUI() && Format == "table" {
		return tui.RunPlain(ctx, cmd.ErrOrStderr(), title, run)
	}
	return run(ctx, func(int, int) {})
}

func newSession() *app.Session {
	return app.NewSession(cfg, logger)
}
