package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chazuruo/artdiff/internal/app"
	"github.com/chazuruo/artdiff/internal/archive"
)

// BuildOptions contains the options for the build command.
type BuildOptions struct {
	Workflow string
	Kinds    []string
	Force    bool
	Copy     bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build [project] [good-run] [bad-run]",
		Short: "Compare the package file lists of two runs",
		Long: `Compare the built packages of two workflow runs.

For each package kind (wheel, sdist, conda #1, conda #2, npmjs) the file
lists of both runs are compared with version numbers replaced by $VERSION,
so only real additions and removals are reported. Kinds missing from a
run are skipped.

When the project or run numbers are omitted they are picked interactively.

Examples:
  artdiff build panel 812 815
  artdiff build panel 812 815 --kind wheel --kind sdist
  artdiff build holoviews --workflow build.yaml --force`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Workflow, "workflow", "", "workflow filename (default from config, build.yaml)")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "package kinds to compare (wheel, sdist, conda-v1, conda-v2, npm)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "download artifacts again even if cached")
	cmd.Flags().BoolVar(&opts.Copy, "copy", false, "copy the repro command to the clipboard")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string, opts *BuildOptions) error {
	workflow := opts.Workflow
	if workflow == "" {
		workflow = cfg.Build.Workflow
	}
	var kinds []archive.Kind
	for _, name := range opts.Kinds {
		k, err := archive.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	s := newSession()
	t, err := resolveTargets(cmd.Context(), s, args, workflow, 2)
	if err != nil {
		return err
	}

	var rep *app.BuildReport
	err = withStatus(cmd, s, "Downloading artifacts...", func(ctx context.Context) error {
		var err error
		rep, err = s.CompareBuilds(ctx, app.BuildRequest{
			Project:  t.project,
			Workflow: workflow,
			Left:     t.runs[0],
			Right:    t.runs[1],
			Kinds:    kinds,
			Force:    opts.Force,
		})
		return err
	})
	if err != nil {
		return err
	}

	newRepro("build", t.project, t.runs...).
		flag("workflow", workflow, cfg.Build.Workflow).
		flags("kind", opts.Kinds).
		toggle("force", opts.Force).
		emit(cmd, opts.Copy)

	return printer(cmd).Build(rep)
}
