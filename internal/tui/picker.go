package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/chazuruo/artdiff/internal/ci"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// PickProject asks for one of projects.
func PickProject(projects []string) (string, error) {
	if len(projects) == 0 {
		return "", fmt.Errorf("%w: no projects configured (github.projects)", aderrors.ErrInvalid)
	}

	var project string
	options := make([]huh.Option[string], 0, len(projects))
	for _, p := range projects {
		options = append(options, huh.NewOption(p, p))
	}
	if err := runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a project").
				Options(options...).
				Value(&project),
		),
	)); err != nil {
		return "", err
	}
	return project, nil
}

// PickRun asks for one of runs.
func PickRun(title string, runs []ci.RunSummary) (int, error) {
	options := RunOptions(runs)
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no completed runs on the first page", aderrors.ErrNotFound)
	}

	var run int
	if err := runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(options...).
				Value(&run),
		),
	)); err != nil {
		return 0, err
	}
	return run, nil
}

// PickRuns asks for a good run, then for a bad run among the others.
func PickRuns(runs []ci.RunSummary) (good, bad int, err error) {
	good, err = PickRun("Select the good run", runs)
	if err != nil {
		return 0, 0, err
	}
	bad, err = PickRun("Select the bad run", Without(runs, good))
	if err != nil {
		return 0, 0, err
	}
	return good, bad, nil
}

// RunOptions builds one select option per eligible run.
func RunOptions(runs []ci.RunSummary) []huh.Option[int] {
	var out []huh.Option[int]
	for _, r := range runs {
		if r.Eligible() {
			out = append(out, huh.NewOption(r.Display(), r.Number))
		}
	}
	return out
}

// Without returns runs minus the run numbered n.
func Without(runs []ci.RunSummary, n int) []ci.RunSummary {
	out := make([]ci.RunSummary, 0, len(runs))
	for _, r := range runs {
		if r.Number != n {
			out = append(out, r)
		}
	}
	return out
}

// ParseRun parses a run number argument.
func ParseRun(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: run number %q", aderrors.ErrInvalid, arg)
	}
	return n, nil
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return aderrors.ErrCanceled
		}
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}
