package lockfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazuruo/artdiff/internal/diff"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// localInstall is the display filename of an editable local install.
const localInstall = "."

// Row is one package whose locked file differs between two documents.
// An empty side means the package is only locked on the other side.
type Row struct {
	Package string `json:"package"`
	Left    string `json:"left"`
	Right   string `json:"right"`
}

// CellDiff is the difference of one environment and platform cell.
type CellDiff struct {
	Environment string      `json:"environment"`
	Platform    string      `json:"platform"`
	Files       diff.Result `json:"files"`
	Rows        []Row       `json:"rows"`
}

// Empty reports whether no package differs.
func (c CellDiff) Empty() bool { return len(c.Rows) == 0 }

// DiffEnvironment diffs the env/platform cell of left against right and
// groups differing files by package name.
func DiffEnvironment(left, right *Document, env, platform string) (CellDiff, error) {
	l, err := left.Cell(env, platform)
	if err != nil {
		return CellDiff{}, err
	}
	r, err := right.Cell(env, platform)
	if err != nil {
		return CellDiff{}, err
	}

	files := diff.Compute(diff.NewSet(l...), diff.NewSet(r...), nil)
	return CellDiff{
		Environment: env,
		Platform:    platform,
		Files:       files,
		Rows:        groupRows(files),
	}, nil
}

func groupRows(files diff.Result) []Row {
	rows := map[string]*Row{}
	add := func(file string, left bool) {
		if file == localInstall {
			return
		}
		name := PackageName(file)
		row, ok := rows[name]
		if !ok {
			row = &Row{Package: name}
			rows[name] = row
		}
		// Inputs are sorted, so the first file per side wins.
		if left && row.Left == "" {
			row.Left = file
		}
		if !left && row.Right == "" {
			row.Right = file
		}
	}
	for _, f := range files.OnlyInLeft {
		add(f, true)
	}
	for _, f := range files.OnlyInRight {
		add(f, false)
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package < out[j].Package })
	return out
}

// Selector narrows the matrix walk of DiffMatrix.
type Selector struct {
	// Env selects one environment. When empty, environments starting
	// with EnvPrefix are walked.
	Env       string
	EnvPrefix string
	// Platform selects one platform. When empty, all are walked.
	Platform string
}

func (s Selector) matchEnv(name string) bool {
	if s.Env != "" {
		return name == s.Env
	}
	return strings.HasPrefix(name, s.EnvPrefix)
}

func (s Selector) explicit() bool { return s.Env != "" || s.Platform != "" }

func (s Selector) platforms(d *Document, env string) []string {
	if s.Platform != "" {
		return []string{s.Platform}
	}
	return d.Platforms(env)
}

// DiffMatrix diffs every selected cell of left against right and returns
// the cells with differences, ordered by environment then platform.
//
// Without an explicit Env, cells missing from either side are skipped.
// An explicit Env must have every selected platform on both sides, and
// an explicit Platform must be found in at least one cell; otherwise the
// error wraps ErrNotFound.
func DiffMatrix(left, right *Document, sel Selector) ([]CellDiff, error) {
	if sel.Env != "" {
		for _, d := range []*Document{left, right} {
			if !d.has(sel.Env, "") {
				_, err := d.Cell(sel.Env, "")
				return nil, err
			}
		}
	}

	out := []CellDiff{}
	matched := false
	for _, env := range left.EnvironmentNames() {
		if !sel.matchEnv(env) {
			continue
		}
		for _, platform := range sel.platforms(left, env) {
			if sel.Env == "" && !(left.has(env, platform) && right.has(env, platform)) {
				continue
			}
			matched = true
			cell, err := DiffEnvironment(left, right, env, platform)
			if err != nil {
				return nil, err
			}
			if !cell.Empty() {
				out = append(out, cell)
			}
		}
	}
	if sel.explicit() && !matched {
		env := sel.Env
		if env == "" {
			env = sel.EnvPrefix + "*"
		}
		return nil, fmt.Errorf("%w: no locked platform %q in environment %q",
			aderrors.ErrNotFound, sel.Platform, env)
	}
	return out, nil
}
