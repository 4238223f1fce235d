package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chazuruo/artdiff/internal/archive"
	"github.com/chazuruo/artdiff/internal/diff"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// Status is the outcome of comparing one artifact kind.
type Status string

const (
	// StatusCompared means both sides were read and diffed.
	StatusCompared Status = "compared"
	// StatusAbsent means at least one side has no artifact of the kind.
	StatusAbsent Status = "absent"
	// StatusFailed means an artifact did not parse.
	StatusFailed Status = "failed"
)

// BuildRequest selects the runs and kinds of a build comparison.
type BuildRequest struct {
	Project  string
	Workflow string
	Left     int
	Right    int
	// Kinds limits the comparison. Empty compares every kind.
	Kinds []archive.Kind
	Force bool
}

// Comparison is the manifest diff of one artifact kind.
type Comparison struct {
	Kind       archive.Kind `json:"kind"`
	Title      string       `json:"title"`
	Status     Status       `json:"status"`
	LeftLabel  string       `json:"left_label,omitempty"`
	RightLabel string       `json:"right_label,omitempty"`
	LeftFile   string       `json:"left_file,omitempty"`
	RightFile  string       `json:"right_file,omitempty"`
	Result     diff.Result  `json:"result"`
	Note       string       `json:"note,omitempty"`
}

// BuildReport is the outcome of CompareBuilds.
type BuildReport struct {
	RunPair
	Comparisons []Comparison `json:"comparisons"`
}

// Differences reports whether any compared kind differs.
func (r *BuildReport) Differences() bool {
	for _, c := range r.Comparisons {
		if c.Status == StatusCompared && !c.Result.Identical() {
			return true
		}
	}
	return false
}

// CompareBuilds fetches both runs' package artifacts and diffs their
// manifests kind by kind. A kind that is missing or fails to parse is
// reported in its Comparison, unless it is the only kind requested.
func (s *Session) CompareBuilds(ctx context.Context, req BuildRequest) (*BuildReport, error) {
	if req.Workflow == "" {
		req.Workflow = s.cfg.Build.Workflow
	}
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = archive.Kinds
	}

	pair, err := s.FetchRuns(ctx, RunsRequest{
		Project:   req.Project,
		Workflow:  req.Workflow,
		Left:      req.Left,
		Right:     req.Right,
		Artifacts: s.cfg.Build.Artifacts,
		Force:     req.Force,
	})
	if err != nil {
		return nil, err
	}

	report := &BuildReport{RunPair: *pair}
	for _, kind := range kinds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.compareKind(kind, pair.Left, pair.Right)
		if err != nil {
			if len(kinds) == 1 {
				return nil, err
			}
			s.logger.Warn("skipping unreadable artifact",
				zap.Stringer("kind", kind),
				zap.Error(err))
		}
		if c.Status == StatusAbsent && len(kinds) == 1 {
			return nil, fmt.Errorf("%w: %s", aderrors.ErrAbsent, c.Note)
		}
		report.Comparisons = append(report.Comparisons, c)
	}
	return report, nil
}

func (s *Session) compareKind(kind archive.Kind, left, right Side) (Comparison, error) {
	c := Comparison{Kind: kind, Title: kind.Title(), Result: diff.Result{OnlyInLeft: []string{}, OnlyInRight: []string{}}}

	leftPath, err := archive.Locate(left.Path, kind)
	if err != nil {
		return absent(c, kind, left.Run, err)
	}
	rightPath, err := archive.Locate(right.Path, kind)
	if err != nil {
		return absent(c, kind, right.Run, err)
	}
	c.LeftFile, c.RightFile = filepath.Base(leftPath), filepath.Base(rightPath)

	prefix := s.cfg.Build.NPMPrefix
	lm, err := archive.Read(leftPath, kind, prefix)
	if err != nil {
		return failed(c, err)
	}
	rm, err := archive.Read(rightPath, kind, prefix)
	if err != nil {
		return failed(c, err)
	}

	c.Status = StatusCompared
	c.LeftLabel, c.RightLabel = lm.Label, rm.Label
	c.Result = diff.Compute(lm.Entries, rm.Entries, diff.PrefixFilter(s.cfg.Build.Exclude[kind.String()]...))
	s.logger.Debug("compared manifests",
		zap.Stringer("kind", kind),
		zap.Int("only_left", len(c.Result.OnlyInLeft)),
		zap.Int("only_right", len(c.Result.OnlyInRight)))
	return c, nil
}

func absent(c Comparison, kind archive.Kind, run int, err error) (Comparison, error) {
	if !aderrors.IsAbsent(err) {
		return failed(c, err)
	}
	c.Status = StatusAbsent
	c.Note = fmt.Sprintf("no %s artifact in run #%d", kind.Title(), run)
	return c, nil
}

func failed(c Comparison, err error) (Comparison, error) {
	c.Status = StatusFailed
	c.Note = err.Error()
	return c, err
}
