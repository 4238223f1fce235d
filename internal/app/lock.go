package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/lockfile"
)

// LockRequest selects the runs and matrix cells of a lock comparison.
type LockRequest struct {
	Project  string
	Workflow string
	Left     int
	Right    int
	// Env and Platform narrow the matrix. Empty walks every environment
	// matching lock.env_prefix and every platform.
	Env      string
	Platform string
	Force    bool
}

// LockReport is the outcome of CompareLocks.
type LockReport struct {
	RunPair
	Cells []lockfile.CellDiff `json:"cells"`
}

// CompareLocks fetches both runs' lock artifacts and diffs every selected
// environment and platform cell.
func (s *Session) CompareLocks(ctx context.Context, req LockRequest) (*LockReport, error) {
	if req.Workflow == "" {
		req.Workflow = s.cfg.Lock.Workflow
	}

	pair, err := s.FetchRuns(ctx, RunsRequest{
		Project:   req.Project,
		Workflow:  req.Workflow,
		Left:      req.Left,
		Right:     req.Right,
		Artifacts: []string{s.cfg.Lock.Artifact},
		Force:     req.Force,
	})
	if err != nil {
		return nil, err
	}

	left, err := s.loadLock(pair.Left)
	if err != nil {
		return nil, err
	}
	right, err := s.loadLock(pair.Right)
	if err != nil {
		return nil, err
	}

	cells, err := lockfile.DiffMatrix(left, right, lockfile.Selector{
		Env:       req.Env,
		EnvPrefix: s.cfg.Lock.EnvPrefix,
		Platform:  req.Platform,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("compared lock documents", zap.Int("cells", len(cells)))
	return &LockReport{RunPair: *pair, Cells: cells}, nil
}

func (s *Session) loadLock(side Side) (*lockfile.Document, error) {
	doc, err := lockfile.Load(filepath.Join(side.Path, s.cfg.Lock.File))
	if aderrors.IsAbsent(err) {
		return nil, fmt.Errorf("run #%d has no %s: %w", side.Run, s.cfg.Lock.File, err)
	}
	return doc, err
}

// LockFetchRequest names the run whose lock file is installed.
type LockFetchRequest struct {
	Project  string
	Workflow string
	Run      int
	// Dest overrides <lock.checkout_root>/<project>/<lock.file>.
	Dest  string
	Force bool
}

// LockFetchResult is the outcome of FetchLock.
type LockFetchResult struct {
	Side   Side   `json:"side"`
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// FetchLock downloads one run's lock artifact and copies its lock file
// into the project checkout.
func (s *Session) FetchLock(ctx context.Context, req LockFetchRequest) (*LockFetchResult, error) {
	if req.Workflow == "" {
		req.Workflow = s.cfg.Lock.FetchWorkflow
	}
	dest := req.Dest
	if dest == "" {
		if s.cfg.Lock.CheckoutRoot == "" {
			return nil, fmt.Errorf("%w: lock.checkout_root is not set (or export HOLOVIZ_REP)", aderrors.ErrInvalid)
		}
		dest = filepath.Join(s.cfg.Lock.CheckoutRoot, projectName(req.Project), s.cfg.Lock.File)
	}

	side, err := s.FetchRun(ctx, req.Project, req.Workflow, req.Run, []string{s.cfg.Lock.Artifact}, req.Force)
	if err != nil {
		return nil, err
	}
	src := filepath.Join(side.Path, s.cfg.Lock.File)
	if _, err := os.Stat(src); err != nil {
		return nil, fmt.Errorf("run #%d has no %s: %w", side.Run, s.cfg.Lock.File, aderrors.ErrAbsent)
	}

	if err := copyFile(src, dest); err != nil {
		return nil, fmt.Errorf("%w: install %s: %v", aderrors.ErrIO, dest, err)
	}
	s.logger.Info("installed lock file", zap.String("src", src), zap.String("dest", dest))
	return &LockFetchResult{Side: side, Source: src, Dest: dest}, nil
}

// projectName strips an owner prefix from project.
func projectName(project string) string {
	return filepath.Base(filepath.FromSlash(project))
}

// copyFile replaces dst with a copy of src. The parent directory of dst
// must exist.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".artdiff-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
