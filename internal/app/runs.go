package app

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chazuruo/artdiff/internal/cache"
	"github.com/chazuruo/artdiff/internal/ci"
	"github.com/chazuruo/artdiff/internal/fetch"
)

// RunsRequest names the two runs of a comparison.
type RunsRequest struct {
	Project  string
	Workflow string
	// Left is the good run, Right the bad one.
	Left  int
	Right int
	// Artifacts filters the run artifacts by name. Empty keeps the first.
	Artifacts []string
	// Force drops existing cache entries first.
	Force bool
}

// Side is one run of a comparison and its cache entry.
type Side struct {
	Run    int    `json:"run"`
	Path   string `json:"path"`
	Cached bool   `json:"cached"`
}

// RunPair is the outcome of FetchRuns.
type RunPair struct {
	Project  string `json:"project"`
	Workflow string `json:"workflow"`
	Left     Side   `json:"left"`
	Right    Side   `json:"right"`
}

type resolved struct {
	left, right ci.RunSummary
}

// FetchRuns makes sure both runs are in the cache. Runs are only resolved
// against the listing when one of the entries is missing.
func (s *Session) FetchRuns(ctx context.Context, req RunsRequest) (*RunPair, error) {
	resolve := sync.OnceValues(func() (resolved, error) {
		l, r, err := s.resolver.Resolve(ctx, req.Project, req.Workflow, req.Left, req.Right)
		return resolved{left: l, right: r}, err
	})

	pair := &RunPair{Project: req.Project, Workflow: req.Workflow}
	g, gctx := errgroup.WithContext(ctx)
	for _, side := range []struct {
		run  int
		out  *Side
		pick func(resolved) ci.RunSummary
	}{
		{req.Left, &pair.Left, func(r resolved) ci.RunSummary { return r.left }},
		{req.Right, &pair.Right, func(r resolved) ci.RunSummary { return r.right }},
	} {
		g.Go(func() error {
			key := cache.Key{Project: req.Project, Workflow: req.Workflow, Run: side.run}
			entry, err := s.store.GetOrFetch(gctx, key, req.Force, func(ctx context.Context, dir string) error {
				runs, err := resolve()
				if err != nil {
					return err
				}
				return s.download(ctx, side.pick(runs), req.Artifacts, dir)
			})
			if err != nil {
				return err
			}
			*side.out = Side{Run: side.run, Path: entry.Path, Cached: entry.Hit}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pair, nil
}

// FetchRun makes sure a single run is in the cache.
func (s *Session) FetchRun(ctx context.Context, project, workflow string, run int, artifacts []string, force bool) (Side, error) {
	key := cache.Key{Project: project, Workflow: workflow, Run: run}
	entry, err := s.store.GetOrFetch(ctx, key, force, func(ctx context.Context, dir string) error {
		summary, err := s.resolver.ResolveOne(ctx, project, workflow, run)
		if err != nil {
			return err
		}
		return s.download(ctx, summary, artifacts, dir)
	})
	if err != nil {
		return Side{}, err
	}
	return Side{Run: run, Path: entry.Path, Cached: entry.Hit}, nil
}

// download extracts the selected artifacts of run into dir. A run
// without matching artifacts leaves dir empty.
func (s *Session) download(ctx context.Context, run ci.RunSummary, names []string, dir string) error {
	all, err := s.client.ListArtifacts(ctx, run.ArtifactsURL())
	if err != nil {
		return err
	}
	selected := ci.SelectArtifacts(all, names)
	if len(selected) == 0 {
		s.logger.Info("run has no matching artifacts",
			zap.Int("run", run.Number),
			zap.Strings("names", names))
		return nil
	}

	jobs := make([]fetch.Job, 0, len(selected))
	for _, a := range selected {
		if a.Expired {
			s.logger.Warn("artifact has expired", zap.Int("run", run.Number), zap.String("name", a.Name))
		}
		jobs = append(jobs, fetch.Job{Dest: dir, URL: a.DownloadURL, Name: a.Name})
	}
	return s.fetcher.Fetch(ctx, jobs)
}
