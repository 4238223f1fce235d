package ci

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/logging"
)

// RunLister lists one page of workflow runs.
type RunLister interface {
	ListRuns(ctx context.Context, project, workflow string, page int) ([]RunSummary, error)
}

type pageKey struct {
	project  string
	workflow string
	page     int
}

// PageCache memoizes run listing pages for the lifetime of one comparison.
// Listings change as runs are added, so a PageCache must not be shared
// across invocations.
type PageCache struct {
	mu    sync.Mutex
	pages map[pageKey][]RunSummary
}

// NewPageCache creates an empty PageCache.
func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[pageKey][]RunSummary)}
}

// Page returns the cached page or fetches it through lister.
// Failed fetches are not cached.
func (p *PageCache) Page(ctx context.Context, lister RunLister, project, workflow string, page int) ([]RunSummary, error) {
	key := pageKey{project, workflow, page}

	p.mu.Lock()
	runs, ok := p.pages[key]
	p.mu.Unlock()
	if ok {
		return runs, nil
	}

	runs, err := lister.ListRuns(ctx, project, workflow, page)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.pages[key] = runs
	p.mu.Unlock()
	return runs, nil
}

// Len returns the number of cached pages.
func (p *PageCache) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// Resolver locates runs by number in the first pages of a run listing.
type Resolver struct {
	lister   RunLister
	pages    *PageCache
	maxPages int
	logger   *zap.Logger
}

// NewResolver creates a Resolver searching at most maxPages pages.
// A nil pages gets a private PageCache.
func NewResolver(lister RunLister, pages *PageCache, maxPages int, logger *zap.Logger) *Resolver {
	if pages == nil {
		pages = NewPageCache()
	}
	if maxPages < 1 {
		maxPages = 1
	}
	return &Resolver{lister: lister, pages: pages, maxPages: maxPages, logger: logging.OrNop(logger)}
}

// Resolve locates runs runA and runB of workflow in project.
func (r *Resolver) Resolve(ctx context.Context, project, workflow string, runA, runB int) (RunSummary, RunSummary, error) {
	found, err := r.find(ctx, project, workflow, runA, runB)
	if err != nil {
		return RunSummary{}, RunSummary{}, err
	}
	return found[runA], found[runB], nil
}

// ResolveOne locates a single run.
func (r *Resolver) ResolveOne(ctx context.Context, project, workflow string, run int) (RunSummary, error) {
	found, err := r.find(ctx, project, workflow, run)
	if err != nil {
		return RunSummary{}, err
	}
	return found[run], nil
}

// find walks pages in increasing order and stops at the first page where
// every wanted run has been seen. Only eligible runs count. A page that
// fails to load aborts the search.
func (r *Resolver) find(ctx context.Context, project, workflow string, want ...int) (map[int]RunSummary, error) {
	want = unique(want)
	found := make(map[int]RunSummary, len(want))
	missing := func() []int {
		var out []int
		for _, n := range want {
			if _, ok := found[n]; !ok {
				out = append(out, n)
			}
		}
		return out
	}

	searched := 0
	for page := 1; page <= r.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		runs, err := r.pages.Page(ctx, r.lister, project, workflow, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		searched = page

		for _, run := range runs {
			if run.Eligible() {
				if _, ok := found[run.Number]; !ok {
					found[run.Number] = run
				}
			}
		}
		if len(missing()) == 0 {
			r.logger.Debug("resolved runs",
				zap.String("project", project),
				zap.Ints("runs", want),
				zap.Int("pages", page))
			return found, nil
		}
		if len(runs) == 0 {
			break
		}
	}

	return nil, &aderrors.ResolutionError{
		Project:  project,
		Workflow: workflow,
		Runs:     missing(),
		Pages:    searched,
	}
}

func unique(runs []int) []int {
	seen := make(map[int]bool, len(runs))
	out := runs[:0:0]
	for _, n := range runs {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
