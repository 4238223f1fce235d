// Package app wires the resolver, the artifact cache, the fetcher and the
// differs into the operations behind each artdiff command.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chazuruo/artdiff/internal/cache"
	"github.com/chazuruo/artdiff/internal/ci"
	"github.com/chazuruo/artdiff/internal/config"
	"github.com/chazuruo/artdiff/internal/fetch"
	"github.com/chazuruo/artdiff/internal/logging"
)

// Session holds the collaborators of one invocation. Its page cache lives
// as long as the session, so listings are never reused across invocations.
type Session struct {
	ID string

	cfg      *config.Config
	client   *ci.Client
	pages    *ci.PageCache
	resolver *ci.Resolver
	store    *cache.Store
	fetcher  *fetch.Fetcher
	logger   *zap.Logger
}

// NewSession creates a Session from cfg.
func NewSession(cfg *config.Config, logger *zap.Logger) *Session {
	id := uuid.NewString()
	logger = logging.OrNop(logger).With(zap.String("session", id))

	client := ci.NewClient(ci.ClientConfig{
		BaseURL: cfg.GitHub.APIURL,
		Owner:   cfg.GitHub.Owner,
		Token:   cfg.Token(),
		PerPage: cfg.GitHub.PerPage,
		Timeout: time.Duration(cfg.GitHub.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
	pages := ci.NewPageCache()

	return &Session{
		ID:       id,
		cfg:      cfg,
		client:   client,
		pages:    pages,
		resolver: ci.NewResolver(client, pages, cfg.GitHub.MaxPages, logger),
		store:    cache.NewStore(cfg.Cache.Dir, logger),
		fetcher:  fetch.NewFetcher(client.Headers(), cfg.Fetch.Workers, logger),
		logger:   logger,
	}
}

// SetHTTPClient routes API calls and downloads through client.
func (s *Session) SetHTTPClient(client *http.Client) {
	s.client.SetHTTPClient(client)
	s.fetcher.SetHTTPClient(client)
}

// SetProgressHook reports finished downloads of each batch.
func (s *Session) SetProgressHook(hook fetch.ProgressHook) {
	s.fetcher.SetProgressHook(hook)
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Store returns the artifact cache.
func (s *Session) Store() *cache.Store { return s.store }

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger { return s.logger }

// ListRuns returns one page of a workflow's runs, newest first.
func (s *Session) ListRuns(ctx context.Context, project, workflow string, page int) ([]ci.RunSummary, error) {
	return s.pages.Page(ctx, s.client, project, workflow, page)
}

// EligibleRuns returns the runs of page that can be compared.
func (s *Session) EligibleRuns(ctx context.Context, project, workflow string, page int) ([]ci.RunSummary, error) {
	runs, err := s.ListRuns(ctx, project, workflow, page)
	if err != nil {
		return nil, err
	}
	var out []ci.RunSummary
	for _, r := range runs {
		if r.Eligible() {
			out = append(out, r)
		}
	}
	return out, nil
}
