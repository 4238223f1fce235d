// Package ci talks to the GitHub Actions REST API: it lists workflow runs,
// lists the artifacts of a run and resolves run numbers to runs.
package ci

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/logging"
)

// APIVersion is sent as X-GitHub-Api-Version.
const APIVersion = "2022-11-28"

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. https://api.github.com.
	BaseURL string
	// Owner is the default account of projects given without one.
	Owner string
	// Token is sent as a bearer token when non-empty.
	Token string
	// PerPage is the run listing page size.
	PerPage int
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client fetches run listings and artifact listings.
type Client struct {
	baseURL    string
	owner      string
	token      string
	perPage    int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Client.
func NewClient(cfg ClientConfig) *Client {
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		owner:      cfg.Owner,
		token:      cfg.Token,
		perPage:    perPage,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.OrNop(cfg.Logger),
	}
}

// SetHTTPClient sets the HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Repository splits project into owner and name. A project written as
// "owner/name" overrides the configured owner.
func (c *Client) Repository(project string) (owner, name string) {
	if o, n, ok := strings.Cut(project, "/"); ok {
		return o, n
	}
	return c.owner, project
}

// Headers returns the headers sent with every API request.
func (c *Client) Headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/vnd.github+json")
	h.Set("X-GitHub-Api-Version", APIVersion)
	h.Set("User-Agent", "artdiff")
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

type runsResponse struct {
	TotalCount int          `json:"total_count"`
	Runs       []RunSummary `json:"workflow_runs"`
}

// ListRuns returns one page of the runs of workflow in project, newest first.
func (c *Client) ListRuns(ctx context.Context, project, workflow string, page int) ([]RunSummary, error) {
	owner, name := c.Repository(project)
	u := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/runs",
		c.baseURL, url.PathEscape(owner), url.PathEscape(name), url.PathEscape(workflow))
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.perPage))
	u += "?" + q.Encode()

	var resp runsResponse
	if err := c.getJSON(ctx, "list runs", u, &resp); err != nil {
		return nil, err
	}
	c.logger.Debug("listed runs",
		zap.String("project", project),
		zap.String("workflow", workflow),
		zap.Int("page", page),
		zap.Int("count", len(resp.Runs)))
	return resp.Runs, nil
}

type artifactsResponse struct {
	TotalCount int                  `json:"total_count"`
	Artifacts  []ArtifactDescriptor `json:"artifacts"`
}

// ListArtifacts returns the artifacts at a run's artifact listing URL.
func (c *Client) ListArtifacts(ctx context.Context, artifactsURL string) ([]ArtifactDescriptor, error) {
	var resp artifactsResponse
	if err := c.getJSON(ctx, "list artifacts", artifactsURL, &resp); err != nil {
		return nil, err
	}
	c.logger.Debug("listed artifacts",
		zap.String("url", artifactsURL),
		zap.Int("count", len(resp.Artifacts)))
	return resp.Artifacts, nil
}

func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &aderrors.TransportError{Op: op, URL: u, Err: err}
	}
	req.Header = c.Headers()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &aderrors.TransportError{Op: op, URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var cause error
		if msg := strings.TrimSpace(string(body)); msg != "" {
			cause = fmt.Errorf("%s", msg)
		}
		return &aderrors.TransportError{Op: op, URL: u, Status: resp.StatusCode, Err: cause}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &aderrors.TransportError{Op: op, URL: u, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
