// Package fetch downloads zip artifacts and extracts them concurrently.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/logging"
)

// Job downloads the zip at URL and extracts it into Dest.
type Job struct {
	Dest string
	URL  string
	// Name labels the job in logs and errors.
	Name string
}

// ProgressHook is called after each finished job with the number of
// finished jobs and the batch size.
type ProgressHook func(done, total int)

// Fetcher runs download jobs on a bounded worker pool.
type Fetcher struct {
	httpClient   *http.Client
	header       http.Header
	workers      int
	progressHook ProgressHook
	logger       *zap.Logger
}

// NewFetcher creates a Fetcher sending header with every request.
// workers <= 0 means one worker per CPU.
func NewFetcher(header http.Header, workers int, logger *zap.Logger) *Fetcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Fetcher{
		httpClient: http.DefaultClient,
		header:     header.Clone(),
		workers:    workers,
		logger:     logging.OrNop(logger),
	}
}

// SetHTTPClient sets the HTTP client (useful for testing).
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}

// SetProgressHook sets the progress callback.
func (f *Fetcher) SetProgressHook(hook ProgressHook) {
	f.progressHook = hook
}

// Workers returns the pool size.
func (f *Fetcher) Workers() int { return f.workers }

// Fetch runs jobs concurrently. The first failure cancels the remaining
// jobs and is returned. An empty batch succeeds.
func (f *Fetcher) Fetch(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)

	var done atomic.Int32
	for _, job := range jobs {
		g.Go(func() error {
			if err := f.fetchOne(gctx, job); err != nil {
				return err
			}
			n := int(done.Add(1))
			if f.progressHook != nil {
				f.progressHook(n, len(jobs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (f *Fetcher) fetchOne(ctx context.Context, job Job) error {
	data, err := f.download(ctx, job)
	if err != nil {
		return err
	}
	if err := Extract(data, job.Dest); err != nil {
		return &aderrors.FormatError{Path: job.Name, Kind: "zip", Err: err}
	}
	f.logger.Debug("extracted artifact",
		zap.String("name", job.Name),
		zap.String("dest", job.Dest),
		zap.Int("bytes", len(data)))
	return nil
}

func (f *Fetcher) download(ctx context.Context, job Job) ([]byte, error) {
	op := "download"
	if job.Name != "" {
		op = "download " + job.Name
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return nil, &aderrors.TransportError{Op: op, URL: job.URL, Err: err}
	}
	req.Header = f.header.Clone()

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &aderrors.TransportError{Op: op, URL: job.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &aderrors.TransportError{Op: op, URL: job.URL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &aderrors.TransportError{Op: op, URL: job.URL, Err: fmt.Errorf("download interrupted: %w", err)}
	}
	return data, nil
}

// Extract writes every member of the zip archive data below dest.
// Members escaping dest are rejected.
func Extract(data []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, zf := range zr.File {
		target := filepath.Join(dest, zf.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("illegal member path %q", zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
