package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/logging"
)

// stagingPrefix marks in-progress entries. Such directories are never
// returned as entries.
const stagingPrefix = ".staging-"

// StaleStaging is the age after which a staging directory is treated as
// abandoned by a process that exited mid-fetch. Younger staging
// directories may belong to a fetch still running in another process.
const StaleStaging = time.Hour

// FetchFunc populates dir with a run's artifacts. Leaving dir empty is a
// valid result for runs without artifacts.
type FetchFunc func(ctx context.Context, dir string) error

// Entry is a populated cache entry.
type Entry struct {
	Key  Key
	Path string
	// Hit is true when the entry existed and fetch was not called.
	Hit bool
}

// Empty reports whether the entry holds no files.
func (e Entry) Empty() (bool, error) {
	entries, err := os.ReadDir(e.Path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// Store is an on-disk artifact cache rooted at a directory.
type Store struct {
	root   string
	logger *zap.Logger
	group  singleflight.Group
}

// NewStore creates a Store rooted at root. The directory is created lazily.
func NewStore(root string, logger *zap.Logger) *Store {
	return &Store{root: root, logger: logging.OrNop(logger)}
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// Path returns the entry directory of key, populated or not.
func (s *Store) Path(key Key) string {
	return filepath.Join(s.root, key.Dir())
}

// GetOrFetch returns the entry for key, calling fetch to populate it when
// it does not exist. With force, any existing entry is removed first.
//
// Concurrent calls for one key in this process share a single fetch. The
// shared fetch runs with the context of the first caller.
func (s *Store) GetOrFetch(ctx context.Context, key Key, force bool, fetch FetchFunc) (Entry, error) {
	if force {
		if err := s.Invalidate(key); err != nil {
			return Entry{}, err
		}
	}

	v, err, _ := s.group.Do(key.Dir(), func() (any, error) {
		return s.getOrFetch(ctx, key, fetch)
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

func (s *Store) getOrFetch(ctx context.Context, key Key, fetch FetchFunc) (Entry, error) {
	final := s.Path(key)
	if isDir(final) {
		s.logger.Debug("cache hit", zap.String("key", key.String()), zap.String("path", final))
		return Entry{Key: key, Path: final, Hit: true}, nil
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return Entry{}, &aderrors.CacheError{Key: key.Dir(), Op: "create root", Err: err}
	}
	s.sweepStaging(stagingPrefix + key.Digest() + "-")
	staging := filepath.Join(s.root, stagingPrefix+key.Digest()+"-"+uuid.NewString())
	if err := os.Mkdir(staging, 0755); err != nil {
		return Entry{}, &aderrors.CacheError{Key: key.Dir(), Op: "stage", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	s.logger.Debug("cache miss", zap.String("key", key.String()), zap.String("staging", staging))
	if err := fetch(ctx, staging); err != nil {
		return Entry{}, err
	}
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	// Another process may have committed the same key meanwhile.
	if isDir(final) {
		s.logger.Debug("cache entry appeared during fetch", zap.String("key", key.String()))
		return Entry{Key: key, Path: final, Hit: true}, nil
	}
	if err := os.Rename(staging, final); err != nil {
		if isDir(final) {
			return Entry{Key: key, Path: final, Hit: true}, nil
		}
		return Entry{}, &aderrors.CacheError{Key: key.Dir(), Op: "commit", Err: err}
	}
	committed = true

	s.logger.Info("cached run artifacts", zap.String("key", key.String()), zap.String("path", final))
	return Entry{Key: key, Path: final}, nil
}

// Invalidate removes the entry for key. A missing entry is not an error.
func (s *Store) Invalidate(key Key) error {
	if err := os.RemoveAll(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &aderrors.CacheError{Key: key.Dir(), Op: "invalidate", Err: err}
	}
	return nil
}

// Info describes a committed entry on disk.
type Info struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Files    int       `json:"files"`
	Bytes    int64     `json:"bytes"`
	Modified time.Time `json:"modified"`
}

// List returns the committed entries sorted by name.
func (s *Store) List() ([]Info, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &aderrors.CacheError{Key: s.root, Op: "list", Err: err}
	}

	var out []Info
	for _, d := range dirents {
		if !d.IsDir() || strings.HasPrefix(d.Name(), stagingPrefix) {
			continue
		}
		info := Info{Name: d.Name(), Path: filepath.Join(s.root, d.Name())}
		if st, err := d.Info(); err == nil {
			info.Modified = st.ModTime()
		}
		_ = filepath.WalkDir(info.Path, func(_ string, e fs.DirEntry, err error) error {
			if err != nil || e.IsDir() {
				return nil
			}
			info.Files++
			if fi, err := e.Info(); err == nil {
				info.Bytes += fi.Size()
			}
			return nil
		})
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Clean removes the entries of project, or every entry when project is
// empty, along with staging directories older than StaleStaging. It
// returns the number of committed entries removed.
func (s *Store) Clean(project string) (int, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, &aderrors.CacheError{Key: s.root, Op: "clean", Err: err}
	}

	prefix := ""
	if project != "" {
		prefix = strings.ReplaceAll(project, "/", "_") + "_"
	}

	removed := 0
	for _, d := range dirents {
		name := d.Name()
		if !d.IsDir() {
			continue
		}
		staging := strings.HasPrefix(name, stagingPrefix)
		if staging && !stale(d) {
			continue
		}
		if !staging && !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, name)); err != nil {
			return removed, &aderrors.CacheError{Key: name, Op: "clean", Err: err}
		}
		if !staging {
			removed++
		}
	}
	s.logger.Info("cleaned cache", zap.String("project", project), zap.Int("removed", removed))
	return removed, nil
}

// sweepStaging removes stale staging directories whose name starts with
// prefix. Failures are logged and otherwise ignored.
func (s *Store) sweepStaging(prefix string) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return
	}
	for _, d := range dirents {
		if !d.IsDir() || !strings.HasPrefix(d.Name(), prefix) || !stale(d) {
			continue
		}
		path := filepath.Join(s.root, d.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("could not remove stale staging directory", zap.String("path", path), zap.Error(err))
			continue
		}
		s.logger.Debug("removed stale staging directory", zap.String("path", path))
	}
}

func stale(d fs.DirEntry) bool {
	info, err := d.Info()
	return err == nil && time.Since(info.ModTime()) > StaleStaging
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
