// Package lockfile reads pixi lock documents and diffs the locked package
// files of one environment and platform between two documents.
package lockfile

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// formatKind names the document format in errors.
const formatKind = "pixi lock"

// Document is the environment matrix of a lock document.
type Document struct {
	Version      int                    `yaml:"version"`
	Environments map[string]Environment `yaml:"environments"`
}

// Environment maps a platform to its locked packages.
type Environment struct {
	Packages map[string][]PackageRef `yaml:"packages"`
}

// PackageRef is one locked entry, e.g. {"conda": "<url>"} or {"pypi": "<url>"}.
type PackageRef map[string]any

// Location returns the URL or path the entry locks.
func (p PackageRef) Location() string {
	for _, key := range []string{"conda", "pypi"} {
		if s, ok := p[key].(string); ok {
			return s
		}
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := p[k].(string); ok {
			return s
		}
	}
	return ""
}

// Parse decodes the environments section of a lock document. The top-level
// package table that follows it is not read.
func Parse(data []byte) (*Document, error) {
	if i := bytes.Index(data, []byte("\npackages:")); i >= 0 {
		data = data[:i]
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &aderrors.FormatError{Kind: formatKind, Err: err}
	}
	if doc.Environments == nil {
		return nil, &aderrors.FormatError{Kind: formatKind, Err: fmt.Errorf("%w: no environments", aderrors.ErrInvalid)}
	}
	return &doc, nil
}

// Load reads and parses the lock document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", aderrors.ErrAbsent, path)
		}
		return nil, fmt.Errorf("%w: %s", aderrors.ErrIO, err)
	}
	doc, err := Parse(data)
	if err != nil {
		if fe, ok := aderrors.AsFormatError(err); ok {
			fe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// EnvironmentNames returns the environment names in sorted order.
func (d *Document) EnvironmentNames() []string {
	names := make([]string, 0, len(d.Environments))
	for name := range d.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Platforms returns the platforms of env in sorted order.
func (d *Document) Platforms(env string) []string {
	e, ok := d.Environments[env]
	if !ok {
		return nil
	}
	platforms := make([]string, 0, len(e.Packages))
	for p := range e.Packages {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}

// has reports whether env exists and, when platform is non-empty, locks
// packages for platform.
func (d *Document) has(env, platform string) bool {
	e, ok := d.Environments[env]
	if !ok || platform == "" {
		return ok
	}
	_, ok = e.Packages[platform]
	return ok
}

// Cell returns the display filenames locked for env on platform.
func (d *Document) Cell(env, platform string) ([]string, error) {
	e, ok := d.Environments[env]
	if !ok {
		return nil, fmt.Errorf("%w: environment %q", aderrors.ErrNotFound, env)
	}
	refs, ok := e.Packages[platform]
	if !ok {
		return nil, fmt.Errorf("%w: platform %q in environment %q", aderrors.ErrNotFound, platform, env)
	}

	files := make([]string, 0, len(refs))
	for _, ref := range refs {
		files = append(files, DisplayFilename(ref.Location()))
	}
	return files, nil
}

// DisplayFilename returns the base filename of a locked location.
func DisplayFilename(location string) string {
	return path.Base(location)
}

// PackageName infers the package name of a locked filename:
// "numpy-1.26.0-py312h_0.conda" is "numpy", "param-2.0.0-py3-none-any.whl"
// is "param" and "bokeh-3.4.0.tar.gz" is "bokeh".
func PackageName(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".whl"):
		name, _, _ := strings.Cut(filename, "-")
		return name
	case strings.HasSuffix(filename, ".tar.gz"), strings.HasSuffix(filename, ".zip"):
		if i := strings.LastIndex(filename, "-"); i > 0 {
			return filename[:i]
		}
		return filename
	}
	parts := strings.Split(filename, "-")
	if len(parts) < 3 {
		return filename
	}
	return strings.Join(parts[:len(parts)-2], "-")
}
