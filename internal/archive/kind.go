// Package archive reads package artifacts and produces version-normalized
// manifests of their member paths.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// Kind identifies a package artifact format.
type Kind int

const (
	KindUnknown Kind = iota
	Wheel
	Sdist
	CondaV1
	CondaV2
	NPM
)

// Kinds lists every comparable kind in report order.
var Kinds = []Kind{Wheel, Sdist, CondaV1, CondaV2, NPM}

// Container is the on-disk layout of a Kind.
type Container int

const (
	ContainerZip Container = iota
	ContainerTar
	ContainerNested
)

var kindInfo = map[Kind]struct {
	name      string
	title     string
	suffix    string
	container Container
}{
	Wheel:   {"wheel", "wheel", ".whl", ContainerZip},
	Sdist:   {"sdist", "sdist", ".tar.gz", ContainerTar},
	CondaV1: {"conda-v1", "conda #1", ".tar.bz2", ContainerTar},
	CondaV2: {"conda-v2", "conda #2", ".conda", ContainerNested},
	NPM:     {"npm", "npmjs", ".tgz", ContainerTar},
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "unknown"
}

// Title returns the heading used when reporting the kind.
func (k Kind) Title() string {
	if info, ok := kindInfo[k]; ok {
		return info.title
	}
	return "unknown"
}

// Suffix returns the filename suffix of the kind.
func (k Kind) Suffix() string { return kindInfo[k].suffix }

// Container returns how members of the kind are stored.
func (k Kind) Container() Container { return kindInfo[k].container }

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKind returns the kind with the given configuration name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: unknown archive kind %q", aderrors.ErrInvalid, name)
}

// Classify returns the kind of an artifact from its filename.
func Classify(name string) Kind {
	for _, k := range Kinds {
		if strings.HasSuffix(name, k.Suffix()) {
			return k
		}
	}
	return KindUnknown
}

// Locate returns the artifact of kind at the top level of dir.
// Candidates sort by name; for conda kinds "core" builds sort first.
// It returns an error matching ErrAbsent when there is none.
func Locate(dir string, kind Kind) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", aderrors.Wrap(aderrors.ErrAbsent, kind.String())
		}
		return "", fmt.Errorf("%w: %s", aderrors.ErrIO, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && Classify(e.Name()) == kind {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", aderrors.Wrap(aderrors.ErrAbsent, kind.String())
	}

	sort.Strings(names)
	if kind == CondaV1 || kind == CondaV2 {
		sort.SliceStable(names, func(i, j int) bool {
			return strings.Contains(names[i], "core") && !strings.Contains(names[j], "core")
		})
	}
	return filepath.Join(dir, names[0]), nil
}
