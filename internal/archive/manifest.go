package archive

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/chazuruo/artdiff/internal/diff"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// innerTarSuffix marks the zstd tar payloads inside a .conda package.
const innerTarSuffix = ".tar.zst"

// Manifest is the canonical member set of one artifact.
type Manifest struct {
	Path    string
	Kind    Kind
	Token   string
	Label   string
	Entries diff.Set
}

// Read lists the members of the artifact at path and canonicalizes them.
// Archives that do not open as their kind yield a *errors.FormatError.
func Read(path string, kind Kind, npmPrefix string) (*Manifest, error) {
	members, err := Members(path, kind)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	token := VersionToken(kind, name, npmPrefix)
	canon := NewCanonicalizer(token)

	entries := make(diff.Set, len(members))
	for _, m := range members {
		entries.Add(canon.Canonicalize(m))
	}

	return &Manifest{
		Path:    path,
		Kind:    kind,
		Token:   token,
		Label:   Label(kind, name, npmPrefix),
		Entries: entries,
	}, nil
}

// Members lists raw member paths of the artifact at path.
// Tar-based kinds list regular files only.
func Members(path string, kind Kind) ([]string, error) {
	var (
		members []string
		err     error
	)
	switch kind.Container() {
	case ContainerZip:
		members, err = zipMembers(path)
	case ContainerTar:
		members, err = tarFileMembers(path, kind)
	case ContainerNested:
		members, err = nestedMembers(path)
	default:
		err = fmt.Errorf("%w: unsupported kind %s", aderrors.ErrInvalid, kind)
	}
	if err != nil {
		return nil, &aderrors.FormatError{Path: path, Kind: kind.String(), Err: err}
	}
	return members, nil
}

func zipMembers(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func tarFileMembers(path string, kind Kind) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader
	switch kind {
	case CondaV1:
		r = bzip2.NewReader(f)
	default:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return readTar(r)
}

func nestedMembers(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, innerTarSuffix) {
			names = append(names, f.Name)
		}
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, innerTarSuffix) {
			continue
		}
		inner, err := zstdTarMembers(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		names = append(names, inner...)
	}
	return names, nil
}

func zstdTarMembers(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec, err := zstd.NewReader(rc)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return readTar(dec)
}

func readTar(r io.Reader) ([]string, error) {
	tr := tar.NewReader(r)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.FileInfo().Mode().IsRegular() {
			names = append(names, hdr.Name)
		}
	}
}
