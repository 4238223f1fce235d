// Package testutil provides helper functions for testing.
package testutil

import (
	"archive/tar"
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// TempDir creates a temporary directory and registers a cleanup function.
// The directory is automatically deleted when the test completes.
func TempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("failed to cleanup temp dir %s: %v", dir, err)
		}
	})

	return dir
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// Files maps member names to contents.
type Files map[string]string

func (f Files) names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ZipBytes builds a zip archive holding files.
func ZipBytes(t *testing.T, files Files) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range files.names() {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// TarBytes builds an uncompressed tar stream holding files, plus one
// directory entry per name in dirs.
func TarBytes(t *testing.T, files Files, dirs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, dir := range dirs {
		if err := tw.WriteHeader(&tar.Header{Name: dir + "/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
			t.Fatalf("tar dir %s: %v", dir, err)
		}
	}
	for _, name := range files.names() {
		body := []byte(files[name])
		hdr := &tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", name, err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatalf("tar write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	return buf.Bytes()
}

// TarGzBytes builds a gzip-compressed tar stream (sdist and npm tarballs).
func TarGzBytes(t *testing.T, files Files, dirs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(TarBytes(t, files, dirs...)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// ZstdTarBytes builds a zstd-compressed tar stream.
func ZstdTarBytes(t *testing.T, files Files) []byte {
	t.Helper()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(TarBytes(t, files), nil)
}

// CondaV2Bytes builds a .conda package: a zip of outer files plus one
// "<payload>.tar.zst" member per entry of inner.
func CondaV2Bytes(t *testing.T, outer Files, inner map[string]Files) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, body []byte) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write(body); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	for _, name := range outer.names() {
		add(name, []byte(outer[name]))
	}
	payloads := make([]string, 0, len(inner))
	for name := range inner {
		payloads = append(payloads, name)
	}
	sort.Strings(payloads)
	for _, name := range payloads {
		add(name+".tar.zst", ZstdTarBytes(t, inner[name]))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// condaV1Fixture is pkg-1.0.0-py_0.tar.bz2: a directory, three regular
// files and a symlink. The standard library has no bzip2 writer.
const condaV1Fixture = "" +
	"QlpoOTFBWSZTWVuYfxIAAR/fgcqRUAP/kC6DNgDvv95qAACICDAA+NBgAAAABoNAGgGgGqPV" +
	"PyUyDIxBppoyZMhiZMmECSKJmkPRTINNNNGj1NNMQGmxT9Ul13HzW9nUxQyZmwyugU1SEkaK" +
	"G7H5IcdiIiztY0MiFSGBIYEcXF3cMHnLpw76TDf+NfdUzOvBUiS8itDiBZt/pu4UIFYbYFrJ" +
	"psjeurUEQmpQKRFLwpoWCLHnXQy3zUDwk/op/xA6C5jqFSZgYGIGwOPxBH2E2zCcGtD9xEEU" +
	"hHxzVmEIG0IvzDoRjyG7TeK8x2BbigsqqRrDnnk39GSIuMhgkEqs6hXrSA/xdyRThQkFuYfx" +
	"IA=="

// CondaV1Members are the regular files of CondaV1Bytes.
var CondaV1Members = []string{
	"info/index.json",
	"site-packages/pkg-1.0.0.dist-info/METADATA",
	"site-packages/pkg/__init__.py",
}

// CondaV1Bytes returns a bzip2 tarball for pkg 1.0.0.
func CondaV1Bytes(t *testing.T) []byte {
	t.Helper()

	b, err := base64.StdEncoding.DecodeString(condaV1Fixture)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return b
}
