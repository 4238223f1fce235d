package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := map[string]Kind{
		"pkg-1.0.0-py3-none-any.whl":    Wheel,
		"pkg-1.0.0.tar.gz":              Sdist,
		"pkg-1.0.0-py_0.tar.bz2":        CondaV1,
		"pkg-1.0.0-py_0.conda":          CondaV2,
		"holoviz-pkg-1.0.0.tgz":         NPM,
		"pkg-1.0.0.zip":                 KindUnknown,
		"pixi.lock":                     KindUnknown,
		"pkg-1.0.0.tar.gz.sha256":       KindUnknown,
		"pkg-1.0.0-py3-none-any.whl.sh": KindUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, Classify(name), name)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("rpm")
	assert.True(t, aderrors.IsInvalid(err))
}

func TestKindText(t *testing.T) {
	assert.Equal(t, "conda-v2", CondaV2.String())
	assert.Equal(t, "conda #2", CondaV2.Title())
	assert.Equal(t, "unknown", KindUnknown.String())

	b, err := NPM.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "npm", string(b))
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"pkg-1.0.0-py3-none-any.whl",
		"apkg-1.0.0-py3-none-any.whl",
		"panel-1.4.0-py_0.tar.bz2",
		"panel-core-1.4.0-py_0.tar.bz2",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.whl"), 0755))

	got, err := Locate(dir, Wheel)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "apkg-1.0.0-py3-none-any.whl"), got)

	got, err = Locate(dir, CondaV1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "panel-core-1.4.0-py_0.tar.bz2"), got, "core builds sort first")

	_, err = Locate(dir, NPM)
	assert.True(t, aderrors.IsAbsent(err))

	_, err = Locate(filepath.Join(dir, "missing"), Wheel)
	assert.True(t, aderrors.IsAbsent(err))
}
