package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		token string
		path  string
		want  string
	}{
		{"dist-info dir", "pkg-1.0.0", "pkg-1.0.0.dist-info/METADATA", "$VERSION.dist-info/METADATA"},
		{"unversioned path", "pkg-1.0.0", "pkg/__init__.py", "pkg/__init__.py"},
		{"sdist root", "panel-1.4.0", "panel-1.4.0/panel/__init__.py", "$VERSION/panel/__init__.py"},
		{"underscore name", "holoviews-1.19.0", "holoviews_1.19.0/x", "$VERSION/x"},
		{"pre-release compact", "panel-1.4.0rc1", "panel-1.4.0rc1/setup.py", "$VERSION/setup.py"},
		{"pre-release js style", "panel-1.4.0rc1", "package/panel-1.4.0-rc.1.js", "package/$VERSION.js"},
		{"alpha js style", "panel-1.4.0a2", "dist/panel-1.4.0-a.2.min.js", "dist/$VERSION.min.js"},
		{"prefix form", "panel-1.4.0rc1", "panel-1.4.0.data/x", "$VERSION.data/x"},
		{"other version untouched", "pkg-1.0.0", "pkg-2.0.0/a", "pkg-2.0.0/a"},
		{"empty token", "", "pkg-1.0.0/a", "pkg-1.0.0/a"},
		{"regex metacharacters in token", "a+b-1.0.0", "a+b-1.0.0/x", "$VERSION/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanonicalizer(tt.token)
			assert.Equal(t, tt.want, c.Canonicalize(tt.path))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	paths := []string{
		"pkg-1.0.0.dist-info/RECORD",
		"pkg-1.0.0/pkg-1.0.0.txt",
		"pkg/data/pkg-1.0.0-rc.1.js",
		"plain/path.py",
	}
	for _, token := range []string{"pkg-1.0.0", "pkg-1.0.0rc1"} {
		c := NewCanonicalizer(token)
		for _, p := range paths {
			once := c.Canonicalize(p)
			assert.Equal(t, once, c.Canonicalize(once), "token %s path %s", token, p)
		}
	}
}

func TestVersionToken(t *testing.T) {
	tests := []struct {
		kind     Kind
		filename string
		want     string
	}{
		{Wheel, "pkg-1.0.0-py3-none-any.whl", "pkg-1.0.0"},
		{Wheel, "pkg-1.0.0-py2.py3-none-any.whl", "pkg-1.0.0"},
		{Sdist, "panel-1.4.0.tar.gz", "panel-1.4.0"},
		{CondaV1, "panel-core-1.4.0-py_0.tar.bz2", "panel-1.4.0"},
		{CondaV2, "panel-1.4.0-py_0.conda", "panel-1.4.0"},
		{CondaV2, "hvplot-core-0.10.0-py_0.conda", "hvplot-0.10.0"},
		{NPM, "holoviz-panel-1.4.0-rc.1.tgz", "panel-1.4.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionToken(tt.kind, tt.filename, "holoviz-"))
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		kind     Kind
		filename string
		want     string
	}{
		{Wheel, "pkg-1.0.0-py3-none-any.whl", "pkg 1.0.0"},
		{Sdist, "panel-1.4.0.tar.gz", "panel 1.4.0"},
		{CondaV1, "panel-core-1.4.0-py_0.tar.bz2", "panel core 1.4.0"},
		{CondaV2, "panel-1.4.0-py_0.conda", "panel 1.4.0"},
		{NPM, "holoviz-panel-1.4.0.tgz", "panel 1.4.0"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.kind, tt.filename, "holoviz-"))
		})
	}
}
