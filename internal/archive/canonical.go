package archive

import (
	"regexp"
	"strings"
)

// Placeholder replaces version-bearing substrings in canonical paths.
const Placeholder = "$VERSION"

var (
	// Leading name-version prefix, e.g. "panel-1.4.0" of "panel-1.4.0rc1".
	prefixRe = regexp.MustCompile(`^\w+.\d+.\d+.\d+`)
	// Pre-release marker in an escaped token, e.g. `0rc1` or `0\-rc\.1`.
	preReleaseRe = regexp.MustCompile(`(\d)(?:\\-)?(rc|a|b)(?:\\\.)?(\d)`)
)

// Canonicalizer rewrites member paths of one artifact so that the
// artifact's own name-version token becomes Placeholder.
type Canonicalizer struct {
	token  string
	full   *regexp.Regexp
	prefix *regexp.Regexp
}

// NewCanonicalizer builds a Canonicalizer for a name-version token such
// as "panel-1.4.0rc1". Dashes in the token match any separator, and a
// pre-release marker matches with or without "-" and "." around it, so
// "1.4.0rc1" also matches the JS rendering "1.4.0-rc.1".
func NewCanonicalizer(token string) *Canonicalizer {
	c := &Canonicalizer{token: token}
	if token == "" {
		return c
	}

	escaped := strings.ReplaceAll(regexp.QuoteMeta(token), "-", `\-`)
	escaped = preReleaseRe.ReplaceAllString(escaped, `${1}\-?${2}\.?${3}`)
	c.full = regexp.MustCompile(strings.ReplaceAll(escaped, `\-`, "."))

	if m := prefixRe.FindString(token); m != "" {
		c.prefix = regexp.MustCompile(strings.ReplaceAll(m, "-", "."))
	}
	return c
}

// Token returns the name-version token the canonicalizer was built from.
func (c *Canonicalizer) Token() string { return c.token }

// Canonicalize replaces every occurrence of the token in path with Placeholder.
func (c *Canonicalizer) Canonicalize(path string) string {
	if c.full != nil {
		path = c.full.ReplaceAllLiteralString(path, Placeholder)
	}
	if c.prefix != nil {
		path = c.prefix.ReplaceAllLiteralString(path, Placeholder)
	}
	return path
}

// VersionToken derives the name-version token of an artifact filename.
// npmPrefix is stripped from tarball names, e.g. "holoviz-".
func VersionToken(kind Kind, filename, npmPrefix string) string {
	switch kind {
	case Wheel:
		token := beforeFirst(filename, "-py3")
		return beforeFirst(token, "-py2")
	case CondaV2:
		token := strings.ReplaceAll(filename, "-core", "")
		token = beforeFirst(token, ".conda")
		return beforeFirst(token, "-py_0")
	case Sdist, CondaV1, NPM:
		token := strings.ReplaceAll(filename, "-core", "")
		token = beforeFirst(token, ".tar")
		token = beforeFirst(token, "-py_0")
		token = beforeFirst(token, ".tgz")
		if npmPrefix != "" {
			token = strings.TrimPrefix(token, npmPrefix)
		}
		return token
	}
	return filename
}

// Label renders an artifact filename for report headings, e.g. "panel 1.4.0".
func Label(kind Kind, filename, npmPrefix string) string {
	var label string
	switch kind {
	case Wheel:
		label = beforeFirst(filename, "-py3")
	case Sdist:
		label = beforeFirst(filename, ".tar")
	case CondaV1:
		label = beforeFirst(beforeFirst(filename, ".tar"), "-py_0")
	case CondaV2:
		label = beforeFirst(beforeFirst(filename, ".conda"), "-py_0")
	case NPM:
		label = beforeFirst(filename, ".tgz")
		if npmPrefix != "" {
			label = strings.TrimPrefix(label, npmPrefix)
		}
	default:
		label = filename
	}
	return strings.ReplaceAll(label, "-", " ")
}

func beforeFirst(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}
