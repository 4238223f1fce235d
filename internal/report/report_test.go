package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/artdiff/internal/app"
	"github.com/chazuruo/artdiff/internal/archive"
	"github.com/chazuruo/artdiff/internal/cache"
	"github.com/chazuruo/artdiff/internal/ci"
	"github.com/chazuruo/artdiff/internal/diff"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/lockfile"
)

func buildReport() *app.BuildReport {
	return &app.BuildReport{
		RunPair: app.RunPair{Project: "holoviz/panel", Workflow: "build.yaml", Left: app.Side{Run: 100}, Right: app.Side{Run: 101}},
		Comparisons: []app.Comparison{
			{
				Kind: archive.Wheel, Title: "wheel", Status: app.StatusCompared,
				LeftLabel: "panel 1.4.0", RightLabel: "panel 1.4.1",
				Result: diff.Result{OnlyInLeft: []string{"$VERSION/old.py"}, OnlyInRight: []string{"$VERSION/a.py", "$VERSION/b.py"}},
			},
			{
				Kind: archive.Sdist, Title: "sdist", Status: app.StatusCompared,
				Result: diff.Result{OnlyInLeft: []string{}, OnlyInRight: []string{}},
			},
			{Kind: archive.NPM, Title: "npmjs", Status: app.StatusAbsent, Note: "no npmjs artifact in run #100"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "plain"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, aderrors.IsInvalid(err))
}

func TestBuild_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).Build(buildReport()))
	out := buf.String()

	assert.Contains(t, out, "Panel - wheel")
	assert.Contains(t, out, "Files only in run 1 (panel 1.4.0)")
	assert.Contains(t, out, "Files only in run 2 (panel 1.4.1)")
	assert.Contains(t, out, "$VERSION/b.py")
	assert.Contains(t, out, "Panel - sdist has identical filelist")
	assert.Contains(t, out, "Panel - npmjs skipped: no npmjs artifact in run #100")

	// The shorter column is padded with dashes.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "$VERSION/b.py") {
			assert.True(t, strings.HasPrefix(strings.TrimSpace(line), "-"), line)
		}
	}
}

func TestBuild_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatPlain).Build(buildReport()))

	want := "wheel\t-\t$VERSION/old.py\n" +
		"wheel\t+\t$VERSION/a.py\n" +
		"wheel\t+\t$VERSION/b.py\n" +
		"npm\tabsent\tno npmjs artifact in run #100\n"
	assert.Equal(t, want, buf.String())
}

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON).Build(buildReport()))

	var got struct {
		Project     string `json:"project"`
		Comparisons []struct {
			Kind   string      `json:"kind"`
			Status string      `json:"status"`
			Result diff.Result `json:"result"`
		} `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "holoviz/panel", got.Project)
	require.Len(t, got.Comparisons, 3)
	assert.Equal(t, "wheel", got.Comparisons[0].Kind)
	assert.Equal(t, []string{"$VERSION/a.py", "$VERSION/b.py"}, got.Comparisons[0].Result.OnlyInRight)
	assert.Equal(t, "absent", got.Comparisons[2].Status)
}

func lockReport(cells ...lockfile.CellDiff) *app.LockReport {
	return &app.LockReport{
		RunPair: app.RunPair{Project: "panel", Left: app.Side{Run: 200}, Right: app.Side{Run: 201}},
		Cells:   cells,
	}
}

func TestLock_Table(t *testing.T) {
	var buf bytes.Buffer
	r := lockReport(lockfile.CellDiff{
		Environment: "test-312",
		Platform:    "linux-64",
		Rows: []lockfile.Row{
			{Package: "numpy", Left: "numpy-1.26.0-py312_0.conda", Right: "numpy-1.26.1-py312_0.conda"},
			{Package: "pandas", Right: "pandas-2.2.0-py312_0.conda"},
		},
	})
	require.NoError(t, NewPrinter(&buf, FormatTable).Lock(r))
	out := buf.String()

	assert.Contains(t, out, `Difference in packages on "panel" for env "test-312" on arch "linux-64"`)
	assert.Contains(t, out, "Good run (#200)")
	assert.Contains(t, out, "Bad run (#201)")
	assert.Contains(t, out, "numpy-1.26.1-py312_0.conda")
	assert.Regexp(t, `pandas\s+-\s+pandas-2\.2\.0`, out)
}

func TestLock_NoDifferences(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).Lock(lockReport()))
	assert.Equal(t, NoDifferences+"\n", buf.String())
}

func TestLock_Plain(t *testing.T) {
	var buf bytes.Buffer
	r := lockReport(lockfile.CellDiff{
		Environment: "test-ui",
		Platform:    "win-64",
		Rows:        []lockfile.Row{{Package: "playwright", Left: "playwright-1.40.0-pyhd8ed1ab_0.conda"}},
	})
	require.NoError(t, NewPrinter(&buf, FormatPlain).Lock(r))
	assert.Equal(t, "test-ui\twin-64\tplaywright\tplaywright-1.40.0-pyhd8ed1ab_0.conda\t-\n", buf.String())
}

func TestRuns(t *testing.T) {
	runs := []ci.RunSummary{
		{Number: 812, Status: "completed", Conclusion: "failure", Branch: "main", CreatedAt: time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)},
		{Number: 811, Status: "in_progress", Branch: "fix"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).Runs(runs))
	assert.Contains(t, buf.String(), "2024-05-02 09:30")
	assert.Contains(t, buf.String(), "in_progress")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatPlain).Runs(runs))
	assert.Equal(t, runs[0].Display()+"\n"+runs[1].Display()+"\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON).Runs(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestCacheEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).CacheEntries(nil))
	assert.Equal(t, "Cache is empty.\n", buf.String())

	buf.Reset()
	entries := []cache.Info{{Name: "panel_build_100", Path: "/c/panel_build_100", Files: 3, Bytes: 2048, Modified: time.Now()}}
	require.NoError(t, NewPrinter(&buf, FormatTable).CacheEntries(entries))
	assert.Contains(t, buf.String(), "panel_build_100")
	assert.Contains(t, buf.String(), "2.0 KiB")
	assert.Contains(t, buf.String(), "just now")
}

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for n, want := range tests {
		assert.Equal(t, want, humanBytes(n))
	}
}
