package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/artdiff/internal/cache"
	aderrors "github.com/chazuruo/artdiff/internal/errors"
	"github.com/chazuruo/artdiff/internal/testutil"
)

// isolate points HOME and the cache at temp dirs so no user config or
// cache is touched, and returns the cache dir.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	cacheDir := filepath.Join(t.TempDir(), "cache")
	t.Setenv("ARTDIFF_CACHE_DIR", cacheDir)
	t.Setenv("ARTDIFF_GITHUB_TOKEN_ENV", "ARTDIFF_TEST_NO_TOKEN")
	return cacheDir
}

func run(t *testing.T, ctx context.Context, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(ctx, args, &out, &errOut, VersionInfo{Version: "1.2.3", Commit: "abc", Date: "today"})
	return code, out.String(), errOut.String()
}

// newFakeGitHub serves runs 100 and 101 of holoviz/panel. Run 101 adds
// pkg/new_module.py to the wheel.
func newFakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	wheels := map[string][]byte{
		"100": testutil.ZipBytes(t, testutil.Files{
			"pkg-1.0.0-py3-none-any.whl": string(testutil.ZipBytes(t, testutil.Files{"pkg/__init__.py": ""})),
		}),
		"101": testutil.ZipBytes(t, testutil.Files{
			"pkg-1.0.1-py3-none-any.whl": string(testutil.ZipBytes(t, testutil.Files{"pkg/__init__.py": "", "pkg/new_module.py": ""})),
		}),
	}

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/holoviz/panel/actions/workflows/build.yaml/runs", func(w http.ResponseWriter, r *http.Request) {
		runs := []map[string]any{}
		if r.URL.Query().Get("page") == "1" {
			for _, n := range []int{101, 100} {
				runs = append(runs, map[string]any{
					"run_number":  n,
					"status":      "completed",
					"conclusion":  "success",
					"created_at":  "2024-05-01T12:00:00Z",
					"head_branch": "main",
					"url":         fmt.Sprintf("%s/runs/%d", srv.URL, n),
				})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"workflow_runs": runs})
	})
	mux.HandleFunc("GET /runs/{id}/artifacts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"artifacts": []map[string]any{{
			"name":                 "pip",
			"archive_download_url": srv.URL + "/download/" + r.PathValue("id"),
		}}})
	})
	mux.HandleFunc("GET /download/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(wheels[r.PathValue("id")])
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("ARTDIFF_GITHUB_API_URL", srv.URL)
	return srv
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, stdout, _ := run(t, context.Background(), "version", "--short")
	assert.Equal(t, aderrors.ExitSuccess, code)
	assert.Equal(t, "1.2.3\n", stdout)

	_, stdout, _ = run(t, context.Background(), "version")
	assert.Contains(t, stdout, "artdiff version 1.2.3")
	assert.Contains(t, stdout, "commit: abc")
}

func TestRun_InvalidFormat(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, context.Background(), "cache", "path", "--format", "xml")
	assert.Equal(t, aderrors.ExitGeneric, code)
	assert.Contains(t, stderr, "Error:")
	assert.Contains(t, stderr, "xml")
}

func TestRun_CacheCommands(t *testing.T) {
	cacheDir := isolate(t)
	for _, name := range []string{"panel_build_1", "hvplot_build_2", ".staging-abc"} {
		require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, name), 0755))
	}
	old := time.Now().Add(-2 * cache.StaleStaging)
	require.NoError(t, os.Chtimes(filepath.Join(cacheDir, ".staging-abc"), old, old))

	_, stdout, _ := run(t, context.Background(), "cache", "path")
	assert.Equal(t, cacheDir+"\n", stdout)

	code, stdout, _ := run(t, context.Background(), "cache", "list", "--format", "plain")
	assert.Equal(t, aderrors.ExitSuccess, code)
	assert.Equal(t, filepath.Join(cacheDir, "hvplot_build_2")+"\n"+filepath.Join(cacheDir, "panel_build_1")+"\n", stdout)

	_, stdout, _ = run(t, context.Background(), "cache", "clean", "panel")
	assert.Equal(t, "Removed 1 cache entries\n", stdout)
	assert.NoDirExists(t, filepath.Join(cacheDir, "panel_build_1"))
	assert.NoDirExists(t, filepath.Join(cacheDir, ".staging-abc"))
	assert.DirExists(t, filepath.Join(cacheDir, "hvplot_build_2"))
}

func TestRun_ConfigInit(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "artdiff.toml")

	code, stdout, stderr := run(t, context.Background(), "--config", path, "--no-tui", "config", "init")
	require.Equal(t, aderrors.ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Configuration written to: "+path)
	assert.FileExists(t, path)

	code, _, stderr = run(t, context.Background(), "--config", path, "config", "init")
	assert.Equal(t, aderrors.ExitGeneric, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = run(t, context.Background(), "--config", path, "config", "init", "--force")
	assert.Equal(t, aderrors.ExitSuccess, code)

	_, stdout, _ = run(t, context.Background(), "--config", path, "config", "show")
	assert.Contains(t, stdout, `owner = "holoviz"`)
}

func TestRun_MissingConfig(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, context.Background(), "--config", filepath.Join(t.TempDir(), "nope.toml"), "cache", "path")
	assert.Equal(t, aderrors.ExitNotFound, code)
	assert.Contains(t, stderr, "nope.toml")
}

func TestRun_BuildNeedsArgumentsWithoutTerminal(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, context.Background(), "--no-tui", "build", "panel")
	assert.Equal(t, aderrors.ExitGeneric, code)
	assert.Contains(t, stderr, "required")

	code, _, stderr = run(t, context.Background(), "build", "panel", "100", "abc")
	assert.Equal(t, aderrors.ExitGeneric, code)
	assert.Contains(t, stderr, `run number "abc"`)

	code, _, _ = run(t, context.Background(), "build", "panel", "100", "101", "--kind", "rpm")
	assert.Equal(t, aderrors.ExitGeneric, code)
}

func TestRun_Build(t *testing.T) {
	cacheDir := isolate(t)
	newFakeGitHub(t)

	code, stdout, stderr := run(t, context.Background(), "build", "panel", "100", "101", "--kind", "wheel", "--format", "plain")
	require.Equal(t, aderrors.ExitSuccess, code, stderr)
	assert.Equal(t, "wheel\t+\tpkg/new_module.py\n", stdout)
	assert.Contains(t, stderr, "Repro: artdiff build panel 100 101 --kind wheel\n")
	assert.DirExists(t, filepath.Join(cacheDir, "panel_build_100"))

	code, stdout, _ = run(t, context.Background(), "build", "panel", "101", "100", "--kind", "wheel")
	require.Equal(t, aderrors.ExitSuccess, code)
	assert.Contains(t, stdout, "Files only in run 1 (pkg 1.0.1)")
	assert.Contains(t, stdout, "pkg/new_module.py")
}

func TestRun_BuildUnknownRun(t *testing.T) {
	isolate(t)
	newFakeGitHub(t)

	code, _, stderr := run(t, context.Background(), "build", "panel", "100", "4242")
	assert.Equal(t, aderrors.ExitNotFound, code)
	assert.Contains(t, stderr, "#4242")
}

func TestRun_Runs(t *testing.T) {
	isolate(t)
	newFakeGitHub(t)

	code, stdout, stderr := run(t, context.Background(), "runs", "panel", "--format", "json")
	require.Equal(t, aderrors.ExitSuccess, code, stderr)

	var runs []struct {
		Number int `json:"run_number"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, 101, runs[0].Number)

	code, _, _ = run(t, context.Background(), "runs", "panel", "--page", "0")
	assert.Equal(t, aderrors.ExitGeneric, code)
}

func TestRun_Aborted(t *testing.T) {
	isolate(t)
	newFakeGitHub(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, _, stderr := run(t, ctx, "runs", "panel")
	assert.Equal(t, aderrors.ExitAborted, code)
	assert.Equal(t, "Aborted.\n", stderr)
}

func TestRepro(t *testing.T) {
	r := newRepro("lock", "panel", 812, 815).
		flag("env", "test-312", "").
		flag("platform", "", "").
		flag("workflow", "test.yaml", "test.yaml").
		flags("kind", []string{"wheel"}).
		toggle("force", true).
		toggle("copy", false)
	assert.Equal(t, "artdiff lock panel 812 815 --env test-312 --kind wheel --force", r.String())

	assert.Equal(t, "artdiff lock-fetch panel "+strconv.Itoa(7), newRepro("lock-fetch", "panel", 7).String())
}
