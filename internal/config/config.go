// Package config provides configuration management for artdiff.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazuruo/artdiff/internal/archive"
)

// Config is the top-level configuration struct for artdiff.
type Config struct {
	GitHub GitHubConfig `toml:"github"`
	Cache  CacheConfig  `toml:"cache"`
	Fetch  FetchConfig  `toml:"fetch"`
	Build  BuildConfig  `toml:"build"`
	Lock   LockConfig   `toml:"lock"`
	Log    LogConfig    `toml:"log"`
	TUI    TUIConfig    `toml:"tui"`
}

// GitHubConfig contains settings for the CI run-listing API.
type GitHubConfig struct {
	// APIURL is the base URL of the REST API.
	APIURL string `toml:"api_url"`

	// Owner is the account owning the projects. A project written as
	// "owner/name" overrides it.
	Owner string `toml:"owner"`

	// TokenEnv names the environment variable holding the API token.
	TokenEnv string `toml:"token_env"`

	// PerPage is the page size of the run listing (1..100).
	PerPage int `toml:"per_page"`

	// MaxPages bounds how many listing pages the resolver searches.
	MaxPages int `toml:"max_pages"`

	// TimeoutSeconds is the timeout of one API request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Projects are offered by the interactive project picker.
	Projects []string `toml:"projects"`
}

// CacheConfig contains artifact cache settings.
type CacheConfig struct {
	// Dir is the root directory holding one subdirectory per run.
	Dir string `toml:"dir"`
}

// FetchConfig contains download settings.
type FetchConfig struct {
	// Workers bounds concurrent downloads. Zero means one per CPU.
	Workers int `toml:"workers"`
}

// BuildConfig contains settings for package build comparisons.
type BuildConfig struct {
	// Workflow is the workflow file producing the package artifacts.
	Workflow string `toml:"workflow"`

	// Artifacts are the CI artifact names downloaded for a build comparison.
	Artifacts []string `toml:"artifacts"`

	// NPMPrefix is stripped from JS package filenames before version detection.
	NPMPrefix string `toml:"npm_prefix"`

	// Exclude maps an archive kind to canonical path prefixes dropped from
	// both sides of its diff.
	Exclude map[string][]string `toml:"exclude"`
}

// LockConfig contains settings for lock document comparisons.
type LockConfig struct {
	// Workflow is the workflow whose runs carry the lock artifact to compare.
	Workflow string `toml:"workflow"`

	// FetchWorkflow is the workflow used by lock-fetch.
	FetchWorkflow string `toml:"fetch_workflow"`

	// Artifact is the CI artifact name holding the lock document.
	Artifact string `toml:"artifact"`

	// File is the lock document filename inside the artifact.
	File string `toml:"file"`

	// EnvPrefix limits the matrix walk to environments with this prefix.
	EnvPrefix string `toml:"env_prefix"`

	// CheckoutRoot is the directory holding project checkouts for lock-fetch.
	CheckoutRoot string `toml:"checkout_root"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `toml:"level"`

	// Format is one of: console, json.
	Format string `toml:"format"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Enabled controls whether to use pickers and spinners (when false, falls back to plain CLI).
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		cacheRoot = filepath.Join(os.TempDir(), "cache")
	}

	return &Config{
		GitHub: GitHubConfig{
			APIURL:         "https://api.github.com",
			Owner:          "holoviz",
			TokenEnv:       "GITHUB_TOKEN",
			PerPage:        30,
			MaxPages:       9,
			TimeoutSeconds: 20,
			Projects: []string{
				"holoviews", "panel", "hvplot", "datashader",
				"geoviews", "lumen", "spatialpandas",
			},
		},
		Cache: CacheConfig{
			Dir: filepath.Join(cacheRoot, "artdiff", "artifact"),
		},
		Fetch: FetchConfig{
			Workers: 0,
		},
		Build: BuildConfig{
			Workflow:  "build.yaml",
			Artifacts: []string{"pip", "conda", "npm"},
			NPMPrefix: "holoviz-",
			Exclude:   map[string][]string{},
		},
		Lock: LockConfig{
			Workflow:      "test.yaml",
			FetchWorkflow: "nightly_lock.yaml",
			Artifact:      "pixi-lock",
			File:          "pixi.lock",
			EnvPrefix:     "test",
			CheckoutRoot:  os.Getenv("HOLOVIZ_REP"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		TUI: TUIConfig{
			Enabled: true,
		},
	}
}

// Token returns the API token from the configured environment variable.
func (c *Config) Token() string {
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	// GitHub section
	if c.GitHub.APIURL == "" {
		return fmt.Errorf("github.api_url cannot be empty")
	}
	if !strings.HasPrefix(c.GitHub.APIURL, "http://") && !strings.HasPrefix(c.GitHub.APIURL, "https://") {
		return fmt.Errorf("github.api_url must be an http(s) URL; got %q", c.GitHub.APIURL)
	}
	if c.GitHub.Owner == "" {
		return fmt.Errorf("github.owner cannot be empty")
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be between 1 and 100; got %d", c.GitHub.PerPage)
	}
	if c.GitHub.MaxPages < 1 {
		return fmt.Errorf("github.max_pages must be >= 1; got %d", c.GitHub.MaxPages)
	}
	if c.GitHub.TimeoutSeconds < 0 {
		return fmt.Errorf("github.timeout_seconds must be >= 0; got %d", c.GitHub.TimeoutSeconds)
	}

	// Cache section
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir cannot be empty")
	}

	// Fetch section
	if c.Fetch.Workers < 0 {
		return fmt.Errorf("fetch.workers must be >= 0; got %d", c.Fetch.Workers)
	}

	// Build section
	if c.Build.Workflow == "" {
		return fmt.Errorf("build.workflow cannot be empty")
	}
	for kind := range c.Build.Exclude {
		if _, err := archive.ParseKind(kind); err != nil {
			return fmt.Errorf("build.exclude has unknown kind %q; valid kinds: %s",
				kind, strings.Join(kindNames(), ", "))
		}
	}

	// Lock section
	if c.Lock.Workflow == "" {
		return fmt.Errorf("lock.workflow cannot be empty")
	}
	if c.Lock.Artifact == "" {
		return fmt.Errorf("lock.artifact cannot be empty")
	}
	if c.Lock.File == "" {
		return fmt.Errorf("lock.file cannot be empty")
	}

	// Log section
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("log.format must be one of: console, json; got %q", c.Log.Format)
	}

	return nil
}

func kindNames() []string {
	names := make([]string, 0, len(archive.Kinds))
	for _, k := range archive.Kinds {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return names
}
