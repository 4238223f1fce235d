// Package config provides configuration management for artdiff.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - .env loading
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	aderrors "github.com/chazuruo/artdiff/internal/errors"
)

// DefaultPath returns ~/.config/artdiff/config.toml, or empty string when
// the home directory is unknown.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "artdiff", "config.toml")
}

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns empty string if no config file is found (caller should use defaults).
func DetectConfigPath() string {
	configPath := DefaultPath()
	if configPath == "" {
		return ""
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}
	return ""
}

// LoadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &aderrors.ConfigError{Path: path, Err: aderrors.ErrNotFound}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &aderrors.ConfigError{Path: path, Err: fmt.Errorf("read: %w", err)}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &aderrors.ConfigError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}

	applyEnvOverrides(cfg)
	expandPath(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &aderrors.ConfigError{Path: path, Err: fmt.Errorf("%w: %s", aderrors.ErrInvalid, err)}
	}

	return cfg, nil
}

// LoadWithDefaults loads the config at path, or from XDG standard paths when
// path is empty. If no config file is found, returns a validated config with
// default values and environment overrides applied.
func LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		path = DetectConfigPath()
	}
	if path != "" {
		return Load(path)
	}
	return FromEnv()
}

// FromEnv returns the default config with environment overrides applied,
// ignoring any config file.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	expandPath(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &aderrors.ConfigError{Err: fmt.Errorf("%w: %s", aderrors.ErrInvalid, err)}
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: ARTDIFF_<SECTION>_<FIELD>
//
// Examples:
// - ARTDIFF_GITHUB_OWNER overrides [github].owner
// - ARTDIFF_CACHE_DIR overrides [cache].dir
// - ARTDIFF_BUILD_ARTIFACTS overrides [build].artifacts (comma-separated)
func applyEnvOverrides(c *Config) {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	applyList := func(key string, target *[]string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var items []string
			for _, item := range strings.Split(val, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*target = items
		}
	}

	// GitHub section
	applyString("ARTDIFF_GITHUB_API_URL", &c.GitHub.APIURL)
	applyString("ARTDIFF_GITHUB_OWNER", &c.GitHub.Owner)
	applyString("ARTDIFF_GITHUB_TOKEN_ENV", &c.GitHub.TokenEnv)
	applyInt("ARTDIFF_GITHUB_PER_PAGE", &c.GitHub.PerPage)
	applyInt("ARTDIFF_GITHUB_MAX_PAGES", &c.GitHub.MaxPages)
	applyInt("ARTDIFF_GITHUB_TIMEOUT_SECONDS", &c.GitHub.TimeoutSeconds)
	applyList("ARTDIFF_GITHUB_PROJECTS", &c.GitHub.Projects)

	// Cache section
	applyString("ARTDIFF_CACHE_DIR", &c.Cache.Dir)

	// Fetch section
	applyInt("ARTDIFF_FETCH_WORKERS", &c.Fetch.Workers)

	// Build section
	applyString("ARTDIFF_BUILD_WORKFLOW", &c.Build.Workflow)
	applyList("ARTDIFF_BUILD_ARTIFACTS", &c.Build.Artifacts)
	applyString("ARTDIFF_BUILD_NPM_PREFIX", &c.Build.NPMPrefix)

	// Lock section
	applyString("ARTDIFF_LOCK_WORKFLOW", &c.Lock.Workflow)
	applyString("ARTDIFF_LOCK_FETCH_WORKFLOW", &c.Lock.FetchWorkflow)
	applyString("ARTDIFF_LOCK_ARTIFACT", &c.Lock.Artifact)
	applyString("ARTDIFF_LOCK_FILE", &c.Lock.File)
	applyString("ARTDIFF_LOCK_ENV_PREFIX", &c.Lock.EnvPrefix)
	applyString("ARTDIFF_LOCK_CHECKOUT_ROOT", &c.Lock.CheckoutRoot)

	// Log section
	applyString("ARTDIFF_LOG_LEVEL", &c.Log.Level)
	applyString("ARTDIFF_LOG_FORMAT", &c.Log.Format)

	// TUI section
	applyBool("ARTDIFF_TUI_ENABLED", &c.TUI.Enabled)
}

// expandPath expands ~ to the home directory in path settings.
func expandPath(c *Config) {
	for _, p := range []*string{&c.Cache.Dir, &c.Lock.CheckoutRoot} {
		if strings.HasPrefix(*p, "~/") || *p == "~" {
			homeDir, err := os.UserHomeDir()
			if err == nil {
				*p = filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(*p, "~"), "/"))
			}
		}
	}
}
