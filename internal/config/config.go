// Package config loads the weave configuration file. Everything in it can
// also be set from command line flags; the file exists so projects can check
// in their documentation settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	weaveerrors "git.home.luguber.info/inful/weave/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	// Title is the site title shown on the index page.
	Title string `yaml:"title,omitempty"`
	// Sources are the files and directories to document.
	Sources []string `yaml:"sources"`
	// Language forces a language for all files instead of per-extension lookup.
	Language string       `yaml:"language,omitempty"`
	Output   OutputConfig `yaml:"output"`
	// Index enables generation of index.html.
	Index bool `yaml:"index"`
	// IgnoreErrors skips files that fail instead of failing the run.
	IgnoreErrors bool `yaml:"ignore_errors"`
	// Concurrency bounds parallel file processing.
	Concurrency int          `yaml:"concurrency,omitempty"`
	Cache       CacheConfig  `yaml:"cache,omitempty"`
	Watch       WatchConfig  `yaml:"watch,omitempty"`
	Notify      NotifyConfig `yaml:"notify,omitempty"`
}

// OutputConfig controls where and how pages are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// PreservePaths keeps the source directory structure below the output
	// directory instead of flattening.
	PreservePaths bool `yaml:"preserve_paths"`
	// Underlines folds the source extension into the page name with
	// underscores, so x.py and x.css cannot collide.
	Underlines bool `yaml:"underlines"`
}

// CacheConfig controls the incremental result cache.
type CacheConfig struct {
	// Path is the SQLite database file. Empty disables the cache.
	Path string `yaml:"path,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce,omitempty"`
	// RebuildInterval schedules periodic full rebuilds. Zero disables them.
	RebuildInterval Duration `yaml:"rebuild_interval,omitempty"`
	// MetricsAddr serves Prometheus metrics in watch mode when set.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// NotifyConfig configures run-completed event publishing.
type NotifyConfig struct {
	// URL is the NATS server. Empty disables publishing.
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Sources:     []string{"."},
		Output:      OutputConfig{Directory: "docs"},
		Index:       true,
		Concurrency: 4,
		Watch:       WatchConfig{Debounce: Duration(500 * time.Millisecond)},
	}
}

// Load reads the configuration from path. Environment variables from .env
// and .env.local are loaded first (without overriding the process
// environment), and $VAR references in the file are expanded.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, weaveerrors.New(weaveerrors.CategoryConfig, weaveerrors.SeverityFatal,
				fmt.Sprintf("configuration file not found: %s", path))
		}
		return nil, weaveerrors.WrapError(err, weaveerrors.CategoryConfig, "read config file")
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, weaveerrors.WrapError(err, weaveerrors.CategoryConfig, "parse config file")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = []string{"."}
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "docs"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Duration(500 * time.Millisecond)
	}
	if c.Notify.URL != "" && c.Notify.Subject == "" {
		c.Notify.Subject = "weave.runs"
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Output.Directory == "" {
		return weaveerrors.ValidationError("output.directory must not be empty")
	}
	for _, src := range c.Sources {
		if src == "" {
			return weaveerrors.ValidationError("sources must not contain empty entries")
		}
	}
	if c.Watch.MetricsAddr != "" && !strings.Contains(c.Watch.MetricsAddr, ":") {
		return weaveerrors.ValidationError(
			fmt.Sprintf("watch.metrics_addr %q is not a host:port address", c.Watch.MetricsAddr))
	}
	return nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return weaveerrors.New(weaveerrors.CategoryConfig, weaveerrors.SeverityError,
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path))
	}

	example := Config{
		Title:   "My Project",
		Sources: []string{"src"},
		Output: OutputConfig{
			Directory:     "docs",
			PreservePaths: true,
		},
		Index:       true,
		Concurrency: 4,
		Cache:       CacheConfig{Path: ".weave/cache.db"},
		Watch: WatchConfig{
			Debounce:        Duration(500 * time.Millisecond),
			RebuildInterval: Duration(10 * time.Minute),
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return weaveerrors.WrapError(err, weaveerrors.CategoryConfig, "marshal example config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return weaveerrors.WrapError(err, weaveerrors.CategoryConfig, "write config file")
	}
	return nil
}

// loadEnvFiles loads .env and .env.local without overriding variables that
// are already set. A missing file is not an error.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", name, err)
		}
	}
}
