package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/weave/internal/cache"
	"git.home.luguber.info/inful/weave/internal/config"
	"git.home.luguber.info/inful/weave/internal/gitinfo"
	"git.home.luguber.info/inful/weave/internal/languages"
	"git.home.luguber.info/inful/weave/internal/metrics"
	"git.home.luguber.info/inful/weave/internal/notify"
	"git.home.luguber.info/inful/weave/internal/pipeline"
	"git.home.luguber.info/inful/weave/internal/render"
	"git.home.luguber.info/inful/weave/internal/site"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"weave.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Generate documentation pages from source files"`
	Watch     WatchCmd     `cmd:"" help:"Watch sources and regenerate on change"`
	Languages LanguagesCmd `cmd:"" help:"List supported languages"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

const defaultConfigPath = "weave.yaml"

// loadConfig reads the configuration file, or falls back to defaults when
// the default path does not exist. An explicitly given path must exist.
func loadConfig(root *CLI) (*config.Config, error) {
	if root.Config == defaultConfigPath {
		if _, err := os.Stat(root.Config); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(root.Config)
}

// runtime bundles everything a build needs, plus the cleanup for the pieces
// that hold resources.
type runtime struct {
	processor *pipeline.Processor
	registry  *prom.Registry
	cleanup   func()
}

// newRuntime wires the processor from configuration. recorded metrics land
// in the returned registry so watch mode can expose them.
func newRuntime(cfg *config.Config, sources []string) (*runtime, error) {
	reg, err := languages.Load()
	if err != nil {
		return nil, err
	}

	repo := "."
	if len(sources) > 0 {
		repo = sources[0]
		if fi, err := os.Stat(repo); err == nil && !fi.IsDir() {
			repo = filepath.Dir(repo)
		}
	}
	info, err := gitinfo.Lookup(repo)
	if err != nil {
		slog.Warn("git lookup failed", slog.Any("error", err))
	}

	writer, err := site.NewWriter(site.Options{
		OutDir:        cfg.Output.Directory,
		PreservePaths: cfg.Output.PreservePaths,
		Underlines:    cfg.Output.Underlines,
		Title:         cfg.Title,
	}, info.Short)
	if err != nil {
		return nil, err
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var store *cache.Store
	if cfg.Cache.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
			return nil, err
		}
		store, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		cleanups = append(cleanups, func() {
			if err := store.Close(); err != nil {
				slog.Warn("close cache failed", slog.Any("error", err))
			}
		})
	}

	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.Notify.URL != "" {
		np, err := notify.NewNATSPublisher(cfg.Notify.URL, cfg.Notify.Subject)
		if err != nil {
			cleanup()
			return nil, err
		}
		publisher = np
		cleanups = append(cleanups, func() {
			if err := np.Close(); err != nil {
				slog.Warn("close publisher failed", slog.Any("error", err))
			}
		})
	}

	promReg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(promReg)

	processor := pipeline.NewProcessor(
		reg,
		render.NewRenderer(),
		writer,
		store,
		recorder,
		publisher,
		slog.Default(),
		pipeline.Options{
			LanguageOverride: cfg.Language,
			IgnoreErrors:     cfg.IgnoreErrors,
			Concurrency:      cfg.Concurrency,
			Index:            cfg.Index,
		},
	)

	return &runtime{processor: processor, registry: promReg, cleanup: cleanup}, nil
}
