package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/weave/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Paths         []string `arg:"" optional:"" help:"Files or directories to document (overrides configured sources)"`
	Output        string   `short:"o" help:"Output directory for generated pages"`
	Language      string   `short:"l" help:"Force a language instead of detecting by extension"`
	PreservePaths bool     `short:"p" help:"Keep source directory structure below the output directory"`
	Underlines    bool     `help:"Fold source extension into page names (x.py -> x_py.html)"`
	Index         *bool    `help:"Generate index.html" negatable:""`
	IgnoreErrors  bool     `help:"Skip files that fail instead of failing the run"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	b.applyOverrides(cfg)

	sources := cfg.Sources
	if len(b.Paths) > 0 {
		sources = b.Paths
	}

	rt, err := newRuntime(cfg, sources)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	summary, err := rt.processor.Run(context.Background(), sources)
	if err != nil {
		return err
	}

	fmt.Printf("weave: %d page(s) generated, %d skipped, %d failed in %s\n",
		summary.Succeeded, summary.Skipped, summary.Failed, summary.Duration.Round(time.Millisecond))
	return nil
}

// applyOverrides layers command line flags over the configuration file.
func (b *BuildCmd) applyOverrides(cfg *config.Config) {
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Language != "" {
		cfg.Language = b.Language
	}
	if b.PreservePaths {
		cfg.Output.PreservePaths = true
	}
	if b.Underlines {
		cfg.Output.Underlines = true
	}
	if b.Index != nil {
		cfg.Index = *b.Index
	}
	if b.IgnoreErrors {
		cfg.IgnoreErrors = true
	}
	slog.Debug("effective configuration",
		slog.String("output", cfg.Output.Directory),
		slog.String("language", cfg.Language),
		slog.Bool("index", cfg.Index))
}
