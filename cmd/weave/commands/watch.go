package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/weave/internal/config"
	"git.home.luguber.info/inful/weave/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Paths        []string      `arg:"" optional:"" help:"Files or directories to watch (overrides configured sources)"`
	Output       string        `short:"o" help:"Output directory for generated pages"`
	Debounce     time.Duration `help:"Quiet period after the last change before rebuilding"`
	Interval     time.Duration `help:"Periodic full rebuild interval (0 disables)"`
	MetricsAddr  string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`
	IgnoreErrors bool          `help:"Skip files that fail instead of failing each rebuild"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}
	if w.IgnoreErrors {
		cfg.IgnoreErrors = true
	}
	if w.Debounce > 0 {
		cfg.Watch.Debounce = config.Duration(w.Debounce)
	}
	if w.Interval > 0 {
		cfg.Watch.RebuildInterval = config.Duration(w.Interval)
	}
	if w.MetricsAddr != "" {
		cfg.Watch.MetricsAddr = w.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sources := cfg.Sources
	if len(w.Paths) > 0 {
		sources = w.Paths
	}

	rt, err := newRuntime(cfg, sources)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	rebuild := func(ctx context.Context) error {
		summary, err := rt.processor.Run(ctx, sources)
		if summary != nil {
			slog.Info("rebuild finished",
				slog.Int("succeeded", summary.Succeeded),
				slog.Int("skipped", summary.Skipped),
				slog.Int("failed", summary.Failed))
		}
		if err != nil && cfg.IgnoreErrors {
			// Watch mode keeps running; the failure was already logged.
			return nil
		}
		return err
	}

	watcher, err := watch.New(sources, rebuild, slog.Default(), watch.Options{
		Debounce:        cfg.Watch.Debounce.Std(),
		RebuildInterval: cfg.Watch.RebuildInterval.Std(),
		MetricsAddr:     cfg.Watch.MetricsAddr,
		MetricsHandler:  promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}),
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("watching for changes", slog.Any("sources", sources))
	return watcher.Run(ctx)
}
