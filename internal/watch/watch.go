// Package watch rebuilds the documentation whenever source files change.
// File system events are debounced into a single rebuild, and an optional
// interval triggers periodic full rebuilds as a safety net against missed
// events.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RebuildFunc runs one full documentation build.
type RebuildFunc func(ctx context.Context) error

// Options tunes the watcher.
type Options struct {
	// Debounce is how long to wait after the last event before rebuilding.
	Debounce time.Duration
	// RebuildInterval, when positive, schedules periodic full rebuilds.
	RebuildInterval time.Duration
	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string
	// MetricsHandler overrides the handler served on /metrics. Defaults to
	// the global Prometheus handler.
	MetricsHandler http.Handler
}

const defaultDebounce = 500 * time.Millisecond

// Watcher observes source paths and invokes the rebuild callback.
type Watcher struct {
	sources   []string
	rebuild   RebuildFunc
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	logger    *slog.Logger
	opts      Options

	group       workerGroup
	triggerChan chan struct{}
}

// New creates a watcher over sources. Directories are watched recursively;
// for plain files the containing directory is watched, which survives the
// rename-and-replace dance editors do on save.
func New(sources []string, rebuild RebuildFunc, logger *slog.Logger, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		sources:     sources,
		rebuild:     rebuild,
		watcher:     fsw,
		logger:      logger,
		opts:        opts,
		triggerChan: make(chan struct{}, 1),
	}

	if opts.RebuildInterval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		w.scheduler = s
	}

	return w, nil
}

// Run performs an initial rebuild, then blocks handling events until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addWatches(); err != nil {
		return err
	}

	if err := w.rebuild(ctx); err != nil {
		w.logger.Error("initial build failed", slog.Any("error", err))
	}

	w.group.Go(func() { w.watchLoop(ctx) })
	w.group.Go(func() { w.rebuildLoop(ctx) })

	if w.scheduler != nil {
		_, err := w.scheduler.NewJob(
			gocron.DurationJob(w.opts.RebuildInterval),
			gocron.NewTask(w.trigger),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		w.scheduler.Start()
	}

	var metricsServer *http.Server
	if w.opts.MetricsAddr != "" {
		handler := w.opts.MetricsHandler
		if handler == nil {
			handler = promhttp.Handler()
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsServer = &http.Server{Addr: w.opts.MetricsAddr, Handler: mux}
		w.group.Go(func() {
			w.logger.Info("metrics listener started", slog.String("addr", w.opts.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				w.logger.Error("metrics listener failed", slog.Any("error", err))
			}
		})
	}

	<-ctx.Done()

	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			w.logger.Error("scheduler shutdown failed", slog.Any("error", err))
		}
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("close file watcher failed", slog.Any("error", err))
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.group.StopAndWait(waitCtx)
}

// addWatches registers all source directories, recursing into subdirectories.
func (w *Watcher) addWatches() error {
	for _, src := range w.sources {
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("stat %s: %w", src, err)
		}
		if !info.IsDir() {
			if err := w.watcher.Add(filepath.Dir(src)); err != nil {
				return fmt.Errorf("watch %s: %w", src, err)
			}
			continue
		}
		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != src && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", src, err)
		}
	}
	return nil
}

// watchLoop turns file system events into rebuild triggers.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch before files inside
			// them produce events.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.logger.Warn("watch new directory failed",
							slog.String("path", event.Name), slog.Any("error", err))
					}
				}
			}
			w.logger.Debug("change detected",
				slog.String("path", event.Name), slog.String("op", event.Op.String()))
			w.trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", slog.Any("error", err))
		}
	}
}

// rebuildLoop debounces triggers into rebuild invocations. The rebuild runs
// in this goroutine, so rebuilds never overlap: a trigger arriving mid-rebuild
// stays queued in triggerChan and coalesces into one follow-up run.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.triggerChan:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.opts.Debounce)
		case <-timer.C:
			if err := w.rebuild(ctx); err != nil {
				w.logger.Error("rebuild failed", slog.Any("error", err))
			}
		}
	}
}

// trigger requests a debounced rebuild. A pending trigger absorbs new ones.
func (w *Watcher) trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default:
	}
}
