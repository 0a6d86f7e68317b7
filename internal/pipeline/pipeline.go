// Package pipeline orchestrates a documentation run: discover source files,
// segment and render each one in parallel, write the pages and index, and
// report the outcome through metrics and the event publisher.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/weave/internal/assemble"
	"git.home.luguber.info/inful/weave/internal/cache"
	weaveerrors "git.home.luguber.info/inful/weave/internal/errors"
	"git.home.luguber.info/inful/weave/internal/languages"
	"git.home.luguber.info/inful/weave/internal/metrics"
	"git.home.luguber.info/inful/weave/internal/notify"
	"git.home.luguber.info/inful/weave/internal/render"
	"git.home.luguber.info/inful/weave/internal/segment"
	"git.home.luguber.info/inful/weave/internal/site"
)

// Options tunes a run without touching the processor's collaborators.
type Options struct {
	// LanguageOverride forces every file to this language name, bypassing
	// extension lookup.
	LanguageOverride string
	// IgnoreErrors processes what it can: malformed block comments fall back
	// to prose and files that still fail are skipped instead of failing the
	// run.
	IgnoreErrors bool
	// Concurrency bounds parallel file processing. Zero or negative means 1.
	Concurrency int
	// Index controls generation of index.html after the pages.
	Index bool
}

// Processor runs documentation builds. Collaborators are injected so tests
// can run without NATS, Prometheus or a cache database.
type Processor struct {
	registry  *languages.Registry
	renderer  *render.Renderer
	writer    *site.Writer
	store     *cache.Store
	recorder  metrics.Recorder
	publisher notify.Publisher
	logger    *slog.Logger
	opts      Options
}

// NewProcessor wires a processor. store may be nil (no result cache),
// recorder and publisher may be nil and default to no-ops.
func NewProcessor(
	registry *languages.Registry,
	renderer *render.Renderer,
	writer *site.Writer,
	store *cache.Store,
	recorder metrics.Recorder,
	publisher notify.Publisher,
	logger *slog.Logger,
	opts Options,
) *Processor {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		registry:  registry,
		renderer:  renderer,
		writer:    writer,
		store:     store,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

// FileResult records the outcome for one source file.
type FileResult struct {
	Source      string
	Destination string
	Language    string
	Sections    int
	Outcome     metrics.OutcomeLabel
	Duration    time.Duration
	Err         error
}

// Summary aggregates a whole run.
type Summary struct {
	RunID     string
	Results   []FileResult
	Succeeded int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Run processes all given sources (files or directories). It returns an
// error when any file fails and IgnoreErrors is off; the summary is returned
// in both cases so callers can report partial progress.
func (p *Processor) Run(ctx context.Context, sources []string) (*Summary, error) {
	started := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	logger := p.logger.With(slog.String("run_id", summary.RunID))

	files, err := p.discover(sources)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		logger.Warn("no documentable files found", slog.Any("sources", sources))
		summary.Duration = time.Since(started)
		return summary, nil
	}
	logger.Info("starting run", slog.Int("files", len(files)))

	if err := p.writer.WriteAssets(p.renderer.WriteCSS); err != nil {
		return summary, weaveerrors.WrapError(err, weaveerrors.CategoryFileSystem, "write shared assets")
	}

	summary.Results = p.processAll(ctx, files)

	var pages []site.Page
	var failures []string
	for _, r := range summary.Results {
		switch r.Outcome {
		case metrics.OutcomeSuccess:
			summary.Succeeded++
			pages = append(pages, site.Page{Source: r.Source, Destination: r.Destination})
		case metrics.OutcomeSkipped:
			summary.Skipped++
			if r.Destination != "" {
				pages = append(pages, site.Page{Source: r.Source, Destination: r.Destination})
			}
		case metrics.OutcomeFailed:
			summary.Failed++
			failures = append(failures, fmt.Sprintf("%s: %v", r.Source, r.Err))
		}
	}

	if p.opts.Index {
		if err := p.writer.WriteIndex(pages); err != nil {
			return summary, weaveerrors.WrapError(err, weaveerrors.CategoryFileSystem, "write index")
		}
	}

	summary.Duration = time.Since(started)

	outcome := metrics.OutcomeSuccess
	if summary.Failed > 0 {
		outcome = metrics.OutcomeFailed
	}
	p.recorder.ObserveRunDuration(summary.Duration)
	p.recorder.IncRunOutcome(outcome)

	if err := p.publisher.PublishRun(&notify.RunEvent{
		RunID:     summary.RunID,
		Outcome:   string(outcome),
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
		Duration:  summary.Duration,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		logger.Warn("publish run event failed", slog.Any("error", err))
	}

	logger.Info("run complete",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", summary.Duration))

	if summary.Failed > 0 && !p.opts.IgnoreErrors {
		return summary, weaveerrors.New(weaveerrors.CategoryInternal, weaveerrors.SeverityError,
			fmt.Sprintf("%d file(s) failed: %s", summary.Failed, strings.Join(failures, "; ")))
	}
	return summary, nil
}

// processAll runs the per-file work with bounded concurrency, preserving
// input order in the results.
func (p *Processor) processAll(ctx context.Context, files []string) []FileResult {
	concurrency := p.opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	sem := make(chan struct{}, concurrency)
	results := make([]FileResult, len(files))

	done := make(chan int, len(files))
	for i, file := range files {
		go func(i int, file string) {
			defer func() { done <- i }()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.processFile(ctx, file)
		}(i, file)
	}
	for range files {
		<-done
	}
	return results
}

// processFile turns one source file into its HTML page.
func (p *Processor) processFile(ctx context.Context, path string) FileResult {
	started := time.Now()
	result := FileResult{Source: path}
	defer func() {
		result.Duration = time.Since(started)
		p.recorder.ObserveFileDuration(result.Language, result.Duration)
		p.recorder.IncFileOutcome(result.Outcome)
	}()

	fail := func(err error) FileResult {
		result.Err = err
		result.Outcome = metrics.OutcomeFailed
		if p.opts.IgnoreErrors {
			result.Outcome = metrics.OutcomeSkipped
			result.Destination = ""
			p.logger.Warn("skipping file", slog.String("source", path), slog.Any("error", err))
		}
		return result
	}

	desc, err := p.registry.Resolve(path, p.opts.LanguageOverride)
	if err != nil {
		return fail(weaveerrors.WrapError(err, weaveerrors.CategoryLanguage, path))
	}
	result.Language = desc.Name

	content, err := os.ReadFile(path)
	if err != nil {
		return fail(weaveerrors.WrapError(err, weaveerrors.CategoryFileSystem, "read "+path))
	}

	hash := cache.ContentHash(content)
	if p.store != nil {
		upToDate, cerr := p.store.UpToDate(ctx, path, hash, desc.Name)
		if cerr != nil {
			p.logger.Warn("cache lookup failed", slog.String("source", path), slog.Any("error", cerr))
		} else if upToDate {
			result.Outcome = metrics.OutcomeSkipped
			result.Destination = p.writer.Destination(path)
			p.logger.Debug("up to date", slog.String("source", path))
			return result
		}
	}

	doc, err := segment.Document(path, string(content), desc, segment.Options{Lenient: p.opts.IgnoreErrors})
	if err != nil {
		return fail(weaveerrors.WrapError(err, weaveerrors.CategorySegment, path))
	}
	result.Sections = len(doc.Sections)
	p.recorder.ObserveSections(desc.Name, len(doc.Sections))

	if err := assemble.RenderDocument(doc, p.renderer); err != nil {
		return fail(weaveerrors.WrapError(err, weaveerrors.CategoryRender, path))
	}

	dest, err := p.writer.WritePage(doc)
	if err != nil {
		return fail(weaveerrors.WrapError(err, weaveerrors.CategoryFileSystem, path))
	}
	result.Destination = dest
	result.Outcome = metrics.OutcomeSuccess

	if p.store != nil {
		if err := p.store.Record(ctx, path, hash, desc.Name, dest); err != nil {
			p.logger.Warn("cache record failed", slog.String("source", path), slog.Any("error", err))
		}
	}

	p.logger.Debug("generated page",
		slog.String("source", path),
		slog.String("destination", dest),
		slog.Int("sections", len(doc.Sections)))
	return result
}

// discover expands files and directories into the sorted, deduplicated list
// of documentable files. Files named explicitly are kept even when their
// language is unknown, so the per-file error surfaces; directory walks only
// pick up files the registry recognises.
func (p *Processor) discover(sources []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return nil, weaveerrors.WrapError(err, weaveerrors.CategoryFileSystem, "stat "+src)
		}
		if !info.IsDir() {
			add(src)
			continue
		}
		walked, err := p.walkDirectory(src)
		if err != nil {
			return nil, err
		}
		for _, f := range walked {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}
