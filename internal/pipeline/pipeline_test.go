package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/weave/internal/cache"
	"git.home.luguber.info/inful/weave/internal/languages"
	"git.home.luguber.info/inful/weave/internal/metrics"
	"git.home.luguber.info/inful/weave/internal/notify"
	"git.home.luguber.info/inful/weave/internal/render"
	"git.home.luguber.info/inful/weave/internal/site"
)

func newTestProcessor(t *testing.T, outDir string, store *cache.Store, opts Options) *Processor {
	t.Helper()

	registry, err := languages.Load()
	require.NoError(t, err)

	writer, err := site.NewWriter(site.Options{OutDir: outDir}, "")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewProcessor(registry, render.NewRenderer(), writer, store, metrics.NoopRecorder{}, notify.NopPublisher{}, logger, opts)
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_DirectorySource_DocumentsKnownFilesOnly(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "example.py", "# Heading\nx = 1\n")
	writeSource(t, src, "notes.txt", "not a source file\n")
	writeSource(t, src, "sub/util.go", "// Utility helpers.\npackage util\n")

	p := newTestProcessor(t, out, nil, Options{Index: true, Concurrency: 4})
	summary, err := p.Run(context.Background(), []string{src})
	require.NoError(t, err)

	require.Equal(t, 2, summary.Succeeded)
	require.Zero(t, summary.Failed)
	require.NotEmpty(t, summary.RunID)

	require.FileExists(t, filepath.Join(out, "example.html"))
	require.FileExists(t, filepath.Join(out, "util.html"))
	require.FileExists(t, filepath.Join(out, "index.html"))
	require.FileExists(t, filepath.Join(out, "weave.css"))
	require.NoFileExists(t, filepath.Join(out, "notes.html"))
}

func TestRun_ResultsSortedBySourcePath(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "zeta.py", "z = 1\n")
	writeSource(t, src, "alpha.py", "a = 1\n")

	p := newTestProcessor(t, out, nil, Options{Concurrency: 2})
	summary, err := p.Run(context.Background(), []string{src})
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	require.Equal(t, filepath.Join(src, "alpha.py"), summary.Results[0].Source)
	require.Equal(t, filepath.Join(src, "zeta.py"), summary.Results[1].Source)
}

func TestRun_UnknownExplicitFile_FailsRun(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	file := writeSource(t, src, "notes.txt", "plain text\n")

	p := newTestProcessor(t, out, nil, Options{})
	summary, err := p.Run(context.Background(), []string{file})
	require.Error(t, err)
	require.Equal(t, 1, summary.Failed)
	require.ErrorIs(t, summary.Results[0].Err, languages.ErrUnknownLanguage)
}

func TestRun_UnterminatedBlock_StrictFailsLenientSkips(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	file := writeSource(t, src, "broken.go", "/* never closed\npackage broken\n")

	strict := newTestProcessor(t, out, nil, Options{})
	summary, err := strict.Run(context.Background(), []string{file})
	require.Error(t, err)
	require.Equal(t, 1, summary.Failed)

	lenient := newTestProcessor(t, t.TempDir(), nil, Options{IgnoreErrors: true})
	summary, err = lenient.Run(context.Background(), []string{file})
	require.NoError(t, err)
	// Lenient segmentation recovers the file instead of skipping it.
	require.Equal(t, 1, summary.Succeeded)
	require.Zero(t, summary.Failed)
}

func TestRun_LanguageOverride_AppliesToAllFiles(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	file := writeSource(t, src, "script.weird", "# a comment\nputs 1\n")

	p := newTestProcessor(t, out, nil, Options{LanguageOverride: "ruby"})
	summary, err := p.Run(context.Background(), []string{file})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, "ruby", summary.Results[0].Language)
}

func TestRun_CachedFile_SkippedOnSecondRun(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	file := writeSource(t, src, "example.py", "# Heading\nx = 1\n")

	store, err := cache.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	p := newTestProcessor(t, out, store, Options{})

	summary, err := p.Run(context.Background(), []string{file})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)

	summary, err = p.Run(context.Background(), []string{file})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Zero(t, summary.Succeeded)

	// Changing content invalidates the cache entry.
	require.NoError(t, os.WriteFile(file, []byte("# Changed\ny = 2\n"), 0o644))
	summary, err = p.Run(context.Background(), []string{file})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)
}

func TestRun_NoDocumentableFiles_SucceedsEmpty(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "notes.txt", "plain\n")

	p := newTestProcessor(t, out, nil, Options{})
	summary, err := p.Run(context.Background(), []string{src})
	require.NoError(t, err)
	require.Empty(t, summary.Results)
}

func TestRun_HiddenAndVendorDirectories_Ignored(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "keep.py", "x = 1\n")
	writeSource(t, src, ".git/skip.py", "x = 1\n")
	writeSource(t, src, "vendor/skip.py", "x = 1\n")

	p := newTestProcessor(t, out, nil, Options{})
	summary, err := p.Run(context.Background(), []string{src})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	require.Equal(t, filepath.Join(src, "keep.py"), summary.Results[0].Source)
}
