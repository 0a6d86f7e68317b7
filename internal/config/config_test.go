package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	weaveerrors "git.home.luguber.info/inful/weave/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFile_PopulatesAllSections(t *testing.T) {
	path := writeConfig(t, `
title: Demo
sources:
  - lib
  - tools/main.py
language: Python
output:
  directory: out
  preserve_paths: true
  underlines: true
index: true
ignore_errors: true
concurrency: 8
cache:
  path: .weave/cache.db
watch:
  debounce: 250ms
  rebuild_interval: 5m
  metrics_addr: ":9102"
notify:
  url: nats://localhost:4222
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Demo", cfg.Title)
	require.Equal(t, []string{"lib", "tools/main.py"}, cfg.Sources)
	require.Equal(t, "Python", cfg.Language)
	require.Equal(t, "out", cfg.Output.Directory)
	require.True(t, cfg.Output.PreservePaths)
	require.True(t, cfg.Output.Underlines)
	require.True(t, cfg.IgnoreErrors)
	require.Equal(t, 8, cfg.Concurrency)
	require.Equal(t, ".weave/cache.db", cfg.Cache.Path)
	require.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce.Std())
	require.Equal(t, 5*time.Minute, cfg.Watch.RebuildInterval.Std())
	require.Equal(t, ":9102", cfg.Watch.MetricsAddr)
	// Subject defaults once a URL is configured.
	require.Equal(t, "weave.runs", cfg.Notify.Subject)
}

func TestLoad_MinimalFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "sources: [lib]\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "docs", cfg.Output.Directory)
	require.Equal(t, 4, cfg.Concurrency)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce.Std())
	require.Empty(t, cfg.Notify.Subject)
}

func TestLoad_MissingFile_ReturnsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, weaveerrors.IsCategory(err, weaveerrors.CategoryConfig))
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("WEAVE_TEST_OUT", "env-out")
	path := writeConfig(t, "output:\n  directory: $WEAVE_TEST_OUT\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-out", cfg.Output.Directory)
}

func TestLoad_InvalidYAML_ReturnsConfigError(t *testing.T) {
	path := writeConfig(t, "sources: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, weaveerrors.IsCategory(err, weaveerrors.CategoryConfig))
}

func TestValidate_EmptySourceEntry_Rejected(t *testing.T) {
	cfg := Default()
	cfg.Sources = []string{"lib", ""}
	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, weaveerrors.IsCategory(err, weaveerrors.CategoryValidation))
}

func TestValidate_BadMetricsAddr_Rejected(t *testing.T) {
	cfg := Default()
	cfg.Watch.MetricsAddr = "9102"
	require.Error(t, cfg.Validate())

	cfg.Watch.MetricsAddr = ":9102"
	require.NoError(t, cfg.Validate())
}

func TestInit_ExistingFileWithoutForce_Fails(t *testing.T) {
	path := writeConfig(t, "sources: [lib]\n")
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"src"}, cfg.Sources)
	require.Equal(t, "My Project", cfg.Title)
}
