package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDemoConfig_MatchesDocumentedDefaults(t *testing.T) {
	cfg := defaultDemoConfig()
	assert.Equal(t, "5m", cfg.DurationText)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, 2.0, cfg.Rate)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDemoConfig_MergeFile_OverlaysOnlyTheFieldsPresentInTheDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: 5\nseed: 7\n"), 0o644))

	cfg := defaultDemoConfig()
	require.NoError(t, cfg.mergeFile(path))

	assert.Equal(t, 5.0, cfg.Rate)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "5m", cfg.DurationText) // untouched default
}

func TestDemoConfig_MergeFile_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: 5\ntypo_field: true\n"), 0o644))

	cfg := defaultDemoConfig()
	assert.Error(t, cfg.mergeFile(path))
}

func TestDemoConfig_MergeFile_ReportsAReadErrorForAMissingFile(t *testing.T) {
	cfg := defaultDemoConfig()
	assert.Error(t, cfg.mergeFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
