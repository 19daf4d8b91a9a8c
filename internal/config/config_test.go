package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	data := []byte("httpAddr: \"127.0.0.1:8975\"\nshodanAPIKey: abc123\ncaptureWidth: 1920\ncaptureHeight: 1080\nverbose: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "camscope.yml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8975", cfg.HTTPAddr)
	assert.Equal(t, "abc123", cfg.ShodanAPIKey)
	assert.Equal(t, 1920, cfg.CaptureWidth)
	assert.Equal(t, 1080, cfg.CaptureHeight)
	assert.True(t, cfg.Verbose)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "camscope.yaml"), []byte("{not yaml"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}
