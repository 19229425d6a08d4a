package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 90, cfg.EnhanceBudgetSeconds)
	assert.Equal(t, "reports", cfg.ReportDir)
}

func TestLoadExplicitMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := `
ai:
  provider: deepseek
  model: deepseek-chat
  requests_per_min: 5
report_dir: out
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "deepseek", cfg.AI.Provider)
	assert.Equal(t, "deepseek-chat", cfg.AI.Model)
	assert.Equal(t, 5, cfg.AI.RequestsPerMin)
	assert.Equal(t, "out", cfg.ReportDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	// 未出现的字段保留默认值
	assert.Equal(t, 90, cfg.EnhanceBudgetSeconds)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("ENHANCE_BUDGET_SECONDS", "30")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, 30, cfg.EnhanceBudgetSeconds)
}

func TestEnvOverrideInvalidInt(t *testing.T) {
	t.Setenv("ENHANCE_BUDGET_SECONDS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.EnhanceBudgetSeconds)
}
