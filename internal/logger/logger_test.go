package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTeeToFile(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, Init("debug", true))
	defer Close()

	Info("tee marker %d", 42)

	entries, err := os.ReadDir("logs")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "analysis_"))

	data, err := os.ReadFile(filepath.Join("logs", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "tee marker 42")
}

func TestInitInvalidLevelFallsBack(t *testing.T) {
	require.NoError(t, Init("nonsense", false))
	// 非法串回落到 info，不中断启动
}
