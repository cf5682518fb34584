package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileSinkJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	require.NoError(t, Init(Options{Level: "debug", Format: "json", File: path}))
	t.Cleanup(func() {
		Close()
		_ = Init(Options{})
	})

	assert.Equal(t, path, GetLogPath())

	room := With("room", "AB12")
	room.Info().Msg("room created")
	LogError("boom %d", 42)
	LogPanic("kaput")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"room":"AB12"`)
	assert.Contains(t, out, `"message":"boom 42"`)
	assert.Contains(t, out, "[PANIC] kaput")
	assert.Contains(t, out, `"stack"`)
	assert.Equal(t, 4, strings.Count(out, "\n"), "init line plus three entries")
}

func TestInit_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	require.NoError(t, Init(Options{Level: "warn", Format: "json", File: path}))
	t.Cleanup(func() {
		Close()
		_ = Init(Options{})
	})

	LogDebug("hidden")
	LogInfo("hidden too")
	LogWarn("visible")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}
