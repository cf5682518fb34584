package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\nredis:\n  addr: redis:6379\n"), 0o600))

	f := &flags{}
	cmd := newCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--port", "9090", "--redis_addr", "", "--round-timeout", "45s"}))

	cfg, err := loadConfig(cmd.Flags(), f)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Empty(t, cfg.Redis.Addr, "an empty flag disables redis")
	assert.Equal(t, 45, cfg.Game.RoundTimeout)
	assert.Equal(t, 90, cfg.Game.ReviewTimeout, "default kept")
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	f := &flags{}
	cmd := newCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	cfg, err := loadConfig(cmd.Flags(), f)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	f := &flags{}
	cmd := newCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "--round-timeout", "200ms"}))

	_, err := loadConfig(cmd.Flags(), f)
	assert.Error(t, err)
}
