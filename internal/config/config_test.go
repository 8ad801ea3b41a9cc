// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.PollIntervalSeconds)
	assert.Equal(t, "https://nyaa.si/", cfg.FeedURL)
}

func TestLoadReadsTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
host = "127.0.0.1"
port = 9000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoadEnvOverridesPostgres(t *testing.T) {
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "anime")
	t.Setenv("PG_PASS", "secret")
	t.Setenv("PG_DATABASE", "anime_service")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.PGHost)
	assert.Equal(t, 6543, cfg.PGPort)
	assert.Equal(t, "anime", cfg.PGUser)
	assert.Equal(t, "secret", cfg.PGPass)
	assert.Equal(t, "anime_service", cfg.PGDatabase)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
}
