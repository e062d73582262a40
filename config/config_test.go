package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/orchestra/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before all tests to set up the test environment
func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

func TestFindWorkerCommand(t *testing.T) {
	t.Run("finds codex in PATH", func(t *testing.T) {
		tempDir := t.TempDir()
		codexPath := filepath.Join(tempDir, "codex")
		require.NoError(t, os.WriteFile(codexPath, []byte("#!/bin/sh\necho mock"), 0o755))

		t.Setenv("PATH", tempDir+":"+os.Getenv("PATH"))
		t.Setenv("SHELL", "/bin/sh")

		result, err := FindWorkerCommand("codex")
		require.NoError(t, err)
		assert.Contains(t, result, "codex")
	})

	t.Run("handles missing command", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		t.Setenv("SHELL", "/bin/sh")

		result, err := FindWorkerCommand("orchestra-missing-worker")
		assert.Error(t, err)
		assert.Empty(t, result)
		assert.Contains(t, err.Error(), "command not found")
	})
}

func TestParseCommandOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"plain path", "/usr/local/bin/codex\n", "/usr/local/bin/codex"},
		{"zsh alias", "codex: aliased to /opt/codex/bin/codex", "/opt/codex/bin/codex"},
		{"arrow alias", "codex -> /opt/codex", "/opt/codex"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommandOutput(tt.output))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "codex", cfg.AI.Model)
	assert.False(t, cfg.AI.Auto)
	assert.Equal(t, "test", cfg.Project.Name)
	assert.Equal(t, "127.0.0.1:7878", cfg.Server.Addr())
	assert.Equal(t, "http://127.0.0.1:7878", cfg.Server.BaseURL())
	assert.Equal(t, 80*time.Millisecond, cfg.Console.Tick())
	assert.True(t, cfg.Audit.Enabled)
}

func TestConsoleDurations_FallBackOnZero(t *testing.T) {
	c := ConsoleConfig{}
	assert.Equal(t, 80*time.Millisecond, c.Tick())
	assert.Equal(t, 500*time.Millisecond, c.WatchInterval())
	assert.Equal(t, 15*time.Minute, c.WatchTimeout())

	c = ConsoleConfig{TickMS: 20, WatchIntervalMS: 10, WatchTimeoutS: 3}
	assert.Equal(t, 20*time.Millisecond, c.Tick())
	assert.Equal(t, 10*time.Millisecond, c.WatchInterval())
	assert.Equal(t, 3*time.Second, c.WatchTimeout())
}

func TestLoadConfig(t *testing.T) {
	t.Run("creates default global config when missing", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		cfg := LoadConfig("")
		assert.Equal(t, DefaultConfig(), cfg)
		assert.FileExists(t, filepath.Join(home, ".config", "orchestra", ConfigFileName))
	})

	t.Run("project toml overlays global", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "configs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "configs", "app.toml"),
			[]byte("[ai]\nmodel = \"my-codex\"\nauto = true\n[project]\nname = \"shop\"\n"), 0o644))

		cfg := LoadConfig(root)
		assert.Equal(t, "my-codex", cfg.AI.Model)
		assert.True(t, cfg.AI.Auto)
		assert.Equal(t, "shop", cfg.Project.Name)
		// untouched keys keep their defaults
		assert.Equal(t, 7878, cfg.Server.Port)
	})

	t.Run("legacy app.yaml applies when no project toml", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "configs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "configs", "app.yaml"),
			[]byte("ai:\n  model: \"  legacy-codex \"\n  auto: true\nproject:\n  path: /srv/work\n"), 0o644))

		cfg := LoadConfig(root)
		assert.Equal(t, "legacy-codex", cfg.AI.Model)
		assert.True(t, cfg.AI.Auto)
		assert.Equal(t, "/srv/work", cfg.Project.Path)
	})

	t.Run("broken global config falls back to defaults", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		dir := filepath.Join(home, ".config", "orchestra")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("[ai\n"), 0o644))

		assert.Equal(t, DefaultConfig(), LoadConfig(""))
	})
}

func TestGetConfigDir_MigratesLegacyDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	legacy := filepath.Join(home, ".orchestra")
	require.NoError(t, os.MkdirAll(legacy, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(legacy, "audit.db"), []byte("x"), 0o644))

	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "orchestra"), dir)
	assert.FileExists(t, filepath.Join(dir, "audit.db"))
	assert.NoDirExists(t, legacy)
}

func TestResolveAI(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, AIConfig{Model: "codex"}, cfg.ResolveAI(""))
	assert.Equal(t, "my-codex", cfg.ResolveAI("  my-codex ").Model)

	cfg.AI = AIConfig{Model: "  ", Auto: true}
	ai := cfg.ResolveAI("   ")
	assert.Equal(t, "codex", ai.Model)
	assert.True(t, ai.Auto)
}
