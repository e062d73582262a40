package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTOMLConfigFrom(t *testing.T) {
	t.Run("parses every section", func(t *testing.T) {
		tomlPath := filepath.Join(t.TempDir(), "config.toml")
		content := `
[ai]
model = "codex-nightly"
auto = true

[project]
name = "shop"
path = "/work/shop"

[server]
host = "0.0.0.0"
port = 9000

[console]
tick_ms = 40
watch_interval_ms = 250
watch_timeout_s = 60
exit_on_finish = true

[telemetry]
enabled = true
sentry_dsn = "https://key@example.invalid/1"
environment = "prod"

[audit]
enabled = false
path = "/tmp/audit.db"
`
		require.NoError(t, os.WriteFile(tomlPath, []byte(content), 0o644))

		cfg, err := LoadTOMLConfigFrom(tomlPath)
		require.NoError(t, err)

		assert.Equal(t, AIConfig{Model: "codex-nightly", Auto: true}, cfg.AI)
		assert.Equal(t, ProjectConfig{Name: "shop", Path: "/work/shop"}, cfg.Project)
		assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
		assert.Equal(t, 40, cfg.Console.TickMS)
		assert.True(t, cfg.Console.ExitOnFinish)
		assert.Equal(t, "prod", cfg.Telemetry.Environment)
		assert.False(t, cfg.Audit.Enabled)
		assert.Equal(t, "/tmp/audit.db", cfg.AuditPath())
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		tomlPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(tomlPath, []byte("[server]\nport = 8080\n"), 0o644))

		cfg, err := LoadTOMLConfigFrom(tomlPath)
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, "codex", cfg.AI.Model)
	})

	t.Run("returns error on missing file", func(t *testing.T) {
		_, err := LoadTOMLConfigFrom("/nonexistent/config.toml")
		assert.Error(t, err)
	})

	t.Run("returns error on invalid TOML", func(t *testing.T) {
		tomlPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(tomlPath, []byte("[invalid toml\n"), 0o644))

		_, err := LoadTOMLConfigFrom(tomlPath)
		assert.Error(t, err)
	})

	t.Run("returns error on unknown keys", func(t *testing.T) {
		tomlPath := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(tomlPath, []byte("[ai]\nmodle = \"typo\"\n"), 0o644))

		_, err := LoadTOMLConfigFrom(tomlPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown keys")
	})
}

func TestSaveTOMLConfig(t *testing.T) {
	t.Run("round-trips through save and load", func(t *testing.T) {
		tomlPath := filepath.Join(t.TempDir(), "nested", "config.toml")

		original := DefaultConfig()
		original.AI = AIConfig{Model: "codex", Auto: true}
		original.Project.Name = "shop"
		original.Console.ExitOnFinish = true

		require.NoError(t, SaveTOMLConfigTo(original, tomlPath))

		loaded, err := LoadTOMLConfigFrom(tomlPath)
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})
}
