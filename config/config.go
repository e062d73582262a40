package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kastheco/orchestra/log"
)

const (
	ConfigFileName  = "config.toml"
	defaultWorker   = "codex"
	defaultProject  = "test"
	defaultHost     = "127.0.0.1"
	defaultPort     = 7878
	projectDirName  = "configs"
	projectTOMLName = "app.toml"
)

var aliasRegex = regexp.MustCompile(`(?:aliased to|->|=)\s*([^\s]+)`)

// GetConfigDir returns ~/.config/orchestra. A legacy ~/.orchestra directory is
// moved there on first use.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	newDir := filepath.Join(homeDir, ".config", "orchestra")

	if _, err := os.Stat(newDir); err == nil {
		return newDir, nil
	}

	oldDir := filepath.Join(homeDir, ".orchestra")
	if _, err := os.Stat(oldDir); err == nil {
		if mkErr := os.MkdirAll(filepath.Dir(newDir), 0o755); mkErr != nil {
			log.ErrorLog.Printf("failed to create %s: %v", filepath.Dir(newDir), mkErr)
			return oldDir, nil
		}
		if renameErr := os.Rename(oldDir, newDir); renameErr != nil {
			log.ErrorLog.Printf("failed to migrate %s to %s: %v", oldDir, newDir, renameErr)
			return oldDir, nil
		}
	}
	return newDir, nil
}

// Config represents the application configuration.
type Config struct {
	AI        AIConfig        `toml:"ai"`
	Project   ProjectConfig   `toml:"project"`
	Server    ServerConfig    `toml:"server"`
	Console   ConsoleConfig   `toml:"console"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Audit     AuditConfig     `toml:"audit"`
}

// ProjectConfig selects the project under <root>/.project.
type ProjectConfig struct {
	Name string `toml:"name"`
	// Path overrides the repository root used as the project base.
	Path string `toml:"path,omitempty"`
}

// ServerConfig is the bind address of the callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BaseURL returns the http base the workers post results to.
func (s ServerConfig) BaseURL() string {
	return "http://" + s.Addr()
}

// ConsoleConfig tunes the interactive console loop.
type ConsoleConfig struct {
	TickMS          int  `toml:"tick_ms"`
	WatchIntervalMS int  `toml:"watch_interval_ms"`
	WatchTimeoutS   int  `toml:"watch_timeout_s"`
	ExitOnFinish    bool `toml:"exit_on_finish"`
}

func (c ConsoleConfig) Tick() time.Duration {
	return durationOr(c.TickMS, time.Millisecond, 80*time.Millisecond)
}

func (c ConsoleConfig) WatchInterval() time.Duration {
	return durationOr(c.WatchIntervalMS, time.Millisecond, 500*time.Millisecond)
}

func (c ConsoleConfig) WatchTimeout() time.Duration {
	return durationOr(c.WatchTimeoutS, time.Second, 15*time.Minute)
}

func durationOr(v int, unit, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * unit
}

// TelemetryConfig controls crash reporting.
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	SentryDSN   string `toml:"sentry_dsn,omitempty"`
	Environment string `toml:"environment,omitempty"`
}

// AuditConfig controls the sqlite audit trail.
type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AI:      AIConfig{Model: defaultWorker},
		Project: ProjectConfig{Name: defaultProject},
		Server:  ServerConfig{Host: defaultHost, Port: defaultPort},
		Console: ConsoleConfig{
			TickMS:          80,
			WatchIntervalMS: 500,
			WatchTimeoutS:   900,
		},
		Telemetry: TelemetryConfig{Environment: "dev"},
		Audit:     AuditConfig{Enabled: true},
	}
}

// AuditPath returns the sqlite file of the audit trail.
func (c *Config) AuditPath() string {
	if c.Audit.Path != "" {
		return c.Audit.Path
	}
	dir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "orchestra-audit.db")
	}
	return filepath.Join(dir, "audit.db")
}

// LoadConfig reads the global config (creating it with defaults when absent)
// and overlays the project files found under root. Errors never fail the
// caller: the defaults are used instead.
func LoadConfig(root string) *Config {
	cfg := DefaultConfig()

	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
	} else {
		path := filepath.Join(configDir, ConfigFileName)
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if saveErr := SaveTOMLConfigTo(cfg, path); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
		} else if err := decodeTOMLInto(cfg, path); err != nil {
			log.ErrorLog.Printf("failed to parse config file: %v", err)
			cfg = DefaultConfig()
		}
	}

	if root != "" {
		overlayProject(cfg, root)
	}
	return cfg
}

// overlayProject applies <root>/configs/app.toml, then the legacy
// <root>/configs/app.yaml ai section for keys the TOML file left unset.
func overlayProject(cfg *Config, root string) {
	tomlPath := filepath.Join(root, projectDirName, projectTOMLName)
	if _, err := os.Stat(tomlPath); err == nil {
		if err := decodeTOMLInto(cfg, tomlPath); err != nil {
			log.WarningLog.Printf("failed to load project config %s: %v", tomlPath, err)
		}
		return
	}

	legacy, err := loadLegacyAppYAML(filepath.Join(root, projectDirName, "app.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarningLog.Printf("failed to load legacy app.yaml: %v", err)
		}
		return
	}
	legacy.applyTo(cfg)
}

// SaveConfig writes cfg to the global config file.
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	return SaveTOMLConfigTo(cfg, filepath.Join(configDir, ConfigFileName))
}

// FindWorkerCommand resolves a worker program name to an executable path,
// checking shell aliases before PATH.
func FindWorkerCommand(name string) (string, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}

	var shellCmd string
	if strings.Contains(shell, "zsh") {
		shellCmd = fmt.Sprintf("source ~/.zshrc &>/dev/null || true; which %s", name)
	} else if strings.Contains(shell, "bash") {
		shellCmd = fmt.Sprintf("source ~/.bashrc &>/dev/null || true; which %s", name)
	} else {
		shellCmd = fmt.Sprintf("which %s", name)
	}

	output, err := exec.Command(shell, "-c", shellCmd).Output()
	if err == nil && len(output) > 0 {
		if path := parseCommandOutput(string(output)); path != "" {
			return path, nil
		}
	}

	commandPath, err := exec.LookPath(name)
	if err == nil {
		return commandPath, nil
	}
	return "", fmt.Errorf("%s command not found in aliases or PATH", name)
}

func parseCommandOutput(output string) string {
	path := strings.TrimSpace(output)
	if path == "" {
		return ""
	}

	matches := aliasRegex.FindStringSubmatch(path)
	if len(matches) > 1 {
		return matches[1]
	}
	return path
}
