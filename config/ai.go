package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AIConfig selects the worker tool binary and whether it may run without
// approval prompts.
type AIConfig struct {
	Model string `toml:"model"`
	Auto  bool   `toml:"auto"`
}

// ResolveAI applies a command-line override of the worker binary. Blank
// values are ignored so the configured model (or "codex") stays in effect.
func (c *Config) ResolveAI(cliModel string) AIConfig {
	ai := c.AI
	if strings.TrimSpace(ai.Model) == "" {
		ai.Model = defaultWorker
	}
	ai.Model = strings.TrimSpace(ai.Model)
	if v := strings.TrimSpace(cliModel); v != "" {
		ai.Model = v
	}
	return ai
}

// legacyAppYAML is the configs/app.yaml layout used before the TOML files.
type legacyAppYAML struct {
	AI *struct {
		Model *string `yaml:"model"`
		Auto  *bool   `yaml:"auto"`
	} `yaml:"ai"`
	Project *struct {
		Path *string `yaml:"path"`
	} `yaml:"project"`
}

func loadLegacyAppYAML(path string) (*legacyAppYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out legacyAppYAML
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *legacyAppYAML) applyTo(cfg *Config) {
	if l.AI != nil {
		if l.AI.Model != nil && strings.TrimSpace(*l.AI.Model) != "" {
			cfg.AI.Model = strings.TrimSpace(*l.AI.Model)
		}
		if l.AI.Auto != nil {
			cfg.AI.Auto = *l.AI.Auto
		}
	}
	if l.Project != nil && l.Project.Path != nil && strings.TrimSpace(*l.Project.Path) != "" {
		cfg.Project.Path = strings.TrimSpace(*l.Project.Path)
	}
}
