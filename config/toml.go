package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadTOMLConfigFrom decodes a full config from path, starting from the
// defaults so that keys missing in the file keep their default values.
func LoadTOMLConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := decodeTOMLInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeTOMLInto decodes path over cfg. Only keys present in the file are
// overwritten.
func decodeTOMLInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return nil
}

// SaveTOMLConfigTo writes cfg to path, creating the parent directory.
func SaveTOMLConfigTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
