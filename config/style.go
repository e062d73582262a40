package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const styleFileName = "style.yaml"

// Style is the console theme read from configs/style.yaml.
type Style struct {
	Primary    string
	Secondary  string
	Background string
	Margin     int
	Padding    int
	Ready      string
	Running    string
	Done       string
}

// DefaultStyle is used whole when the style file is missing or invalid and
// per field when a single value is unusable.
func DefaultStyle() Style {
	return Style{
		Primary:    "#121010",
		Secondary:  "#695656",
		Background: "#fae3de",
		Margin:     2,
		Padding:    1,
		Ready:      "⯈",
		Running:    "⯀",
		Done:       "⬤",
	}
}

type styleFile struct {
	Basic struct {
		Primary    string `yaml:"primary"`
		Secondary  string `yaml:"secondary"`
		Background string `yaml:"background"`
	} `yaml:"basic"`
	Layout struct {
		Margin  int `yaml:"margin"`
		Padding int `yaml:"padding"`
	} `yaml:"layout"`
	Symbol struct {
		State struct {
			Ready   string `yaml:"ready"`
			Running string `yaml:"running"`
			Done    string `yaml:"done"`
		} `yaml:"state"`
	} `yaml:"symbol"`
}

// LoadStyle reads <root>/configs/style.yaml.
func LoadStyle(root string) (Style, error) {
	return LoadStyleFrom(filepath.Join(root, projectDirName, styleFileName))
}

// LoadStyleFrom reads a style file. On error the default style is returned
// together with the error.
func LoadStyleFrom(path string) (Style, error) {
	fallback := DefaultStyle()
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback, err
	}
	var parsed styleFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fallback, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return Style{
		Primary:    hexOr(parsed.Basic.Primary, fallback.Primary),
		Secondary:  hexOr(parsed.Basic.Secondary, fallback.Secondary),
		Background: hexOr(parsed.Basic.Background, fallback.Background),
		Margin:     max(parsed.Layout.Margin, 0),
		Padding:    max(parsed.Layout.Padding, 0),
		Ready:      symbolOr(parsed.Symbol.State.Ready, fallback.Ready),
		Running:    symbolOr(parsed.Symbol.State.Running, fallback.Running),
		Done:       symbolOr(parsed.Symbol.State.Done, fallback.Done),
	}, nil
}

// hexOr normalizes a #rrggbb color, returning fallback when v is not one.
func hexOr(v, fallback string) string {
	hex := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(hex) != 6 {
		return fallback
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return fallback
	}
	return "#" + strings.ToLower(hex)
}

func symbolOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
