package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/orchestra/config"
)

// Rosé Pine Moon palette
// https://rosepinetheme.com/palette/
var (
	// Base tones
	ColorBase    = lipgloss.Color("#232136")
	ColorSurface = lipgloss.Color("#2a273f")
	ColorOverlay = lipgloss.Color("#393552")
	ColorMuted   = lipgloss.Color("#6e6a86")
	ColorSubtle  = lipgloss.Color("#908caa")
	ColorText    = lipgloss.Color("#e0def4")

	// Semantic colors
	ColorLove = lipgloss.Color("#eb6f92") // error, danger
	ColorGold = lipgloss.Color("#f6c177") // warning
	ColorRose = lipgloss.Color("#ea9a97") // accent, secondary
	ColorFoam = lipgloss.Color("#9ccfd8") // info, running
	ColorIris = lipgloss.Color("#c4a7e7") // highlight, primary
)

// Theme is the part of the look that comes from configs/style.yaml. The
// semantic colors above are fixed.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Margin     int
	Padding    int

	ReadySymbol   string
	RunningSymbol string
	DoneSymbol    string
}

func NewTheme(s config.Style) Theme {
	return Theme{
		Primary:       lipgloss.Color(s.Primary),
		Secondary:     lipgloss.Color(s.Secondary),
		Background:    lipgloss.Color(s.Background),
		Margin:        s.Margin,
		Padding:       s.Padding,
		ReadySymbol:   s.Ready,
		RunningSymbol: s.Running,
		DoneSymbol:    s.Done,
	}
}

// DefaultTheme is the theme used when no style file is present.
func DefaultTheme() Theme {
	return NewTheme(config.DefaultStyle())
}

// paneStyle frames a pane. The focused pane gets the primary border.
func (t Theme) paneStyle(focused bool) lipgloss.Style {
	border := t.Secondary
	if focused {
		border = ColorIris
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, t.Padding)
}

func (t Theme) titleStyle(focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Foreground(ColorSubtle)
	if focused {
		s = s.Foreground(ColorIris)
	}
	return s
}

func (t Theme) selectedStyle(active bool) lipgloss.Style {
	if active {
		return lipgloss.NewStyle().Background(ColorIris).Foreground(ColorBase)
	}
	return lipgloss.NewStyle().Background(ColorOverlay).Foreground(ColorText)
}
