package overlay

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Overlay palette, the Rosé Pine Moon values also used by the ui panes.
var (
	colorBase    = lipgloss.Color("#232136")
	colorOverlay = lipgloss.Color("#393552")
	colorMuted   = lipgloss.Color("#6e6a86")
	colorSubtle  = lipgloss.Color("#908caa")
	colorText    = lipgloss.Color("#e0def4")

	colorLove = lipgloss.Color("#eb6f92") // errors
	colorGold = lipgloss.Color("#f6c177") // running jobs
	colorFoam = lipgloss.Color("#9ccfd8") // success, info
	colorIris = lipgloss.Color("#c4a7e7") // titles, focus
)

// ThemeRosePine is the huh theme of the make-spec questionnaire.
func ThemeRosePine() *huh.Theme {
	t := huh.ThemeBase()

	f := &t.Focused
	f.Base = f.Base.BorderForeground(colorIris)
	f.Card = f.Base
	f.Title = f.Title.Foreground(colorIris).Bold(true)
	f.NoteTitle = f.NoteTitle.Foreground(colorIris).Bold(true).MarginBottom(1)
	f.Description = f.Description.Foreground(colorMuted)
	f.ErrorIndicator = f.ErrorIndicator.Foreground(colorLove)
	f.ErrorMessage = f.ErrorMessage.Foreground(colorLove)
	f.SelectSelector = f.SelectSelector.Foreground(colorIris)
	f.Option = f.Option.Foreground(colorText)
	f.SelectedOption = f.SelectedOption.Foreground(colorFoam)
	f.FocusedButton = f.FocusedButton.Foreground(colorBase).Background(colorIris)
	f.Next = f.FocusedButton
	f.BlurredButton = f.BlurredButton.Foreground(colorSubtle).Background(colorOverlay)

	f.TextInput.Cursor = f.TextInput.Cursor.Foreground(colorFoam)
	f.TextInput.Placeholder = f.TextInput.Placeholder.Foreground(colorMuted)
	f.TextInput.Prompt = f.TextInput.Prompt.Foreground(colorIris)
	f.TextInput.Text = f.TextInput.Text.Foreground(colorText)

	// Answered questions keep their colors but lose the border.
	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Card = t.Blurred.Base

	t.Group.Title = f.Title
	t.Group.Description = f.Description
	return t
}
