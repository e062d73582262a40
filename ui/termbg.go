package ui

import (
	"fmt"
	"io"
	"os"
)

// ApplyBackground sets the terminal's default background to the theme
// background with OSC 11, so every ANSI reset falls back to it. The returned
// function restores the terminal's own default with OSC 111.
func (t Theme) ApplyBackground() func() {
	return setTermBg(os.Stdout, string(t.Background))
}

func setTermBg(w io.Writer, hexColor string) func() {
	if hexColor == "" {
		return func() {}
	}
	fmt.Fprintf(w, "\033]11;%s\033\\", hexColor)
	return func() {
		fmt.Fprint(w, "\033]111\033\\")
	}
}
