package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceOverlay draws fg on top of bg with its top-left corner at (x, y).
// With center set, x and y are ignored and fg is centered on bg. Styled
// text on either side of fg is kept intact.
func PlaceOverlay(x, y int, fg, bg string, center bool) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	fgW, fgH := lipgloss.Width(fg), len(fgLines)
	bgW, bgH := lipgloss.Width(bg), len(bgLines)

	if fgW >= bgW && fgH >= bgH {
		return fg
	}
	if center {
		x = (bgW - fgW) / 2
		y = (bgH - fgH) / 2
	}
	x = clampInt(x, 0, max(bgW-fgW, 0))
	y = clampInt(y, 0, max(bgH-fgH, 0))

	var sb strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if i < y || i >= y+fgH {
			sb.WriteString(bgLine)
			continue
		}
		fgLine := fgLines[i-y]
		left := ansi.Truncate(bgLine, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		sb.WriteString(left)
		sb.WriteString(fgLine)
		right := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(fgLine), "")
		sb.WriteString(right)
	}
	return sb.String()
}
