package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/kastheco/orchestra/config/auditlog"
)

var (
	infoLabelStyle = lipgloss.NewStyle().Foreground(ColorMuted).Width(11)
	infoValueStyle = lipgloss.NewStyle().Foreground(ColorText)
	auditTimeStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	auditMsgStyle  = lipgloss.NewStyle().Foreground(ColorText)
)

// ProjectData is what the Project pane shows.
type ProjectData struct {
	Name          string
	Root          string
	SpecPath      string
	ChecklistPath string
	Tasks         int
	Checklist     int
	Domains       int
	// Jobs names the running background jobs; empty means idle.
	Jobs   []string
	Events []auditlog.Event
	Now    time.Time
}

// MaxProjectEvents is how many recent audit events the Project pane lists.
const MaxProjectEvents = 8

// RenderProject draws the Project pane.
func (t Theme) RenderProject(d ProjectData, width, height int, focused bool) string {
	innerW, _ := t.InnerSize(width, height)
	row := func(label, value string) string {
		return infoLabelStyle.Render(label) + infoValueStyle.Render(fit(value, innerW-11))
	}

	jobs := "idle"
	if len(d.Jobs) > 0 {
		jobs = strings.Join(d.Jobs, ", ")
	}
	lines := []string{
		row("project", d.Name),
		row("root", d.Root),
		row("spec", d.SpecPath),
		row("todos", d.ChecklistPath),
		row("counts", fmt.Sprintf("%d tasks · %d todos · %d domains", d.Tasks, d.Checklist, d.Domains)),
		row("jobs", jobs),
		"",
	}
	if len(d.Events) == 0 {
		lines = append(lines, hintStyle.Render("no events"))
	}
	now := d.Now
	if now.IsZero() {
		now = time.Now()
	}
	for i, e := range d.Events {
		if i == MaxProjectEvents {
			break
		}
		icon, color := EventKindIcon(e.Kind)
		when := humanize.RelTime(e.Timestamp, now, "ago", "from now")
		prefix := auditTimeStyle.Render(when) + " " + lipgloss.NewStyle().Foreground(color).Render(icon) + " "
		msg := fit(e.Message, innerW-lipgloss.Width(prefix))
		lines = append(lines, prefix+auditMsgStyle.Render(msg))
	}
	return t.Frame("Project", strings.Join(lines, "\n"), width, height, focused)
}

// EventKindIcon returns the icon and color of an audit event kind.
func EventKindIcon(kind auditlog.EventKind) (icon string, color lipgloss.Color) {
	switch kind {
	case auditlog.EventJobStarted:
		return "◆", ColorFoam
	case auditlog.EventJobSucceeded:
		return "✓", ColorGold
	case auditlog.EventJobFailed, auditlog.EventDocumentLoadFailed:
		return "✕", ColorLove
	case auditlog.EventJobRejected:
		return "⏸", ColorMuted
	case auditlog.EventDocumentSaved:
		return "✦", ColorFoam
	case auditlog.EventFeaturesAppended:
		return "⇒", ColorGold
	case auditlog.EventRunTriggered:
		return "⚡", ColorGold
	case auditlog.EventRowRunning:
		return "▶", ColorFoam
	case auditlog.EventRowDone:
		return "●", ColorFoam
	case auditlog.EventRunFinished:
		return "⚡", ColorFoam
	case auditlog.EventResultReceived:
		return "→", ColorFoam
	case auditlog.EventPlannerOpened:
		return "⟳", ColorIris
	case auditlog.EventError:
		return "!", ColorLove
	default:
		return "·", ColorMuted
	}
}
