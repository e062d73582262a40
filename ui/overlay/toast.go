package overlay

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ToastType identifies the kind of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastError
	ToastLoading
)

// Display constants.
const (
	FadeInDuration  = 150 * time.Millisecond
	FadeOutDuration = 150 * time.Millisecond

	InfoDismissAfter    = 3 * time.Second
	SuccessDismissAfter = 3 * time.Second
	ErrorDismissAfter   = 6 * time.Second

	MinToastWidth = 30
	MaxToastWidth = 60
	MaxToasts     = 4
)

var idCounter atomic.Uint64

type toastPhase int

const (
	phaseEntering toastPhase = iota
	phaseShown
	phaseLeaving
)

type toast struct {
	ID       string
	Type     ToastType
	Message  string
	phase    toastPhase
	since    time.Time
	lifetime time.Duration // 0 keeps the toast until it is resolved
	width    int
}

func toastWidth(msg string) int {
	// icon, space, padding and border around the message
	return clampInt(runewidth.StringWidth(msg)+7, MinToastWidth, MaxToastWidth)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lifetimeOf(typ ToastType) time.Duration {
	switch typ {
	case ToastError:
		return ErrorDismissAfter
	case ToastSuccess:
		return SuccessDismissAfter
	case ToastLoading:
		return 0
	default:
		return InfoDismissAfter
	}
}

// ToastManager shows job and save notifications in the top-right corner.
// Toasts never take keyboard focus.
type ToastManager struct {
	toasts  []*toast
	spinner *spinner.Model
	width   int
	height  int
	now     func() time.Time
}

func NewToastManager(s *spinner.Model) *ToastManager {
	return &ToastManager{spinner: s, now: time.Now}
}

func (tm *ToastManager) SetSize(width, height int) {
	tm.width = width
	tm.height = height
}

func (tm *ToastManager) Info(msg string) string    { return tm.add(ToastInfo, msg) }
func (tm *ToastManager) Success(msg string) string { return tm.add(ToastSuccess, msg) }
func (tm *ToastManager) Error(msg string) string   { return tm.add(ToastError, msg) }

// Loading shows a toast that stays until Resolve is called with its id.
func (tm *ToastManager) Loading(msg string) string { return tm.add(ToastLoading, msg) }

// Resolve turns the toast with id into a toast of typ. Unknown ids are
// ignored.
func (tm *ToastManager) Resolve(id string, typ ToastType, msg string) {
	for _, t := range tm.toasts {
		if t.ID != id {
			continue
		}
		t.Type = typ
		t.Message = msg
		t.width = toastWidth(msg)
		t.phase = phaseShown
		t.since = tm.now()
		t.lifetime = lifetimeOf(typ)
		if t.lifetime == 0 {
			t.lifetime = SuccessDismissAfter
		}
		return
	}
}

func (tm *ToastManager) HasActiveToasts() bool {
	return len(tm.toasts) > 0
}

func (tm *ToastManager) add(typ ToastType, msg string) string {
	now := tm.now()
	// A repeated message refreshes the visible toast instead of stacking.
	for _, t := range tm.toasts {
		if t.Type == typ && t.Message == msg && t.phase != phaseLeaving {
			if t.phase == phaseShown {
				t.since = now
			}
			return t.ID
		}
	}

	for len(tm.toasts) >= MaxToasts {
		tm.dropOldest()
	}
	t := &toast{
		ID:       fmt.Sprintf("toast-%d", idCounter.Add(1)),
		Type:     typ,
		Message:  msg,
		phase:    phaseEntering,
		since:    now,
		lifetime: lifetimeOf(typ),
		width:    toastWidth(msg),
	}
	tm.toasts = append(tm.toasts, t)
	return t.ID
}

// dropOldest removes the oldest toast, preferring ones that are not loading.
func (tm *ToastManager) dropOldest() {
	for i, t := range tm.toasts {
		if t.Type != ToastLoading {
			tm.toasts = append(tm.toasts[:i], tm.toasts[i+1:]...)
			return
		}
	}
	tm.toasts = tm.toasts[1:]
}

// ToastTickMsg drives toast phase changes while toasts are shown.
type ToastTickMsg struct{}

// Tick advances every toast and drops the ones that finished leaving.
func (tm *ToastManager) Tick() {
	now := tm.now()
	alive := tm.toasts[:0]
	for _, t := range tm.toasts {
		elapsed := now.Sub(t.since)
		switch t.phase {
		case phaseEntering:
			if elapsed >= FadeInDuration {
				t.phase, t.since = phaseShown, now
			}
		case phaseShown:
			if t.lifetime > 0 && elapsed >= t.lifetime {
				t.phase, t.since = phaseLeaving, now
			}
		case phaseLeaving:
			if elapsed >= FadeOutDuration {
				continue
			}
		}
		alive = append(alive, t)
	}
	tm.toasts = alive
}

func toastColor(typ ToastType) lipgloss.Color {
	switch typ {
	case ToastError:
		return colorLove
	case ToastLoading:
		return colorGold
	default:
		return colorFoam
	}
}

func (tm *ToastManager) icon(typ ToastType) string {
	switch typ {
	case ToastSuccess:
		return "✓"
	case ToastError:
		return "✗"
	case ToastLoading:
		return tm.spinner.View()
	default:
		return "▸"
	}
}

func (tm *ToastManager) render(t *toast) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(toastColor(t.Type)).
		Padding(0, 1).
		Width(t.width)
	if t.phase != phaseShown {
		style = style.Faint(true)
	}
	icon := lipgloss.NewStyle().Foreground(toastColor(t.Type)).Render(tm.icon(t.Type))
	return style.Render(icon + " " + t.Message)
}

// View renders the toasts stacked vertically.
func (tm *ToastManager) View() string {
	if len(tm.toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(tm.toasts))
	for _, t := range tm.toasts {
		rendered = append(rendered, tm.render(t))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// GetPosition returns where the toast stack is drawn: right-aligned under
// the top edge.
func (tm *ToastManager) GetPosition() (int, int) {
	widest := MinToastWidth
	for _, t := range tm.toasts {
		widest = max(widest, t.width)
	}
	return max(tm.width-widest-4, 0), 1
}
