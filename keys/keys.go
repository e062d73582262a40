package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEsc
	KeyQuit
	KeyForceQuit

	KeyRequest  // Key for opening the request input overlay
	KeyGenerate // Key for enriching the plan and generating the checklist
	KeyChat     // Key for opening the plan chat
	KeyProgress // Key for showing the job progress overlay
	KeyPlanner  // Key for opening the interactive planner in a tmux split
	KeyCopy     // Key for copying the selected Working row result
	KeyReload   // Key for reloading documents from disk

	// -- Overlay keybindings --

	KeyTab   // Tab cycles the focus inside an overlay.
	KeySend  // Send submits the overlay input.
	KeyClose // Close dismisses an overlay.
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":     KeyUp,
	"k":      KeyUp,
	"down":   KeyDown,
	"j":      KeyDown,
	"left":   KeyLeft,
	"h":      KeyLeft,
	"right":  KeyRight,
	"l":      KeyRight,
	"enter":  KeyEnter,
	"esc":    KeyEsc,
	"q":      KeyQuit,
	"ctrl+c": KeyForceQuit,
	"i":      KeyRequest,
	"g":      KeyGenerate,
	"c":      KeyChat,
	"p":      KeyProgress,
	"o":      KeyPlanner,
	"y":      KeyCopy,
	"r":      KeyReload,
}

// GlobalkeyBindings is a global, immutable map of KeyName tot keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	KeyLeft: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	KeyRight: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "select"),
	),
	KeyEsc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	KeyForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	KeyRequest: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "request"),
	),
	KeyGenerate: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "generate"),
	),
	KeyChat: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "chat"),
	),
	KeyProgress: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "progress"),
	),
	KeyPlanner: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "planner"),
	),
	KeyCopy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	KeyReload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),

	// -- Special keybindings --

	KeyTab: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "focus"),
	),
	KeySend: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "send"),
	),
	KeyClose: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}

// StatusHints are the bindings shown in the status bar, in order.
var StatusHints = []KeyName{
	KeyEnter, KeyRequest, KeyGenerate, KeyChat, KeyProgress, KeyPlanner, KeyCopy, KeyReload, KeyQuit,
}
