// Package keys contains the key-event record consumed by the editing
// engine and the application-level keybinding definitions.
package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Event is a single discrete key event. Sequence carries the literal
// character(s) for character-keyed input (e.g. "d", "3", "$"); Name
// carries symbolic keys ("escape", "return", "tab", "left", ...).
type Event struct {
	Name     string
	Sequence string
	Ctrl     bool
	Meta     bool
	Shift    bool
}

// FromTea translates a bubbletea key message into an Event.
func FromTea(msg tea.KeyMsg) Event {
	switch msg.Type {
	case tea.KeyRunes:
		return Event{Sequence: string(msg.Runes), Meta: msg.Alt}
	case tea.KeySpace:
		return Event{Sequence: " ", Meta: msg.Alt}
	case tea.KeyEscape:
		return Event{Name: "escape"}
	case tea.KeyEnter:
		return Event{Name: "return", Meta: msg.Alt}
	case tea.KeyTab:
		return Event{Name: "tab"}
	case tea.KeyShiftTab:
		return Event{Name: "tab", Shift: true}
	case tea.KeyBackspace:
		return Event{Name: "backspace", Meta: msg.Alt}
	case tea.KeyDelete:
		return Event{Name: "delete"}
	case tea.KeyLeft:
		return Event{Name: "left"}
	case tea.KeyRight:
		return Event{Name: "right"}
	case tea.KeyUp:
		return Event{Name: "up"}
	case tea.KeyDown:
		return Event{Name: "down"}
	case tea.KeyHome:
		return Event{Name: "home"}
	case tea.KeyEnd:
		return Event{Name: "end"}
	case tea.KeyCtrlV:
		return Event{Sequence: "v", Ctrl: true}
	case tea.KeyCtrlJ:
		return Event{Name: "return", Ctrl: true}
	case tea.KeyCtrlA:
		return Event{Sequence: "a", Ctrl: true}
	case tea.KeyCtrlE:
		return Event{Sequence: "e", Ctrl: true}
	case tea.KeyCtrlU:
		return Event{Sequence: "u", Ctrl: true}
	case tea.KeyCtrlK:
		return Event{Sequence: "k", Ctrl: true}
	default:
		return Event{}
	}
}

// IsZero reports whether the event carries no key at all (an input the
// translation layer does not understand).
func (e Event) IsZero() bool {
	return e.Name == "" && e.Sequence == ""
}

// KeyMap defines the application-level keybindings, i.e. the chrome
// around the editor rather than the editor itself.
type KeyMap struct {
	Quit      key.Binding
	ToggleVim key.Binding
	Help      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ToggleVim: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "toggle vim input"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+_"),
			key.WithHelp("ctrl+_", "help"),
		),
	}
}
