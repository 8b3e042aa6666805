package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// panStep is how many cells one navigation key press scrolls.
const panStep = 4

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if m.help {
		switch key {
		case "esc", "q", "?":
			m.help = false
		}
		return nil
	}
	if m.confirm != actionNone {
		action := m.confirm
		m.confirm = actionNone
		if key != "y" {
			return nil
		}
		if action == actionQuit {
			return tea.Quit
		}
		m.newDocument()
		return nil
	}

	switch key {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+s":
		m.save()
		return nil
	}
	if m.eng.Key(key) {
		return nil
	}

	switch key {
	case "q":
		if m.guarded() {
			m.confirm = actionQuit
			return nil
		}
		return tea.Quit
	case "n":
		if m.guarded() {
			m.confirm = actionNew
			return nil
		}
		m.newDocument()
	case "?":
		m.help = true
	case "+", "=":
		m.eng.ZoomCenter(1)
	case "-":
		m.eng.ZoomCenter(-1)
	case "0":
		m.doc.ResetView()
	case "d":
		m.deleteHovered()
	case "x":
		m.detachHovered()
	case "y":
		m.copyHovered()
	default:
		if speed := moveSpeed(key); speed > 0 {
			m.pan(key, speed)
		}
	}
	return nil
}

// pan scrolls the view the way the pointer would drag it: "h" reveals
// content to the left.
func (m *Model) pan(key string, speed int) {
	d := float64(speed * panStep)
	switch key {
	case "h", "left", "H", "shift+left":
		m.eng.PanScreen(d, 0)
	case "l", "right", "L", "shift+right":
		m.eng.PanScreen(-d, 0)
	case "k", "up", "K", "shift+up":
		m.eng.PanScreen(0, d)
	case "j", "down", "J", "shift+down":
		m.eng.PanScreen(0, -d)
	}
}

func moveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	case "h", "l", "k", "j", "left", "right", "up", "down":
		return 1
	default:
		return 0
	}
}
