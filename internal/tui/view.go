package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"treeterm/internal/document"
	"treeterm/internal/engine"
	"treeterm/internal/geom"
)

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	box := m.surface()
	var b strings.Builder
	b.WriteString(m.paletteView())
	if box.Ready() {
		b.WriteByte('\n')
		g := render(m.doc, int(box.Width), int(box.Height), m.overlay())
		b.WriteString(g.styled(m.theme))
	}
	b.WriteByte('\n')
	b.WriteString(m.statusView())
	return b.String()
}

// overlay collects what the active gesture wants drawn over the document.
func (m *Model) overlay() overlay {
	mode := m.eng.Mode()
	ov := overlay{sourceID: mode.Source}

	s, ok := m.eng.Drag()
	if !ok {
		return ov
	}
	switch s.Kind {
	case engine.DragNodeCreate:
		if !m.surface().Contains(s.Cursor) {
			break
		}
		label := document.Label(s.SubjectType)
		ov.ghost = &document.Node{
			X:      s.Preview.X,
			Y:      s.Preview.Y,
			Width:  max(document.DefaultNodeWidth, float64(len(label)+4)),
			Height: document.DefaultNodeHeight,
			Label:  label,
		}
	case engine.DragNodeMove:
		if n, ok := m.doc.Node(s.SourceID); ok && s.Moved {
			n.X, n.Y = s.Preview.X, s.Preview.Y
			ov.ghost = &n
		}
	case engine.DragRelationshipCreate:
		ov.sourceID = s.SourceID
		ov.hoverID = s.HoveredTargetID
		if src, ok := m.doc.Node(s.SourceID); ok && s.Moved {
			c := src.Center()
			ov.rubberFrom = &geom.Position{X: c.X, Y: c.Y}
			ov.rubberTo = s.Preview
		}
	}
	return ov
}

func (m *Model) paletteView() string {
	mode := m.eng.Mode()
	row := []rune(strings.Repeat(" ", m.width))
	var b strings.Builder
	col := 0
	for _, e := range m.palette {
		if e.to > m.width {
			break
		}
		b.WriteString(m.theme.palette.Render(string(row[col:e.from])))
		style := m.theme.palette
		if e.active(mode) {
			style = m.theme.paletteActive
		}
		b.WriteString(style.Render(e.text))
		col = e.to
	}
	b.WriteString(m.theme.palette.Render(string(row[col:])))
	return b.String()
}

func (m *Model) statusView() string {
	switch m.confirm {
	case actionQuit:
		return m.theme.warning.Width(m.width).Render(" Quit with unsaved changes? (y/n)")
	case actionNew:
		return m.theme.warning.Width(m.width).Render(" Discard unsaved changes and start a new document? (y/n)")
	}

	mode := m.eng.Mode()
	modeStr := mode.Kind.String()
	switch mode.Kind {
	case engine.ModePlaceNode:
		modeStr += " " + document.Label(mode.NodeType)
	case engine.ModeConnect:
		if n, ok := m.doc.Node(mode.Source); ok {
			modeStr += " from " + n.Label
		}
	}
	if s, ok := m.eng.Drag(); ok && s.Kind == engine.DragPan {
		modeStr = "PAN"
	}

	left := fmt.Sprintf(" Mode: %s | Rel: %s | Zoom: %d%%",
		modeStr, m.eng.RelationshipType(), int(m.doc.View().Scale*100+0.5))
	if m.doc.Modified() {
		left += " | *"
	}

	var right string
	style := m.theme.status
	if n, ok := m.notices.visible(); ok {
		right = n.Title
		if n.Message != "" {
			right += ": " + n.Message
		}
		switch n.Severity {
		case engine.SeverityWarning:
			style = m.theme.warning
		case engine.SeverityError:
			style = m.theme.failure
		default:
			style = m.theme.info
		}
	} else {
		right = "? for help | q to quit"
	}
	right += " "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return m.theme.status.Width(m.width).MaxWidth(m.width).Render(left)
	}
	return m.theme.status.Render(left+strings.Repeat(" ", gap)) + style.Render(right)
}

func (m *Model) helpView() string {
	ed := m.cfg.Editor
	var lines []string
	lines = append(lines,
		"treeterm help",
		"=============",
		"",
		"Mouse:",
		"  drag a palette entry onto the canvas   place a node",
		"  click the canvas in place mode         place a node",
		"  drag a node                            move it",
		"  drag empty canvas                      pan",
		"  wheel                                  zoom at the pointer",
		"  connect: press on a source, release on a target",
		"           or click the source, then click the target",
		"",
		"Keys:",
	)
	for _, e := range m.palette {
		if e.nodeType != "" {
			lines = append(lines, fmt.Sprintf("  %-8s place %s", e.key, document.Label(e.nodeType)))
		}
	}
	lines = append(lines,
		fmt.Sprintf("  %-8s connect tool", ed.ConnectKey),
		fmt.Sprintf("  %-8s next relationship type (%s)", ed.RelationshipKey, strings.Join(ed.RelationshipTypes, ", ")),
		"  esc      cancel, back to select",
		"  h/j/k/l  pan (shift for faster)",
		"  + / -    zoom in / out",
		"  0        reset the view",
		"  d        delete the node under the pointer",
		"  x        remove the relationships of the node under the pointer",
		"  y        copy the node under the pointer",
		"  ctrl+s   save to "+m.path,
		"  n        new document",
		"  ?        toggle this help",
		"  q        quit",
	)
	if len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}
