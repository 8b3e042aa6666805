package tui

import (
	"sort"

	"treeterm/internal/document"
	"treeterm/internal/engine"
	"treeterm/internal/geom"
)

// paletteEntry is one clickable item of the top row. Entries without a node
// type arm the connect tool.
type paletteEntry struct {
	key      string
	text     string
	nodeType string
	from, to int // columns, to exclusive
}

func buildPalette(nodeTypes map[string]string, connectKey string) []paletteEntry {
	keys := make([]string, 0, len(nodeTypes))
	for k := range nodeTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var entries []paletteEntry
	col := 1
	add := func(key, label, nodeType string) {
		text := " " + key + " " + label + " "
		entries = append(entries, paletteEntry{
			key:      key,
			text:     text,
			nodeType: nodeType,
			from:     col,
			to:       col + len(text),
		})
		col += len(text) + 1
	}
	for _, k := range keys {
		add(k, document.Label(nodeTypes[k]), nodeTypes[k])
	}
	if connectKey != "" {
		add(connectKey, "connect", "")
	}
	return entries
}

func (m *Model) paletteAt(x int) (paletteEntry, bool) {
	for _, e := range m.palette {
		if x >= e.from && x < e.to {
			return e, true
		}
	}
	return paletteEntry{}, false
}

// pressPalette starts a palette-to-canvas drag for a node entry, or arms the
// connect tool.
func (m *Model) pressPalette(x int, p geom.Position) {
	e, ok := m.paletteAt(x)
	if !ok {
		return
	}
	if e.nodeType == "" {
		m.eng.ActivateConnect()
		return
	}
	m.eng.StartDrag(e.nodeType, p)
}

func (e paletteEntry) active(mode engine.Mode) bool {
	if e.nodeType == "" {
		return mode.Kind == engine.ModeConnect
	}
	return mode.Kind == engine.ModePlaceNode && mode.NodeType == e.nodeType
}
