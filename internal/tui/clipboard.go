package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"treeterm/internal/document"
)

func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// nodeSummary describes a node and its outgoing relationships as plain
// text, one relationship per line.
func nodeSummary(doc *document.Document, n document.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", n.Label, n.Type)
	for _, r := range doc.Relationships() {
		if r.Source != n.ID {
			continue
		}
		target := r.Target
		if t, ok := doc.Node(r.Target); ok {
			target = t.Label
		}
		fmt.Fprintf(&b, "\n  %s -> %s", r.Type, target)
	}
	return b.String()
}
