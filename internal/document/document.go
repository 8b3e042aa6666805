// Package document holds the diagram being edited: nodes, the directed
// relationships between them and the visible view rectangle. It applies the
// mutations the engine requests and answers its hit tests.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"treeterm/internal/geom"
	"treeterm/internal/validate"
)

const (
	DefaultNodeWidth  = 12.0
	DefaultNodeHeight = 3.0
)

var (
	ErrNodeNotFound         = errors.New("node not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrEmptyType            = errors.New("type must not be empty")
)

// Node is a box on the canvas. X, Y is its top-left corner in canvas space.
type Node struct {
	ID     string  `toml:"id"`
	Type   string  `toml:"type"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Label  string  `toml:"label,omitempty"`
}

// Contains reports whether p lies on the node. The right and bottom edges
// are exclusive.
func (n Node) Contains(p geom.Position) bool {
	return p.X >= n.X && p.X < n.X+n.Width && p.Y >= n.Y && p.Y < n.Y+n.Height
}

func (n Node) Center() geom.Position {
	return geom.Position{X: n.X + n.Width/2, Y: n.Y + n.Height/2}
}

// Relationship is a directed, typed edge from Source to Target.
type Relationship struct {
	ID     string `toml:"id"`
	Source string `toml:"source"`
	Target string `toml:"target"`
	Type   string `toml:"type"`
}

// Document is not safe for concurrent use; it is owned by the editor's
// event loop.
type Document struct {
	nodes    []Node
	rels     []Relationship
	view     geom.ViewRect
	newID    func() string
	modified bool
}

// New returns an empty document whose view covers width by height canvas
// units at scale 1.
func New(width, height float64) *Document {
	return &Document{
		view:  geom.DefaultView(width, height),
		newID: uuid.NewString,
	}
}

// Label derives the display label for a node type.
func Label(nodeType string) string {
	return strings.ReplaceAll(nodeType, "_", " ")
}

func (d *Document) CreateNode(nodeType string, x, y float64) (string, error) {
	if nodeType == "" {
		return "", fmt.Errorf("create node: %w", ErrEmptyType)
	}
	label := Label(nodeType)
	n := Node{
		ID:     d.newID(),
		Type:   nodeType,
		X:      x,
		Y:      y,
		Width:  max(DefaultNodeWidth, float64(len(label)+4)),
		Height: DefaultNodeHeight,
		Label:  label,
	}
	d.nodes = append(d.nodes, n)
	d.modified = true
	return n.ID, nil
}

// CreateRelationship links two existing nodes. Self and duplicate checks
// belong to the caller.
func (d *Document) CreateRelationship(sourceID, targetID, relType string) (string, error) {
	if relType == "" {
		return "", fmt.Errorf("create relationship: %w", ErrEmptyType)
	}
	for _, id := range []string{sourceID, targetID} {
		if d.index(id) < 0 {
			return "", fmt.Errorf("create relationship: %w: %s", ErrNodeNotFound, id)
		}
	}
	r := Relationship{ID: d.newID(), Source: sourceID, Target: targetID, Type: relType}
	d.rels = append(d.rels, r)
	d.modified = true
	return r.ID, nil
}

// MoveNode places the node's top-left corner at x, y.
func (d *Document) MoveNode(id string, x, y float64) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("move node: %w: %s", ErrNodeNotFound, id)
	}
	d.nodes[i].X = x
	d.nodes[i].Y = y
	d.modified = true
	return nil
}

// DeleteNode removes the node and every relationship attached to it.
func (d *Document) DeleteNode(id string) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("delete node: %w: %s", ErrNodeNotFound, id)
	}
	d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)

	kept := d.rels[:0]
	for _, r := range d.rels {
		if r.Source != id && r.Target != id {
			kept = append(kept, r)
		}
	}
	d.rels = kept
	d.modified = true
	return nil
}

func (d *Document) DeleteRelationship(id string) error {
	for i, r := range d.rels {
		if r.ID == id {
			d.rels = append(d.rels[:i], d.rels[i+1:]...)
			d.modified = true
			return nil
		}
	}
	return fmt.Errorf("delete relationship: %w: %s", ErrRelationshipNotFound, id)
}

// PanView moves the view origin by a canvas-space delta.
func (d *Document) PanView(dx, dy float64) {
	d.view = d.view.Pan(dx, dy)
}

// ZoomView scales the view around a canvas-space focal point.
func (d *Document) ZoomView(factor, focalX, focalY float64) {
	d.view = d.view.Zoom(factor, geom.Position{X: focalX, Y: focalY})
}

// Resize follows the rendering surface, keeping origin and scale.
func (d *Document) Resize(width, height float64) {
	d.view = d.view.Resize(width, height)
}

// ResetView returns to the origin at scale 1.
func (d *Document) ResetView() {
	d.view = geom.DefaultView(d.view.Width, d.view.Height)
}

// Reset clears the document, as for a new diagram.
func (d *Document) Reset() {
	d.nodes = nil
	d.rels = nil
	d.ResetView()
	d.modified = false
}

func (d *Document) View() geom.ViewRect { return d.view }

// NodeAt returns the topmost node under p. Nodes are drawn in insertion
// order, so the last match wins.
func (d *Document) NodeAt(p geom.Position) (string, bool) {
	for i := len(d.nodes) - 1; i >= 0; i-- {
		if d.nodes[i].Contains(p) {
			return d.nodes[i].ID, true
		}
	}
	return "", false
}

func (d *Document) NodePosition(id string) (geom.Position, bool) {
	n, ok := d.Node(id)
	if !ok {
		return geom.Position{}, false
	}
	return geom.Position{X: n.X, Y: n.Y}, true
}

func (d *Document) Node(id string) (Node, bool) {
	i := d.index(id)
	if i < 0 {
		return Node{}, false
	}
	return d.nodes[i], true
}

// Nodes returns a copy of the nodes in drawing order.
func (d *Document) Nodes() []Node {
	return append([]Node(nil), d.nodes...)
}

func (d *Document) Relationships() []Relationship {
	return append([]Relationship(nil), d.rels...)
}

// Edges returns the relationships in the form the validators consume.
func (d *Document) Edges() []validate.Edge {
	edges := make([]validate.Edge, 0, len(d.rels))
	for _, r := range d.rels {
		edges = append(edges, validate.Edge{Source: r.Source, Target: r.Target, Type: r.Type})
	}
	return edges
}

// Bounds returns the smallest rectangle enclosing every node. ok is false
// for an empty document.
func (d *Document) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	for i, n := range d.nodes {
		if i == 0 {
			minX, minY = n.X, n.Y
			maxX, maxY = n.X+n.Width, n.Y+n.Height
			continue
		}
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	return minX, minY, maxX, maxY, len(d.nodes) > 0
}

// Modified reports whether the document changed since it was created,
// loaded or saved.
func (d *Document) Modified() bool { return d.modified }

func (d *Document) index(id string) int {
	for i, n := range d.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
