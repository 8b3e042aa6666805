package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"treeterm/internal/geom"
	"treeterm/internal/validate"
)

type nodeCall struct {
	Type string
	X, Y float64
}

type relCall struct {
	Source, Target, Type string
}

type moveCall struct {
	ID   string
	X, Y float64
}

type fakeNode struct {
	id         string
	x, y, w, h float64
}

// fakeDoc is an in-memory Document that records every request.
type fakeDoc struct {
	view  geom.ViewRect
	nodes []fakeNode
	edges []validate.Edge

	created   []nodeCall
	related   []relCall
	moved     []moveCall
	pans      []geom.Position
	zooms     []float64
	createErr error
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{view: geom.DefaultView(1200, 800)}
}

func (d *fakeDoc) addNode(id string, x, y float64) {
	d.nodes = append(d.nodes, fakeNode{id: id, x: x, y: y, w: 50, h: 20})
}

func (d *fakeDoc) CreateNode(nodeType string, x, y float64) (string, error) {
	if d.createErr != nil {
		return "", d.createErr
	}
	d.created = append(d.created, nodeCall{nodeType, x, y})
	id := fmt.Sprintf("new%d", len(d.created))
	d.addNode(id, x, y)
	return id, nil
}

func (d *fakeDoc) CreateRelationship(sourceID, targetID, relType string) (string, error) {
	d.related = append(d.related, relCall{sourceID, targetID, relType})
	d.edges = append(d.edges, validate.Edge{Source: sourceID, Target: targetID, Type: relType})
	return fmt.Sprintf("rel%d", len(d.related)), nil
}

func (d *fakeDoc) MoveNode(id string, x, y float64) error {
	d.moved = append(d.moved, moveCall{id, x, y})
	return nil
}

func (d *fakeDoc) PanView(dx, dy float64) {
	d.pans = append(d.pans, geom.Position{X: dx, Y: dy})
	d.view = d.view.Pan(dx, dy)
}

func (d *fakeDoc) ZoomView(factor, focalX, focalY float64) {
	d.zooms = append(d.zooms, factor)
	d.view = d.view.Zoom(factor, geom.Position{X: focalX, Y: focalY})
}

func (d *fakeDoc) View() geom.ViewRect { return d.view }

func (d *fakeDoc) NodeAt(p geom.Position) (string, bool) {
	for i := len(d.nodes) - 1; i >= 0; i-- {
		n := d.nodes[i]
		if p.X >= n.x && p.X < n.x+n.w && p.Y >= n.y && p.Y < n.y+n.h {
			return n.id, true
		}
	}
	return "", false
}

func (d *fakeDoc) NodePosition(id string) (geom.Position, bool) {
	for _, n := range d.nodes {
		if n.id == id {
			return geom.Position{X: n.x, Y: n.y}, true
		}
	}
	return geom.Position{}, false
}

func (d *fakeDoc) Edges() []validate.Edge { return d.edges }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	e       *Engine
	doc     *fakeDoc
	box     geom.SurfaceBox
	clock   *fakeClock
	notices []Notice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		doc:   newFakeDoc(),
		box:   geom.SurfaceBox{Width: 1200, Height: 800},
		clock: &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	e, err := New(Options{
		Document: h.doc,
		Surface:  func() geom.SurfaceBox { return h.box },
		Notifier: NotifierFunc(func(n Notice) { h.notices = append(h.notices, n) }),
		Logger:   zap.NewNop(),
		NodeKeys: map[string]string{
			"m": "business_metric",
			"i": "input_metric",
		},
		ConnectKey:        "c",
		RelationshipKey:   "t",
		RelationshipTypes: []string{"drives", "influences"},
		Now:               h.clock.Now,
	})
	require.NoError(t, err)
	h.e = e
	return h
}

func pt(x, y float64) geom.Position { return geom.Position{X: x, Y: y} }
