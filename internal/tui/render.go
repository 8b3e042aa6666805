package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"treeterm/internal/document"
	"treeterm/internal/geom"
)

type cellStyle uint8

const (
	styleNone cellStyle = iota
	styleEdge
	styleLabel
	styleNode
	styleSource
	styleHover
	styleGhost
)

// grid is the character canvas a frame is drawn into. Its coordinates are
// relative to the surface's top-left cell.
type grid struct {
	w, h   int
	cells  [][]rune
	styles [][]cellStyle
}

func newGrid(w, h int) *grid {
	g := &grid{w: max(w, 0), h: max(h, 0)}
	g.cells = make([][]rune, g.h)
	g.styles = make([][]cellStyle, g.h)
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", g.w))
		g.styles[y] = make([]cellStyle, g.w)
	}
	return g
}

func (g *grid) valid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

func (g *grid) set(x, y int, r rune, s cellStyle) {
	if g.valid(x, y) {
		g.cells[y][x] = r
		g.styles[y][x] = s
	}
}

func (g *grid) text(x, y int, s string, maxLen int, st cellStyle) {
	for i, r := range []rune(s) {
		if i >= maxLen {
			return
		}
		g.set(x+i, y, r, st)
	}
}

// hline and vline draw a segment, turning into '+' where they cross an
// existing perpendicular line.
func (g *grid) hline(x1, x2, y int, r rune, s cellStyle) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if g.valid(x, y) && g.cells[y][x] == '|' && r == '-' {
			g.set(x, y, '+', s)
			continue
		}
		g.set(x, y, r, s)
	}
}

func (g *grid) vline(x, y1, y2 int, r rune, s cellStyle) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if g.valid(x, y) && g.cells[y][x] == '-' && r == '|' {
			g.set(x, y, '+', s)
			continue
		}
		g.set(x, y, r, s)
	}
}

func (g *grid) lines() []string {
	out := make([]string, g.h)
	for y, row := range g.cells {
		out[y] = string(row)
	}
	return out
}

// styled renders the grid with lipgloss, batching runs of equal style.
func (g *grid) styled(th theme) string {
	var b strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && g.styles[y][x] == g.styles[y][start] {
				continue
			}
			b.WriteString(th.cell(g.styles[y][start]).Render(string(row[start:x])))
			start = x
		}
	}
	return b.String()
}

// overlay is the transient state drawn on top of the document.
type overlay struct {
	sourceID string
	hoverID  string

	// ghost is a dotted box for a node being placed or moved.
	ghost      *document.Node
	rubberFrom *geom.Position
	rubberTo   geom.Position
}

// painter maps canvas space to grid cells for one frame.
type painter struct {
	g    *grid
	box  geom.SurfaceBox
	view geom.ViewRect
}

func (p painter) cell(c geom.Position) (int, int, bool) {
	s, err := geom.ToScreen(c, p.box, p.view)
	if err != nil {
		return 0, 0, false
	}
	return int(math.Floor(s.X)), int(math.Floor(s.Y)), true
}

func render(doc *document.Document, w, h int, ov overlay) *grid {
	g := newGrid(w, h)
	p := painter{
		g:    g,
		box:  geom.SurfaceBox{Width: float64(w), Height: float64(h)},
		view: doc.View(),
	}
	if !p.box.Ready() {
		return g
	}

	var tips [][4]int
	for _, r := range doc.Relationships() {
		from, okFrom := doc.Node(r.Source)
		to, okTo := doc.Node(r.Target)
		if !okFrom || !okTo {
			continue
		}
		if tip, ok := p.route(document.RouteBetween(from, to), r.Type); ok {
			tips = append(tips, tip)
		}
	}
	if ov.rubberFrom != nil {
		p.rubber(*ov.rubberFrom, ov.rubberTo)
	}

	for _, n := range doc.Nodes() {
		st := styleNode
		switch n.ID {
		case ov.hoverID:
			st = styleHover
		case ov.sourceID:
			st = styleSource
		}
		p.node(n, st, false)
	}
	for _, t := range tips {
		g.set(t[0], t[1], arrowHead(t[2], t[3]), styleEdge)
	}
	if ov.ghost != nil {
		p.node(*ov.ghost, styleGhost, true)
	}
	return g
}

// route draws a relationship's segments and its type label. It returns the
// arrowhead cell and direction for drawing once the boxes are in place.
func (p painter) route(r document.Route, label string) ([4]int, bool) {
	if len(r) < 2 {
		return [4]int{}, false
	}
	pts := make([][2]int, 0, len(r))
	for _, c := range r {
		x, y, ok := p.cell(c)
		if !ok {
			return [4]int{}, false
		}
		pts = append(pts, [2]int{x, y})
	}
	for i := 0; i < len(pts)-1; i++ {
		p.segment(pts[i], pts[i+1], styleEdge)
	}

	longest, at := -1, 0
	for i := 0; i < len(pts)-1; i++ {
		if pts[i][1] == pts[i+1][1] {
			if l := abs(pts[i+1][0] - pts[i][0]); l > longest {
				longest, at = l, i
			}
		}
	}
	if longest > len(label)+2 {
		a, b := pts[at], pts[at+1]
		x := min(a[0], b[0]) + (longest-len(label))/2 + 1
		p.g.text(x, a[1]-1, label, len(label), styleLabel)
	}

	prev, tip := pts[len(pts)-2], pts[len(pts)-1]
	return [4]int{tip[0], tip[1], tip[0] - prev[0], tip[1] - prev[1]}, true
}

func (p painter) segment(a, b [2]int, st cellStyle) {
	if a[1] == b[1] {
		p.g.hline(a[0], b[0], a[1], '-', st)
		return
	}
	if a[0] == b[0] {
		p.g.vline(a[0], a[1], b[1], '|', st)
		return
	}
	// Rounding can skew an orthogonal segment at small scales.
	p.g.hline(a[0], b[0], a[1], '-', st)
	p.g.vline(b[0], a[1], b[1], '|', st)
}

// rubber draws the provisional relationship from a source to the pointer.
func (p painter) rubber(from, to geom.Position) {
	x1, y1, ok1 := p.cell(from)
	x2, y2, ok2 := p.cell(to)
	if !ok1 || !ok2 {
		return
	}
	p.g.hline(x1, x2, y1, '.', styleGhost)
	p.g.vline(x2, y1, y2, ':', styleGhost)
}

func (p painter) node(n document.Node, st cellStyle, ghost bool) {
	x1, y1, ok1 := p.cell(geom.Position{X: n.X, Y: n.Y})
	x2, y2, ok2 := p.cell(geom.Position{X: n.X + n.Width, Y: n.Y + n.Height})
	if !ok1 || !ok2 {
		return
	}
	x2--
	y2--
	if x2-x1 < 1 || y2-y1 < 1 {
		p.g.set(x1, y1, '#', st)
		return
	}

	corner, horizontal, vertical := '+', '-', '|'
	if ghost {
		corner, horizontal, vertical = '.', '.', ':'
	} else if st == styleHover || st == styleSource {
		corner, horizontal, vertical = '#', '#', '#'
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			switch {
			case (y == y1 || y == y2) && (x == x1 || x == x2):
				p.g.set(x, y, corner, st)
			case y == y1 || y == y2:
				p.g.set(x, y, horizontal, st)
			case x == x1 || x == x2:
				p.g.set(x, y, vertical, st)
			case !ghost:
				p.g.set(x, y, ' ', st)
			}
		}
	}

	inner := x2 - x1 - 1
	if y2-y1 < 2 {
		return
	}
	label := n.Label
	if len(label) > inner {
		label = label[:inner]
	}
	mid := y1 + (y2-y1)/2
	p.g.text(x1+1+(inner-len(label))/2, mid, label, inner, st)
}

func arrowHead(dx, dy int) rune {
	switch {
	case dx > 0:
		return '>'
	case dx < 0:
		return '<'
	case dy < 0:
		return '^'
	default:
		return 'v'
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RenderText draws the document's current view into width by height plain
// text lines, as shown on screen without any overlay.
func RenderText(doc *document.Document, width, height int) string {
	lines := render(doc, width, height, overlay{}).lines()
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

type theme struct {
	edge, label, node, source, hover, ghost lipgloss.Style
	palette, paletteActive, status         lipgloss.Style
	info, warning, failure                 lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		edge:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		label:         lipgloss.NewStyle().Foreground(lipgloss.Color("109")).Italic(true),
		node:          lipgloss.NewStyle(),
		source:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		hover:         lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		ghost:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		palette:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")),
		paletteActive: lipgloss.NewStyle().Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214")).Bold(true),
		status:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("237")),
		info:          lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Background(lipgloss.Color("237")),
		warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Background(lipgloss.Color("237")),
		failure:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Background(lipgloss.Color("237")).Bold(true),
	}
}

func (t theme) cell(s cellStyle) lipgloss.Style {
	switch s {
	case styleEdge:
		return t.edge
	case styleLabel:
		return t.label
	case styleSource:
		return t.source
	case styleHover:
		return t.hover
	case styleGhost:
		return t.ghost
	default:
		return t.node
	}
}
