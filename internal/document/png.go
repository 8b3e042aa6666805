package document

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var ErrEmptyDocument = errors.New("nothing to export")

// PNGOptions scales canvas units to pixels.
type PNGOptions struct {
	CellWidth  float64
	CellHeight float64
	Padding    float64 // pixels around the drawing
	FontSize   float64
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{CellWidth: 10, CellHeight: 20, Padding: 20, FontSize: 14}
}

// ExportPNG draws every node and relationship, independent of the view, to
// a PNG file at path.
func (d *Document) ExportPNG(path string, opts PNGOptions) error {
	minX, minY, maxX, maxY, ok := d.Bounds()
	if !ok {
		return ErrEmptyDocument
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		opts = DefaultPNGOptions()
	}

	width := int(math.Ceil((maxX-minX)*opts.CellWidth + 2*opts.Padding))
	height := int(math.Ceil((maxY-minY)*opts.CellHeight + 2*opts.Padding))
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	p := pngPainter{dc: dc, opts: opts, minX: minX, minY: minY}

	// Relationships first so boxes cover their ends.
	for _, r := range d.rels {
		from, okFrom := d.Node(r.Source)
		to, okTo := d.Node(r.Target)
		if !okFrom || !okTo {
			continue
		}
		p.relationship(RouteBetween(from, to), r.Type)
	}
	for _, n := range d.nodes {
		p.node(n)
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

type pngPainter struct {
	dc         *gg.Context
	opts       PNGOptions
	minX, minY float64
}

// px maps the centre of a canvas cell to pixels.
func (p pngPainter) px(x, y float64) (float64, float64) {
	return (x-p.minX+0.5)*p.opts.CellWidth + p.opts.Padding,
		(y-p.minY+0.5)*p.opts.CellHeight + p.opts.Padding
}

func (p pngPainter) relationship(route Route, relType string) {
	if len(route) < 2 {
		return
	}
	dc := p.dc
	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	for i := 0; i < len(route)-1; i++ {
		x1, y1 := p.px(route[i].X, route[i].Y)
		x2, y2 := p.px(route[i+1].X, route[i+1].Y)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	prev, tip := route.Tip()
	fx, fy := p.px(prev.X, prev.Y)
	tx, ty := p.px(tip.X, tip.Y)
	p.arrow(fx, fy, tx, ty)

	mid := route[len(route)/2]
	before := route[len(route)/2-1]
	mx, my := p.px((mid.X+before.X)/2, (mid.Y+before.Y)/2)
	dc.SetColor(color.Gray{Y: 90})
	dc.DrawStringAnchored(relType, mx, my-4, 0.5, 1)
}

func (p pngPainter) arrow(fx, fy, tx, ty float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const size, spread = 8.0, 0.5
	dc := p.dc
	dc.MoveTo(tx, ty)
	dc.LineTo(tx-size*dx+size*dy*spread, ty-size*dy-size*dx*spread)
	dc.LineTo(tx-size*dx-size*dy*spread, ty-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func (p pngPainter) node(n Node) {
	dc := p.dc
	x := (n.X-p.minX)*p.opts.CellWidth + p.opts.Padding
	y := (n.Y-p.minY)*p.opts.CellHeight + p.opts.Padding
	w := n.Width * p.opts.CellWidth
	h := n.Height * p.opts.CellHeight

	dc.SetColor(color.White)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
	dc.DrawStringAnchored(n.Label, x+w/2, y+h/2, 0.5, 0.35)
}
