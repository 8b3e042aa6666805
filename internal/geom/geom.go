// Package geom maps points between the pointer (screen) space of the
// rendering surface and the canvas (model) space in which nodes live.
package geom

import (
	"errors"
	"math"
)

const (
	MinScale = 0.1
	MaxScale = 8.0
)

var (
	// ErrUninitializedSurface is returned while the surface has no size yet,
	// typically before the first layout. The input point is returned as is.
	ErrUninitializedSurface = errors.New("geom: rendering surface has zero size")
	// ErrInvalidScale is returned for a view whose scale is not positive.
	ErrInvalidScale = errors.New("geom: view scale must be positive")
)

// Position is a point in either screen or canvas space. The two spaces are
// only converted through ToCanvas and ToScreen.
type Position struct {
	X, Y float64
}

// Add returns p translated by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the displacement from q to p.
func (p Position) Sub(q Position) (float64, float64) {
	return p.X - q.X, p.Y - q.Y
}

// Dist is the euclidean distance between p and q.
func (p Position) Dist(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// ViewRect is the window of canvas space currently visible. Scale multiplies
// on top of Width and Height: the visible extent is Width/Scale by Height/Scale.
type ViewRect struct {
	OriginX float64 `toml:"origin_x"`
	OriginY float64 `toml:"origin_y"`
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Scale   float64 `toml:"scale"`
}

// DefaultView returns an unpanned, unzoomed view of the given size.
func DefaultView(width, height float64) ViewRect {
	return ViewRect{Width: width, Height: height, Scale: 1}
}

func (v ViewRect) Valid() bool {
	return v.Scale > 0 && v.Width >= 0 && v.Height >= 0
}

func (v ViewRect) VisibleWidth() float64  { return v.Width / v.Scale }
func (v ViewRect) VisibleHeight() float64 { return v.Height / v.Scale }

// Pan returns the view moved by a canvas-space delta.
func (v ViewRect) Pan(dx, dy float64) ViewRect {
	v.OriginX += dx
	v.OriginY += dy
	return v
}

// Zoom returns the view scaled by factor around the canvas point focal, which
// stays at the same screen location. The resulting scale is clamped to
// [MinScale, MaxScale]; non-positive factors leave the view unchanged.
func (v ViewRect) Zoom(factor float64, focal Position) ViewRect {
	if factor <= 0 || !v.Valid() {
		return v
	}
	next := clamp(v.Scale*factor, MinScale, MaxScale)
	if next == v.Scale {
		return v
	}
	// Fraction of the visible extent at which focal sits must not change.
	fx := (focal.X - v.OriginX) / v.VisibleWidth()
	fy := (focal.Y - v.OriginY) / v.VisibleHeight()
	v.Scale = next
	if v.Width > 0 {
		v.OriginX = focal.X - fx*v.VisibleWidth()
	}
	if v.Height > 0 {
		v.OriginY = focal.Y - fy*v.VisibleHeight()
	}
	return v
}

// Resize returns the view with a new unscaled size, keeping origin and scale.
func (v ViewRect) Resize(width, height float64) ViewRect {
	v.Width = width
	v.Height = height
	return v
}

// Center is the canvas point in the middle of the visible extent.
func (v ViewRect) Center() Position {
	return Position{X: v.OriginX + v.VisibleWidth()/2, Y: v.OriginY + v.VisibleHeight()/2}
}

// SurfaceBox is the screen-space bounding box of the rendering surface, in
// the same units as pointer events.
type SurfaceBox struct {
	Left, Top, Width, Height float64
}

// Ready reports whether the surface has been laid out.
func (b SurfaceBox) Ready() bool {
	return b.Width != 0 && b.Height != 0
}

// Contains is inclusive of the left and top edges, exclusive of the others.
func (b SurfaceBox) Contains(p Position) bool {
	return p.X >= b.Left && p.X < b.Left+b.Width &&
		p.Y >= b.Top && p.Y < b.Top+b.Height
}

func (b SurfaceBox) Center() Position {
	return Position{X: b.Left + b.Width/2, Y: b.Top + b.Height/2}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
