package geom

import "math"

// snapEpsilon absorbs the rounding left by a divide-then-multiply
// conversion, so that a pointer on a cell boundary maps onto it exactly.
const snapEpsilon = 1e-9

// snap returns the nearest integer when v is within snapEpsilon of it.
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEpsilon {
		return r
	}
	return v
}

func checkInputs(box SurfaceBox, view ViewRect) error {
	if !box.Ready() {
		return ErrUninitializedSurface
	}
	if view.Scale <= 0 {
		return ErrInvalidScale
	}
	return nil
}

// ToCanvas converts a screen point to canvas space:
//
//	canvas.x = view.OriginX + (screen.x - box.Left)/box.Width * view.Width/view.Scale
//
// and symmetrically for y. On a zero-sized surface or a non-positive scale
// the screen point is returned unchanged with the matching sentinel error.
func ToCanvas(screen Position, box SurfaceBox, view ViewRect) (Position, error) {
	if err := checkInputs(box, view); err != nil {
		return screen, err
	}
	nx := (screen.X - box.Left) / box.Width
	ny := (screen.Y - box.Top) / box.Height
	return Position{
		X: snap(view.OriginX + nx*view.VisibleWidth()),
		Y: snap(view.OriginY + ny*view.VisibleHeight()),
	}, nil
}

// ToScreen is the inverse of ToCanvas.
func ToScreen(canvas Position, box SurfaceBox, view ViewRect) (Position, error) {
	if err := checkInputs(box, view); err != nil {
		return canvas, err
	}
	if view.Width == 0 || view.Height == 0 {
		// A zero-extent view collapses every screen point onto the origin;
		// there is no inverse to take.
		return canvas, ErrInvalidScale
	}
	nx := (canvas.X - view.OriginX) / view.VisibleWidth()
	ny := (canvas.Y - view.OriginY) / view.VisibleHeight()
	return Position{
		X: snap(box.Left + nx*box.Width),
		Y: snap(box.Top + ny*box.Height),
	}, nil
}

// ScreenDeltaToCanvas maps a screen displacement to a canvas displacement.
// It returns zeros on the same conditions ToCanvas reports an error.
func ScreenDeltaToCanvas(dx, dy float64, box SurfaceBox, view ViewRect) (float64, float64) {
	if checkInputs(box, view) != nil {
		return 0, 0
	}
	return snap(dx / box.Width * view.VisibleWidth()), snap(dy / box.Height * view.VisibleHeight())
}
