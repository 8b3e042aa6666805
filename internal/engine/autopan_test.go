package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"treeterm/internal/geom"
)

func TestVelocitySignConvention(t *testing.T) {
	box := geom.SurfaceBox{Width: 1000, Height: 600}
	cfg := DefaultAutoPanConfig()

	tests := []struct {
		name   string
		x, y   float64
		wantVX float64
		wantVY float64
	}{
		{"near left", 10, 300, -8, 0},
		{"near right", 990, 300, 8, 0},
		{"center", 500, 300, 0, 0},
		{"near top", 500, 0, 0, -10},
		{"near bottom", 500, 575, 0, 5},
		{"top left corner", 25, 25, -5, -5},
		{"exactly at threshold", 50, 300, 0, 0},
		{"outside is capped", -200, 300, -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vx, vy := Velocity(geom.Position{X: tt.x, Y: tt.y}, box, cfg)
			assert.InDelta(t, tt.wantVX, vx, 1e-9)
			assert.InDelta(t, tt.wantVY, vy, 1e-9)
		})
	}
}

func TestVelocityDegenerateInputs(t *testing.T) {
	vx, vy := Velocity(geom.Position{X: 1, Y: 1}, geom.SurfaceBox{}, DefaultAutoPanConfig())
	assert.Zero(t, vx)
	assert.Zero(t, vy)

	vx, _ = Velocity(geom.Position{X: 1, Y: 1}, geom.SurfaceBox{Width: 100, Height: 100}, AutoPanConfig{})
	assert.Zero(t, vx)
}

func TestAutoPanFrameLifecycle(t *testing.T) {
	var pans []geom.Position
	a := NewAutoPan(DefaultAutoPanConfig(), func(dx, dy float64) {
		pans = append(pans, geom.Position{X: dx, Y: dy})
	}, nil)
	box := geom.SurfaceBox{Width: 1000, Height: 600}
	view := geom.ViewRect{Width: 1000, Height: 600, Scale: 2}

	_, _, again := a.Frame(a.Generation(), box, view)
	assert.False(t, again, "not running")

	gen := a.Start()
	assert.Equal(t, gen, a.Start(), "start is idempotent while running")

	_, _, again = a.Frame(gen, box, view)
	assert.True(t, again, "untracked pointer keeps the loop alive")
	assert.Empty(t, pans)

	a.Track(geom.Position{X: 990, Y: 300})
	dx, dy, again := a.Frame(gen, box, view)
	assert.True(t, again)
	assert.InDelta(t, 4, dx, 1e-9, "velocity is divided by scale")
	assert.Zero(t, dy)
	assert.Len(t, pans, 1)

	a.Track(geom.Position{X: 500, Y: 300})
	_, _, again = a.Frame(gen, box, view)
	assert.True(t, again)
	assert.Len(t, pans, 1)

	a.Stop()
	a.Stop()
	assert.False(t, a.Running())
	_, _, again = a.Frame(gen, box, view)
	assert.False(t, again, "a stopped loop does not reschedule")

	next := a.Start()
	assert.NotEqual(t, gen, next)
	_, _, again = a.Frame(gen, box, view)
	assert.False(t, again, "frames from an earlier drag are stale")
	_, _, again = a.Frame(next, box, view)
	assert.True(t, again)
}
