package engine

import (
	"math"

	"go.uber.org/zap"

	"treeterm/internal/geom"
)

const (
	DefaultEdgeThreshold = 50
	DefaultMaxSpeed      = 10
)

// AutoPanConfig sets how close to an edge the pointer must be before the view
// scrolls, and the fastest it scrolls, in pointer units per frame.
type AutoPanConfig struct {
	EdgeThreshold float64
	MaxSpeed      float64
}

func DefaultAutoPanConfig() AutoPanConfig {
	return AutoPanConfig{EdgeThreshold: DefaultEdgeThreshold, MaxSpeed: DefaultMaxSpeed}
}

// Velocity computes the per-frame pan velocity for a pointer relative to the
// surface box. Each axis is independent, so a pointer near a corner yields
// velocity on both. The sign points toward the exterior of the nearer edge.
func Velocity(pointer geom.Position, box geom.SurfaceBox, cfg AutoPanConfig) (vx, vy float64) {
	vx = axisVelocity(pointer.X, box.Left, box.Width, cfg)
	vy = axisVelocity(pointer.Y, box.Top, box.Height, cfg)
	return vx, vy
}

func axisVelocity(pos, lo, size float64, cfg AutoPanConfig) float64 {
	if size <= 0 || cfg.EdgeThreshold <= 0 || cfg.MaxSpeed <= 0 {
		return 0
	}
	near := pos - lo
	far := lo + size - pos
	speed := func(distance float64) float64 {
		return math.Min(cfg.MaxSpeed, cfg.MaxSpeed*(cfg.EdgeThreshold-distance)/cfg.EdgeThreshold)
	}
	switch {
	case near < cfg.EdgeThreshold && near <= far:
		return -speed(near)
	case far < cfg.EdgeThreshold:
		return speed(far)
	}
	return 0
}

// AutoPan scrolls the view while a drag is active. It does not own a timer:
// the host schedules one frame at a time and hands the generation back to
// Frame. Stop bumps the generation, so a frame scheduled before a stop is
// ignored and the loop ends.
type AutoPan struct {
	cfg     AutoPanConfig
	pan     func(dx, dy float64)
	log     *zap.Logger
	running bool
	gen     uint64
	pointer geom.Position
	tracked bool
}

func NewAutoPan(cfg AutoPanConfig, pan func(dx, dy float64), log *zap.Logger) *AutoPan {
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoPan{cfg: cfg, pan: pan, log: log}
}

// Start begins a frame loop and returns its generation. Starting while
// already running returns the current generation.
func (a *AutoPan) Start() uint64 {
	if a.running {
		return a.gen
	}
	a.running = true
	a.tracked = false
	a.gen++
	a.log.Debug("auto-pan started", zap.Uint64("generation", a.gen))
	return a.gen
}

// Stop ends the loop. Safe to call when not running.
func (a *AutoPan) Stop() {
	if !a.running {
		return
	}
	a.running = false
	a.gen++
	a.log.Debug("auto-pan stopped", zap.Uint64("generation", a.gen))
}

func (a *AutoPan) Running() bool { return a.running }

func (a *AutoPan) Generation() uint64 { return a.gen }

// Track records the latest pointer position in screen space.
func (a *AutoPan) Track(pointer geom.Position) {
	a.pointer = pointer
	a.tracked = true
}

// Frame runs one tick of the loop for generation gen. It returns the canvas
// delta it panned by and whether the host should schedule another frame.
func (a *AutoPan) Frame(gen uint64, box geom.SurfaceBox, view geom.ViewRect) (dx, dy float64, again bool) {
	if !a.running || gen != a.gen {
		return 0, 0, false
	}
	if !a.tracked || !box.Ready() || !view.Valid() {
		return 0, 0, true
	}
	vx, vy := Velocity(a.pointer, box, a.cfg)
	if vx == 0 && vy == 0 {
		return 0, 0, true
	}
	dx, dy = vx/view.Scale, vy/view.Scale
	if a.pan != nil {
		a.pan(dx, dy)
	}
	return dx, dy, true
}
