// Package engine turns pointer and keyboard input into editing operations on
// a diagram: it owns the interaction mode, the single active drag session and
// the auto-pan loop, and it emits mutation requests to a document it does
// not own.
//
// The engine is single threaded. Every method must be called from the host's
// event loop; no locking is done.
package engine

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"treeterm/internal/geom"
	"treeterm/internal/validate"
)

const (
	KeyEscape = "esc"

	DefaultDuplicateWindow = 500 * time.Millisecond
	DefaultDuplicateRadius = 5.0
	DefaultZoomStep        = 1.25
)

var (
	ErrNoDocument = errors.New("engine: a document is required")
	ErrNoSurface  = errors.New("engine: a surface query is required")
)

// Store receives the mutation requests the engine emits.
type Store interface {
	CreateNode(nodeType string, x, y float64) (string, error)
	CreateRelationship(sourceID, targetID, relType string) (string, error)
	MoveNode(id string, x, y float64) error
	PanView(dx, dy float64)
	ZoomView(factor, focalX, focalY float64)
}

// Scene is the read side of the document.
type Scene interface {
	View() geom.ViewRect
	NodeAt(p geom.Position) (string, bool)
	NodePosition(id string) (geom.Position, bool)
	Edges() []validate.Edge
}

// Document is what the engine edits.
type Document interface {
	Store
	Scene
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a user-visible message.
type Notice struct {
	Title    string
	Message  string
	Severity Severity
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type Options struct {
	Document Document
	// Surface returns the current screen-space box of the rendering surface.
	// It is queried on every event.
	Surface  func() geom.SurfaceBox
	Notifier Notifier
	Logger   *zap.Logger

	AutoPan           AutoPanConfig
	NodeKeys          map[string]string // key -> node type
	ConnectKey        string
	RelationshipKey   string
	RelationshipTypes []string
	DuplicateWindow   time.Duration
	DuplicateRadius   float64
	ZoomStep          float64
	Now               func() time.Time
}

type lastCommit struct {
	nodeType string
	at       geom.Position
	when     time.Time
	valid    bool
}

// Engine is the single controller for one editing session.
type Engine struct {
	doc      Document
	surface  func() geom.SurfaceBox
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	mode    *Machine
	drag    *DragSession
	autopan *AutoPan

	seq           uint64
	lastProcessed uint64
	last          lastCommit

	nodeKeys   map[string]string
	connectKey string
	relKey     string
	relTypes   []string
	relIdx     int
	dupWindow  time.Duration
	dupRadius  float64
	zoomStep   float64
}

func New(opts Options) (*Engine, error) {
	if opts.Document == nil {
		return nil, ErrNoDocument
	}
	if opts.Surface == nil {
		return nil, ErrNoSurface
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		doc:        opts.Document,
		surface:    opts.Surface,
		notifier:   opts.Notifier,
		log:        log.Named("engine"),
		now:        opts.Now,
		mode:       NewMachine(log.Named("mode")),
		nodeKeys:   opts.NodeKeys,
		connectKey: opts.ConnectKey,
		relKey:     opts.RelationshipKey,
		relTypes:   opts.RelationshipTypes,
		dupWindow:  opts.DuplicateWindow,
		dupRadius:  opts.DuplicateRadius,
		zoomStep:   opts.ZoomStep,
	}
	if e.notifier == nil {
		e.notifier = NotifierFunc(func(Notice) {})
	}
	if e.now == nil {
		e.now = time.Now
	}
	if len(e.relTypes) == 0 {
		e.relTypes = []string{"relates_to"}
	}
	if e.dupWindow <= 0 {
		e.dupWindow = DefaultDuplicateWindow
	}
	if e.dupRadius <= 0 {
		e.dupRadius = DefaultDuplicateRadius
	}
	if e.zoomStep <= 1 {
		e.zoomStep = DefaultZoomStep
	}
	cfg := opts.AutoPan
	if cfg.EdgeThreshold <= 0 || cfg.MaxSpeed <= 0 {
		cfg = DefaultAutoPanConfig()
	}
	e.autopan = NewAutoPan(cfg, e.doc.PanView, log.Named("autopan"))
	return e, nil
}

func (e *Engine) Mode() Mode { return e.mode.Current() }

// Drag returns a copy of the active session.
func (e *Engine) Drag() (DragSession, bool) {
	if e.drag == nil {
		return DragSession{}, false
	}
	return *e.drag, true
}

func (e *Engine) AutoPan() *AutoPan { return e.autopan }

func (e *Engine) RelationshipType() string { return e.relTypes[e.relIdx] }

// CycleRelationshipType advances to the next configured relationship type.
// A relationship drag in progress takes the new type.
func (e *Engine) CycleRelationshipType() string {
	e.relIdx = (e.relIdx + 1) % len(e.relTypes)
	if e.drag != nil && e.drag.Kind == DragRelationshipCreate {
		e.drag.SubjectType = e.RelationshipType()
	}
	e.log.Debug("relationship type changed", zap.String("type", e.RelationshipType()))
	return e.RelationshipType()
}

// SelectNodeType arms the place-node tool, discarding any active drag.
func (e *Engine) SelectNodeType(nodeType string) {
	e.CancelDrag()
	e.mode.SelectNodeType(nodeType)
}

// ActivateConnect arms the connect tool, discarding any active drag.
func (e *Engine) ActivateConnect() {
	e.CancelDrag()
	e.mode.ActivateConnect()
}

// Cancel discards any drag and returns to Select.
func (e *Engine) Cancel() {
	e.CancelDrag()
	e.mode.Cancel()
}

// ToCanvas converts a screen point using the current surface and view.
func (e *Engine) ToCanvas(screen geom.Position) (geom.Position, error) {
	return geom.ToCanvas(screen, e.surface(), e.doc.View())
}

// ToScreen converts a canvas point using the current surface and view.
func (e *Engine) ToScreen(canvas geom.Position) (geom.Position, error) {
	return geom.ToScreen(canvas, e.surface(), e.doc.View())
}

// PointerDown interprets a press according to the current mode. Presses
// outside the surface are left to the host.
func (e *Engine) PointerDown(screen geom.Position) Outcome {
	box := e.surface()
	if !box.Contains(screen) {
		return Outcome{}
	}
	p, err := geom.ToCanvas(screen, box, e.doc.View())
	if err != nil {
		e.log.Debug("pointer down before layout", zap.Error(err))
		return Outcome{}
	}
	hit, onNode := e.doc.NodeAt(p)
	mode := e.mode.Current()

	switch mode.Kind {
	case ModeSelect:
		if onNode {
			s := e.begin(DragNodeMove, screen)
			s.SourceID = hit
			if pos, ok := e.doc.NodePosition(hit); ok {
				s.Grab = geom.Position{X: p.X - pos.X, Y: p.Y - pos.Y}
				s.Preview = pos
			}
			return Outcome{}
		}
		e.begin(DragPan, screen)
		return Outcome{}

	case ModePlaceNode:
		e.StartDrag(mode.NodeType, screen)
		return Outcome{}

	case ModeConnect:
		if !onNode {
			if mode.Source != "" {
				e.Cancel()
				return Outcome{Kind: OutcomeCancelled}
			}
			return Outcome{}
		}
		if mode.Source == "" {
			e.mode.ArmSource(hit)
			s := e.begin(DragRelationshipCreate, screen)
			s.SourceID = hit
			s.SubjectType = e.RelationshipType()
			s.Preview = p
			return Outcome{Kind: OutcomeArmed, ID: hit}
		}
		// A source is already armed: this press is the second click.
		e.CancelDrag()
		switch e.mode.Target(hit) {
		case StepToggledOff:
			return Outcome{Kind: OutcomeCancelled}
		case StepCommit:
			return e.commitRelationship(e.nextSeq(), mode.Source, hit, e.RelationshipType())
		}
	}
	return Outcome{}
}

// PointerMove forwards to UpdateDragPosition.
func (e *Engine) PointerMove(screen geom.Position) {
	e.UpdateDragPosition(screen)
}

// PointerUp drops the active session, if any.
func (e *Engine) PointerUp(screen geom.Position) Outcome {
	return e.Drop(screen)
}

// Key handles mode shortcuts. It reports whether the key was consumed.
func (e *Engine) Key(key string) bool {
	switch {
	case key == KeyEscape:
		e.Cancel()
		return true
	case key != "" && key == e.connectKey:
		e.ActivateConnect()
		return true
	case key != "" && key == e.relKey:
		e.CycleRelationshipType()
		return true
	}
	if nodeType, ok := e.nodeKeys[key]; ok {
		e.SelectNodeType(nodeType)
		return true
	}
	return false
}

// Wheel zooms by ZoomStep^steps around the pointer's canvas position.
// Positive steps zoom in.
func (e *Engine) Wheel(screen geom.Position, steps int) {
	if steps == 0 {
		return
	}
	focal, err := e.ToCanvas(screen)
	if err != nil {
		focal = e.doc.View().Center()
	}
	e.zoom(math.Pow(e.zoomStep, float64(steps)), focal)
}

// ZoomCenter zooms around the centre of the visible canvas.
func (e *Engine) ZoomCenter(steps int) {
	if steps == 0 {
		return
	}
	e.zoom(math.Pow(e.zoomStep, float64(steps)), e.doc.View().Center())
}

func (e *Engine) zoom(factor float64, focal geom.Position) {
	e.doc.ZoomView(factor, focal.X, focal.Y)
	if e.drag != nil {
		e.refresh(e.drag)
	}
}

// PanScreen pans the view by a screen-space delta, as when dragging the
// canvas: a positive dx reveals content to the left.
func (e *Engine) PanScreen(dx, dy float64) {
	cx, cy := geom.ScreenDeltaToCanvas(dx, dy, e.surface(), e.doc.View())
	if cx == 0 && cy == 0 {
		return
	}
	e.doc.PanView(-cx, -cy)
}

// Frame runs one auto-pan tick for generation gen and reports whether the
// host should schedule another.
func (e *Engine) Frame(gen uint64) bool {
	dx, dy, again := e.autopan.Frame(gen, e.surface(), e.doc.View())
	if (dx != 0 || dy != 0) && e.drag != nil {
		e.refresh(e.drag)
	}
	return again
}

func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

func (e *Engine) notify(title, message string, sev Severity) {
	e.notifier.Notify(Notice{Title: title, Message: message, Severity: sev})
}
