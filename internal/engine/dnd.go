package engine

import (
	"go.uber.org/zap"

	"treeterm/internal/geom"
	"treeterm/internal/validate"
)

// begin opens a new session, superseding any leftover one. Callbacks never
// fire for a superseded session.
func (e *Engine) begin(kind DragKind, screen geom.Position) *DragSession {
	if e.drag != nil {
		e.log.Debug("superseding stale drag session",
			zap.Uint64("seq", e.drag.Seq),
			zap.Stringer("kind", e.drag.Kind))
		e.autopan.Stop()
	}
	s := &DragSession{
		Seq:       e.nextSeq(),
		Kind:      kind,
		Origin:    screen,
		Cursor:    screen,
		StartedAt: e.now(),
	}
	e.drag = s
	if kind != DragPan {
		e.autopan.Start()
		e.trackPointer(screen)
	}
	e.log.Debug("drag started", zap.Uint64("seq", s.Seq), zap.Stringer("kind", kind))
	return s
}

// take consumes the active session.
func (e *Engine) take() *DragSession {
	s := e.drag
	e.drag = nil
	e.autopan.Stop()
	return s
}

// StartDrag opens a node-creation session for nodeType at a screen position,
// as when a palette entry is pressed. The place-node tool is armed for the
// type.
func (e *Engine) StartDrag(nodeType string, screen geom.Position) {
	e.mode.SelectNodeType(nodeType)
	s := e.begin(DragNodeCreate, screen)
	s.SubjectType = nodeType
	e.refresh(s)
}

// UpdateDragPosition records a pointer move. It only feeds previews: nothing
// is validated until the drop.
func (e *Engine) UpdateDragPosition(screen geom.Position) {
	s := e.drag
	if s == nil {
		return
	}
	prev := s.Cursor
	s.Cursor = screen
	if screen != s.Origin {
		s.Moved = true
	}
	if s.Kind == DragPan {
		e.PanScreen(screen.X-prev.X, screen.Y-prev.Y)
		return
	}
	e.trackPointer(screen)
	e.refresh(s)
}

// trackPointer feeds auto-pan once the pointer has entered the surface. A
// drag that starts on the palette does not scroll until it reaches the
// canvas; after that, leaving the surface scrolls at full speed.
func (e *Engine) trackPointer(screen geom.Position) {
	if e.autopan.tracked || e.surface().Contains(screen) {
		e.autopan.Track(screen)
	}
}

// refresh recomputes the canvas-space preview and the hovered target from
// the session's cursor. It runs after moves and after the view changes under
// a still pointer.
func (e *Engine) refresh(s *DragSession) {
	p, err := e.ToCanvas(s.Cursor)
	if err != nil {
		return
	}
	switch s.Kind {
	case DragNodeMove:
		s.Preview = geom.Position{X: p.X - s.Grab.X, Y: p.Y - s.Grab.Y}
	case DragRelationshipCreate:
		s.Preview = p
		s.HoveredTargetID = ""
		id, ok := e.doc.NodeAt(p)
		if ok && id != s.SourceID {
			s.HoveredTargetID = id
		}
		if !ok || id != s.SourceID {
			s.LeftSource = true
		}
	default:
		s.Preview = p
	}
}

// CancelDrag discards the active session without emitting anything. It is a
// no-op when no drag is active.
func (e *Engine) CancelDrag() {
	s := e.take()
	if s == nil {
		return
	}
	e.log.Debug("drag cancelled", zap.Uint64("seq", s.Seq), zap.Stringer("kind", s.Kind))
}

// Drop ends the active session at a screen position and commits whatever
// the gesture produced. A second drop for the same gesture finds no session
// and does nothing.
func (e *Engine) Drop(screen geom.Position) Outcome {
	s := e.take()
	if s == nil {
		return Outcome{}
	}
	s.Cursor = screen

	switch s.Kind {
	case DragNodeCreate:
		return e.dropNode(s)
	case DragRelationshipCreate:
		return e.dropRelationship(s)
	case DragNodeMove:
		return e.dropMove(s)
	default:
		return Outcome{Kind: OutcomeEnded}
	}
}

func (e *Engine) dropNode(s *DragSession) Outcome {
	box := e.surface()
	if !box.Contains(s.Cursor) {
		e.log.Debug("node drop outside surface", zap.Uint64("seq", s.Seq))
		e.mode.Cancel()
		return Outcome{Kind: OutcomeCancelled}
	}
	view := e.doc.View()
	p, err := geom.ToCanvas(s.Cursor, box, view)
	if err != nil {
		e.mode.Cancel()
		return Outcome{Kind: OutcomeCancelled, Reason: err.Error()}
	}
	if r := validate.InBounds(p, view); !r.OK {
		e.notify("Node not placed", r.Reason, SeverityWarning)
		return rejected(r)
	}
	return e.commitNode(s.Seq, s.SubjectType, p)
}

func (e *Engine) dropRelationship(s *DragSession) Outcome {
	target := s.HoveredTargetID
	box := e.surface()
	if box.Contains(s.Cursor) {
		if p, err := geom.ToCanvas(s.Cursor, box, e.doc.View()); err == nil {
			if id, ok := e.doc.NodeAt(p); ok {
				target = id
			} else {
				target = ""
			}
		}
	} else {
		target = ""
	}

	switch {
	case target == "":
		e.log.Debug("relationship drop on empty canvas", zap.Uint64("seq", s.Seq))
		e.mode.Cancel()
		return Outcome{Kind: OutcomeCancelled}
	case target == s.SourceID && !s.LeftSource:
		// Released where it was pressed: a click. The source stays armed
		// for a second click.
		return Outcome{Kind: OutcomeArmed, ID: s.SourceID}
	case target == s.SourceID:
		// Dragged away and brought back: dropping on the source disarms it.
		e.mode.Target(s.SourceID)
		e.log.Debug("relationship dropped back on its source", zap.Uint64("seq", s.Seq))
		return Outcome{Kind: OutcomeCancelled}
	}
	return e.commitRelationship(s.Seq, s.SourceID, target, s.SubjectType)
}

func (e *Engine) dropMove(s *DragSession) Outcome {
	if !s.Moved {
		return Outcome{Kind: OutcomeEnded}
	}
	box := e.surface()
	if !box.Contains(s.Cursor) {
		return Outcome{Kind: OutcomeCancelled}
	}
	e.refresh(s)
	if s.Seq <= e.lastProcessed {
		return e.repeated(s.Seq)
	}
	e.lastProcessed = s.Seq
	if err := e.doc.MoveNode(s.SourceID, s.Preview.X, s.Preview.Y); err != nil {
		e.log.Warn("move node failed", zap.String("id", s.SourceID), zap.Error(err))
		e.notify("Node not moved", err.Error(), SeverityError)
		return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	}
	return Outcome{Kind: OutcomeMoved, ID: s.SourceID}
}

func rejected(r validate.Result) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: r.Reason, Err: r.Err()}
}

func (e *Engine) repeated(seq uint64) Outcome {
	e.log.Debug("ignoring repeated commit",
		zap.Uint64("seq", seq),
		zap.Uint64("last_processed", e.lastProcessed))
	return Outcome{Kind: OutcomeSuppressed}
}

// isDuplicate reports whether a node request repeats the previous commit:
// same type, close by and soon after.
func (e *Engine) isDuplicate(nodeType string, p geom.Position) bool {
	if !e.last.valid || e.last.nodeType != nodeType {
		return false
	}
	if e.now().Sub(e.last.when) > e.dupWindow {
		return false
	}
	return p.Dist(e.last.at) <= e.dupRadius
}

func (e *Engine) commitNode(seq uint64, nodeType string, p geom.Position) Outcome {
	if seq <= e.lastProcessed {
		return e.repeated(seq)
	}
	e.lastProcessed = seq
	if e.isDuplicate(nodeType, p) {
		e.log.Debug("suppressing duplicate node request",
			zap.Uint64("seq", seq),
			zap.String("type", nodeType))
		return Outcome{Kind: OutcomeSuppressed}
	}

	id, err := e.doc.CreateNode(nodeType, p.X, p.Y)
	if err != nil {
		e.log.Warn("create node failed", zap.String("type", nodeType), zap.Error(err))
		e.notify("Node not created", err.Error(), SeverityError)
		return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	}
	e.last = lastCommit{nodeType: nodeType, at: p, when: e.now(), valid: true}
	e.mode.Committed()
	e.log.Info("node created",
		zap.String("id", id),
		zap.String("type", nodeType),
		zap.Float64("x", p.X),
		zap.Float64("y", p.Y))
	return Outcome{Kind: OutcomeCommitted, ID: id}
}

func (e *Engine) commitRelationship(seq uint64, sourceID, targetID, relType string) Outcome {
	if seq <= e.lastProcessed {
		return e.repeated(seq)
	}
	e.lastProcessed = seq

	if r := validate.RelationshipTarget(sourceID, targetID, e.doc.Edges(), relType); !r.OK {
		e.log.Debug("relationship rejected",
			zap.String("source", sourceID),
			zap.String("target", targetID),
			zap.String("reason", r.Reason))
		e.notify("Relationship not created", r.Reason, SeverityWarning)
		return rejected(r)
	}

	id, err := e.doc.CreateRelationship(sourceID, targetID, relType)
	if err != nil {
		e.log.Warn("create relationship failed",
			zap.String("source", sourceID),
			zap.String("target", targetID),
			zap.Error(err))
		e.notify("Relationship not created", err.Error(), SeverityError)
		return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
	}
	e.mode.Committed()
	e.log.Info("relationship created",
		zap.String("id", id),
		zap.String("source", sourceID),
		zap.String("target", targetID),
		zap.String("type", relType))
	return Outcome{Kind: OutcomeCommitted, ID: id}
}
