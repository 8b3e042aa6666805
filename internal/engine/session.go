package engine

import (
	"fmt"
	"time"

	"treeterm/internal/geom"
)

type DragKind int

const (
	DragNodeCreate DragKind = iota
	DragRelationshipCreate
	DragPan
	DragNodeMove
)

func (k DragKind) String() string {
	switch k {
	case DragNodeCreate:
		return "node-create"
	case DragRelationshipCreate:
		return "relationship-create"
	case DragPan:
		return "pan"
	case DragNodeMove:
		return "node-move"
	default:
		return fmt.Sprintf("DragKind(%d)", int(k))
	}
}

// DragSession is one in-progress pointer gesture. At most one exists; it is
// consumed exactly once by a drop or a cancel.
type DragSession struct {
	// Seq identifies the gesture. It grows with every gesture the engine
	// opens and is attached to the commit the gesture produces.
	Seq         uint64
	Kind        DragKind
	SubjectType string
	SourceID    string

	// Origin and Cursor are in screen space, Preview in canvas space. For a
	// node move Preview is the node's would-be top-left corner.
	Origin  geom.Position
	Cursor  geom.Position
	Preview geom.Position

	// Grab is the canvas offset from a moved node's corner to the pointer.
	Grab geom.Position

	HoveredTargetID string
	StartedAt       time.Time
	Moved           bool
	// LeftSource is set once a relationship drag has been outside its
	// source node.
	LeftSource bool
}

type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeCancelled
	OutcomeCommitted
	OutcomeMoved
	OutcomeArmed
	OutcomeRejected
	OutcomeSuppressed
	OutcomeFailed
	OutcomeEnded
)

func (k OutcomeKind) String() string {
	return [...]string{"none", "cancelled", "committed", "moved", "armed", "rejected", "suppressed", "failed", "ended"}[k]
}

// Outcome reports what a pointer event or drop did. ID is the created entity
// for OutcomeCommitted; Reason explains rejections and failures. Err is set
// for rejections and unwraps to the validate sentinel that failed.
type Outcome struct {
	Kind   OutcomeKind
	ID     string
	Reason string
	Err    error
}
