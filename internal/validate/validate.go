// Package validate holds the predicates that decide whether a drop may be
// committed. Each predicate is independent; callers compose the ones they need.
package validate

import (
	"errors"

	"treeterm/internal/geom"
)

const (
	ReasonSelf      = "cannot relate a node to itself"
	ReasonDuplicate = "relationship already exists"
	ReasonBounds    = "drop is outside the visible canvas"
)

var (
	ErrOutOfBounds           = errors.New(ReasonBounds)
	ErrSelfRelationship      = errors.New(ReasonSelf)
	ErrDuplicateRelationship = errors.New(ReasonDuplicate)
)

var reasonErrors = map[string]error{
	ReasonSelf:      ErrSelfRelationship,
	ReasonDuplicate: ErrDuplicateRelationship,
	ReasonBounds:    ErrOutOfBounds,
}

// Result is the outcome of a check. Reason is empty when OK.
type Result struct {
	OK     bool
	Reason string
}

func Pass() Result { return Result{OK: true} }

func Fail(reason string) Result { return Result{Reason: reason} }

// Err returns nil for a passing result, otherwise an *Error that unwraps to
// the sentinel matching the reason (if any).
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Reason: r.Reason, err: reasonErrors[r.Reason]}
}

// Error is a failed validation.
type Error struct {
	Reason string
	err    error
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.err }

// Edge is the identity of a relationship for duplicate detection.
type Edge struct {
	Source string
	Target string
	Type   string
}

// InBounds reports whether p lies inside the visible extent of view. Both
// ends are inclusive.
func InBounds(p geom.Position, view geom.ViewRect) Result {
	if !view.Valid() {
		return Fail(ReasonBounds)
	}
	maxX := view.OriginX + view.VisibleWidth()
	maxY := view.OriginY + view.VisibleHeight()
	if p.X < view.OriginX || p.X > maxX || p.Y < view.OriginY || p.Y > maxY {
		return Fail(ReasonBounds)
	}
	return Pass()
}

// NotSelf fails when source and target are the same node.
func NotSelf(sourceID, targetID string) Result {
	if sourceID == targetID {
		return Fail(ReasonSelf)
	}
	return Pass()
}

// NotDuplicate fails when an existing edge has the identical
// (source, target, type) tuple. Comparison is case and direction sensitive:
// the reverse edge is a different relationship.
func NotDuplicate(sourceID, targetID, relType string, existing []Edge) Result {
	for _, e := range existing {
		if e.Source == sourceID && e.Target == targetID && e.Type == relType {
			return Fail(ReasonDuplicate)
		}
	}
	return Pass()
}

// RelationshipTarget runs the checks required before committing a
// relationship. The first failure wins.
func RelationshipTarget(sourceID, targetID string, existing []Edge, relType string) Result {
	return All(
		NotSelf(sourceID, targetID),
		NotDuplicate(sourceID, targetID, relType, existing),
	)
}

// All returns the first failing result, or Pass.
func All(results ...Result) Result {
	for _, r := range results {
		if !r.OK {
			return r
		}
	}
	return Pass()
}
