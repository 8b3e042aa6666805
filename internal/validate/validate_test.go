package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"treeterm/internal/geom"
)

func TestRelationshipTarget(t *testing.T) {
	existing := []Edge{{Source: "A", Target: "B", Type: "drives"}}

	tests := []struct {
		name   string
		source string
		target string
		typ    string
		ok     bool
		reason string
	}{
		{"self", "A", "A", "drives", false, ReasonSelf},
		{"self with no edges", "A", "A", "influences", false, ReasonSelf},
		{"duplicate", "A", "B", "drives", false, ReasonDuplicate},
		{"other type", "A", "B", "influences", true, ""},
		{"reverse direction", "B", "A", "drives", true, ""},
		{"case sensitive type", "A", "B", "Drives", true, ""},
		{"case sensitive id", "a", "B", "drives", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RelationshipTarget(tt.source, tt.target, existing, tt.typ)
			assert.Equal(t, tt.ok, r.OK)
			assert.Equal(t, tt.reason, r.Reason)
		})
	}
}

func TestInBounds(t *testing.T) {
	view := geom.ViewRect{OriginX: 10, OriginY: 20, Width: 200, Height: 100, Scale: 2}
	// visible extent is [10, 110] x [20, 70]

	tests := []struct {
		name string
		p    geom.Position
		ok   bool
	}{
		{"interior", geom.Position{X: 50, Y: 40}, true},
		{"top left corner", geom.Position{X: 10, Y: 20}, true},
		{"bottom right corner", geom.Position{X: 110, Y: 70}, true},
		{"left of view", geom.Position{X: 9.99, Y: 40}, false},
		{"below view", geom.Position{X: 50, Y: 70.01}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := InBounds(tt.p, view)
			assert.Equal(t, tt.ok, r.OK)
			if !tt.ok {
				assert.Equal(t, ReasonBounds, r.Reason)
			}
		})
	}

	assert.False(t, InBounds(geom.Position{}, geom.ViewRect{Width: 1, Height: 1}).OK, "zero scale view has no bounds")
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, Pass().Err())

	err := NotSelf("n1", "n1").Err()
	assert.ErrorIs(t, err, ErrSelfRelationship)
	assert.EqualError(t, err, ReasonSelf)

	err = NotDuplicate("a", "b", "t", []Edge{{"a", "b", "t"}}).Err()
	assert.ErrorIs(t, err, ErrDuplicateRelationship)

	err = Fail("something else").Err()
	assert.EqualError(t, err, "something else")
	assert.NotErrorIs(t, err, ErrOutOfBounds)
}

func TestAll(t *testing.T) {
	assert.True(t, All().OK)
	assert.True(t, All(Pass(), Pass()).OK)
	r := All(Pass(), NotSelf("x", "x"), Fail("later"))
	assert.Equal(t, ReasonSelf, r.Reason)
}
