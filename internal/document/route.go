package document

import (
	"math"

	"treeterm/internal/geom"
)

// Route is the orthogonal path of a relationship, from a point on the
// source's border to a point on the target's border. Consecutive points
// share either X or Y.
type Route []geom.Position

// Last two points give the direction of the arrowhead.
func (r Route) Tip() (prev, tip geom.Position) {
	if len(r) < 2 {
		return geom.Position{}, geom.Position{}
	}
	return r[len(r)-2], r[len(r)-1]
}

// RouteBetween picks the facing sides of two nodes. The dominant axis of
// the centre-to-centre vector decides whether the path leaves sideways or
// vertically; a misaligned pair gets a Z-shaped path with its jog halfway.
func RouteBetween(from, to Node) Route {
	fc, tc := from.Center(), to.Center()
	fc = geom.Position{X: math.Floor(fc.X), Y: math.Floor(fc.Y)}
	tc = geom.Position{X: math.Floor(tc.X), Y: math.Floor(tc.Y)}

	var start, end geom.Position
	if math.Abs(fc.X-tc.X) > math.Abs(fc.Y-tc.Y) {
		if fc.X < tc.X {
			start = geom.Position{X: from.X + from.Width - 1, Y: fc.Y}
			end = geom.Position{X: to.X, Y: tc.Y}
		} else {
			start = geom.Position{X: from.X, Y: fc.Y}
			end = geom.Position{X: to.X + to.Width - 1, Y: tc.Y}
		}
		if start.Y == end.Y {
			return Route{start, end}
		}
		mid := math.Round((start.X + end.X) / 2)
		return Route{start, {X: mid, Y: start.Y}, {X: mid, Y: end.Y}, end}
	}

	if fc.Y < tc.Y {
		start = geom.Position{X: fc.X, Y: from.Y + from.Height - 1}
		end = geom.Position{X: tc.X, Y: to.Y}
	} else {
		start = geom.Position{X: fc.X, Y: from.Y}
		end = geom.Position{X: tc.X, Y: to.Y + to.Height - 1}
	}
	if start.X == end.X {
		return Route{start, end}
	}
	mid := math.Round((start.Y + end.Y) / 2)
	return Route{start, {X: start.X, Y: mid}, {X: end.X, Y: mid}, end}
}
