package network

import (
	"gentle/internal/domain"
	"gentle/internal/geometry"
)

// Recalculate returns the nodes with render positions and float eligibility
// for stage. The input slice is not modified.
//
// The respondent always sits at the center. On the dynamic stage an alter
// with at least one link floats and adopts the position the renderer last
// reported for it in rendered; a missing entry keeps the stored position.
// Every other node is anchored: at its focus on a normal viewport, or at its
// packed grid slot on a narrow one.
//
// The result depends only on the arguments, so repeated calls with the same
// inputs yield identical positions.
func Recalculate(nodes []domain.Node, foci []domain.Focus, vp geometry.Viewport, stage domain.Stage, rendered []geometry.Point) []domain.Node {
	out := append([]domain.Node(nil), nodes...)
	points := domain.FociPoints(foci)
	size := geometry.NodeSize(vp)

	for i := range out {
		n := &out[i]
		n.Size = size

		if i == domain.RespondentKey {
			center := vp.Center()
			n.FloatX, n.FloatY = center.X, center.Y
			n.ShouldFloat = false
			continue
		}

		if n.Link > 0 && stage.IsDynamic() {
			n.ShouldFloat = true
			if i < len(rendered) {
				n.FloatX, n.FloatY = rendered[i].X, rendered[i].Y
			}
			continue
		}

		anchor := geometry.Anchor(vp, points, i)
		n.FloatX, n.FloatY = anchor.X, anchor.Y
		n.ShouldFloat = false
	}

	return out
}

// Positions extracts the render positions of nodes
func Positions(nodes []domain.Node) []geometry.Point {
	points := make([]geometry.Point, len(nodes))
	for i, n := range nodes {
		points[i] = geometry.Point{X: n.FloatX, Y: n.FloatY}
	}
	return points
}
