package domain

import "gentle/internal/geometry"

// Focus is the layout anchor of one node, index-aligned with the node list
type Focus struct {
	Key int     `json:"key" yaml:"key"`
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
}

// NewFocus creates a focus from a canvas point
func NewFocus(key int, p geometry.Point) Focus {
	return Focus{Key: key, X: p.X, Y: p.Y}
}

// Point returns the focus as a canvas point
func (f Focus) Point() geometry.Point {
	return geometry.Point{X: f.X, Y: f.Y}
}

// Position is a rendered node position reported back by the presentation
// layer after a simulation tick
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Point converts the position to a canvas point
func (p Position) Point() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

// FociPoints converts foci to canvas points
func FociPoints(foci []Focus) []geometry.Point {
	points := make([]geometry.Point, len(foci))
	for i, f := range foci {
		points[i] = f.Point()
	}
	return points
}
