// Package geometry computes viewport-dependent layout anchors for the
// elicitation canvas.
//
// All functions are pure. A Viewport is passed explicitly so that layouts can
// be derived for any simulated screen size; nothing here observes the real
// screen.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Canvas sizing constants
const (
	MaxCanvasWidth  = 1140.0
	CanvasMargin    = 60.0
	HeightRatio     = 0.75
	NarrowThreshold = 500.0
)

// Radial layout constants
const (
	// Slots is the number of anchor positions around the center.
	Slots = 25

	RadiusRatio       = 0.7
	NarrowRadiusRatio = 0.375
	RadiusScale       = 1.15

	// PhaseOffset rotates the first slot away from the positive x axis.
	PhaseOffset = -2.0
)

// Packed grid constants for narrow viewports
const (
	GridColumns   = 13
	GridSpacing   = 27.0
	GridRowOffset = 55.0
	GridBaseline  = 0.95
)

// Node radii
const (
	NodeRadius       = 30.0
	NarrowNodeRadius = 20.0
	LinkingRadius    = 10.0
)

// Point is a position on the canvas.
type Point = r2.Vec

// Viewport describes the usable canvas.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Narrow bool    `json:"narrow" yaml:"narrow"`
}

// NewViewport derives the usable canvas from raw screen dimensions.
func NewViewport(screenWidth, screenHeight float64) Viewport {
	return Viewport{
		Width:  math.Min(screenWidth, MaxCanvasWidth) - CanvasMargin,
		Height: screenHeight * HeightRatio,
		Narrow: screenWidth < NarrowThreshold || screenHeight < NarrowThreshold,
	}
}

// Center returns the middle of the canvas.
func (vp Viewport) Center() Point {
	return Point{X: vp.Width / 2, Y: vp.Height / 2}
}

// radius of the anchor circle
func (vp Viewport) radius() float64 {
	r := RadiusRatio
	if vp.Width < NarrowThreshold {
		r = NarrowRadiusRatio
	}
	return RadiusScale * (vp.Height / 2 * r)
}

// Focus returns the anchor for node index i. Index 0 is the respondent and
// sits at the center; every other index is placed on the anchor circle.
func Focus(vp Viewport, i int) Point {
	center := vp.Center()
	if i == 0 {
		return center
	}

	theta := float64(i)/Slots*2*math.Pi + PhaseOffset
	offset := r2.Scale(vp.radius(), Point{X: math.Cos(theta), Y: math.Sin(theta)})
	return r2.Add(center, offset)
}

// Foci returns the anchors for n nodes.
func Foci(vp Viewport, n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Focus(vp, i)
	}
	return points
}

// GridSlot returns the packed position used instead of the anchor circle on
// narrow viewports. Slots fill a single row of 13 columns, then a second row
// below it.
func GridSlot(vp Viewport, i int) Point {
	if i <= 0 {
		return vp.Center()
	}

	y := vp.Height * GridBaseline
	if i > GridColumns {
		y += GridRowOffset
	}
	return Point{
		X: float64((i-1)%GridColumns+1) * GridSpacing,
		Y: y,
	}
}

// Anchor returns the resting position of node i for the viewport class.
func Anchor(vp Viewport, foci []Point, i int) Point {
	if vp.Narrow && i != 0 {
		return GridSlot(vp, i)
	}
	if i < len(foci) {
		return foci[i]
	}
	return Focus(vp, i)
}

// NodeSize returns the render radius for the viewport class.
func NodeSize(vp Viewport) float64 {
	if vp.Narrow {
		return NarrowNodeRadius
	}
	return NodeRadius
}
