package handler

import "gentle/internal/geometry"

// ViewportRequest carries raw screen dimensions
type ViewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NameRequest submits a name on the naming stage
type NameRequest struct {
	Name string `json:"name"`
}

// IndexRequest addresses one alter
type IndexRequest struct {
	Index int `json:"index"`
}

// SelectRequest selects an alter on a prompting stage
type SelectRequest struct {
	Stage string `json:"stage"`
	Index int    `json:"index"`
}

// SexRequest assigns the binary attribute directly
type SexRequest struct {
	Index int    `json:"index"`
	Sex   string `json:"sex"`
}

// ScalarRequest submits the numeric attribute
type ScalarRequest struct {
	Index int `json:"index"`
	Value int `json:"value"`
}

// CategoryRequest submits a category by palette ID
type CategoryRequest struct {
	Index      int `json:"index"`
	CategoryID int `json:"category_id"`
}

// DragRequest reports where an alter was dropped
type DragRequest struct {
	Stage string  `json:"stage"`
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Position is a rendered node position
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LinkRequest is a click on the link-editing stage together with the
// positions the renderer currently shows
type LinkRequest struct {
	Index     int        `json:"index"`
	Positions []Position `json:"positions,omitempty"`
}

// Points converts the rendered positions
func (r LinkRequest) Points() []geometry.Point {
	return toPoints(r.Positions)
}

// LinkStatus answers whether two alters are linked
type LinkStatus struct {
	Source int  `json:"source"`
	Target int  `json:"target"`
	Linked bool `json:"linked"`
}

// LayoutRequest asks for render positions of a stage
type LayoutRequest struct {
	Stage     string     `json:"stage"`
	Positions []Position `json:"positions,omitempty"`
}

// Points converts the rendered positions
func (r LayoutRequest) Points() []geometry.Point {
	return toPoints(r.Positions)
}

func toPoints(positions []Position) []geometry.Point {
	if len(positions) == 0 {
		return nil
	}
	points := make([]geometry.Point, len(positions))
	for i, p := range positions {
		points[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	return points
}
