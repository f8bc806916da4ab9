package domain

import "gentle/internal/geometry"

// FreeInteraction is the counter handed to stages without prompting
const FreeInteraction = -1

// StageState is the prompting position of a stage, derived from the store
type StageState struct {
	Stage       Stage `json:"stage"`
	Next        int   `json:"next"`
	Complete    bool  `json:"complete"`
	SliderValue int   `json:"slider_value,omitempty"`
	// NextStage is set once the stage is complete
	NextStage Stage `json:"next_stage,omitempty"`
}

// ViewNode is an alter as shown on the naming and attribute stages
type ViewNode struct {
	Key           int     `json:"key"`
	Name          string  `json:"name"`
	Size          float64 `json:"size"`
	Color         string  `json:"color"`
	Sex           Sex     `json:"sex"`
	Age           int     `json:"age"`
	Category      string  `json:"category"`
	CategoryColor string  `json:"category_color"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
}

// NamingView is the projection for the naming, cycling, numeric and
// categorical stages. The respondent is sliced off.
type NamingView struct {
	Stage      Stage      `json:"stage"`
	Nodes      []ViewNode `json:"nodes"`
	Foci       []Focus    `json:"foci"`
	State      StageState `json:"state"`
	MaxAlters  int        `json:"max_alters,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// Guide is a static visual separator drawn on a placement stage
type Guide struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// PlacementNode is an alter on a continuous-scale stage
type PlacementNode struct {
	Key           int     `json:"key"`
	Name          string  `json:"name"`
	Size          float64 `json:"size"`
	Color         string  `json:"color"`
	CategoryColor string  `json:"category_color"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Fixed         bool    `json:"fixed"`
}

// PlacementView is the projection for the closeness and liking stages
type PlacementView struct {
	Stage   Stage           `json:"stage"`
	Nodes   []PlacementNode `json:"nodes"`
	Foci    []Focus         `json:"foci"`
	Guides  []Guide         `json:"guides,omitempty"`
	Counter int             `json:"counter"`
}

// LinkingNode is a node on the link-editing stage, respondent included
type LinkingNode struct {
	Key           int     `json:"key"`
	Label         string  `json:"label"`
	Size          float64 `json:"size"`
	Color         string  `json:"color"`
	CategoryColor string  `json:"category_color"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Float         bool    `json:"float"`
	Link          int     `json:"link"`
}

// LinkingView is the projection for the link-editing stage
type LinkingView struct {
	Stage   Stage         `json:"stage"`
	Nodes   []LinkingNode `json:"nodes"`
	Links   []Link        `json:"links"`
	Foci    []Focus       `json:"foci"`
	Source  int           `json:"source"`
	Counter int           `json:"counter"`
}

// ToNamingView projects the network for a prompting stage
func ToNamingView(net *Network, state StageState, maxAlters int, categories []Category) NamingView {
	view := NamingView{
		Stage:     state.Stage,
		Nodes:     make([]ViewNode, 0, net.Alters()),
		Foci:      make([]Focus, 0, net.Alters()),
		State:     state,
		MaxAlters: maxAlters,
	}

	for _, n := range alters(net.Nodes) {
		view.Nodes = append(view.Nodes, ViewNode{
			Key:           n.Key,
			Name:          n.Name,
			Size:          n.Size,
			Color:         n.Color,
			Sex:           n.Sex,
			Age:           n.Age,
			Category:      n.Category,
			CategoryColor: n.CategoryColor,
			X:             n.FloatX,
			Y:             n.FloatY,
		})
	}
	view.Foci = append(view.Foci, alterFoci(net.Foci)...)

	if state.Stage == StageCategorical {
		view.Categories = append([]Category(nil), categories...)
	}

	return view
}

// ToPlacementView projects the network for a continuous-scale stage. Nodes
// sit at the coordinates the respondent chose.
func ToPlacementView(net *Network, stage Stage) PlacementView {
	view := PlacementView{
		Stage:   stage,
		Nodes:   make([]PlacementNode, 0, net.Alters()),
		Foci:    alterFoci(net.Foci),
		Counter: FreeInteraction,
	}

	for _, n := range alters(net.Nodes) {
		view.Nodes = append(view.Nodes, PlacementNode{
			Key:           n.Key,
			Name:          n.Name,
			Size:          n.Size,
			Color:         n.Color,
			CategoryColor: n.CategoryColor,
			X:             n.FixedPosX,
			Y:             n.FixedPosY,
			Fixed:         true,
		})
	}

	if stage == StageCloseness {
		vp := net.Viewport
		view.Guides = []Guide{{
			X:      vp.Width * 0.5,
			Y:      10,
			Width:  2,
			Height: vp.Height * 0.9,
			Color:  "green",
		}}
	}

	return view
}

// ToLinkingView projects the network for the link-editing stage. Foci follow
// stored float positions once a node has been placed there.
func ToLinkingView(net *Network) LinkingView {
	view := LinkingView{
		Stage:   StageLinking,
		Nodes:   make([]LinkingNode, 0, len(net.Nodes)),
		Links:   append(make([]Link, 0, len(net.Links)), net.Links...),
		Foci:    make([]Focus, 0, len(net.Foci)),
		Source:  net.Progress.Source,
		Counter: FreeInteraction,
	}

	for _, n := range net.Nodes {
		view.Nodes = append(view.Nodes, LinkingNode{
			Key:           n.Key,
			Label:         n.Name,
			Size:          geometry.LinkingRadius,
			Color:         n.Color,
			CategoryColor: n.CategoryColor,
			X:             n.FloatX,
			Y:             n.FloatY,
			Float:         n.ShouldFloat,
			Link:          n.Link,
		})
	}

	foci := FociPoints(net.Foci)
	for i, f := range net.Foci {
		anchor := geometry.Anchor(net.Viewport, foci, i)
		x, y := anchor.X, anchor.Y
		if i < len(net.Nodes) {
			if fx := net.Nodes[i].FloatX; fx != 0 {
				x = fx
			}
			if fy := net.Nodes[i].FloatY; fy != 0 {
				y = fy
			}
		}
		view.Foci = append(view.Foci, Focus{Key: f.Key, X: x, Y: y})
	}

	return view
}

func alters(nodes []Node) []Node {
	if len(nodes) <= 1 {
		return nil
	}
	return nodes[1:]
}

func alterFoci(foci []Focus) []Focus {
	if len(foci) <= 1 {
		return make([]Focus, 0)
	}
	return append(make([]Focus, 0, len(foci)-1), foci[1:]...)
}
