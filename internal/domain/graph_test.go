package domain

import (
	"testing"

	"gentle/internal/geometry"
)

func testNetwork() *Network {
	net := NewNetwork("session")
	net.Viewport = geometry.Viewport{Width: 1000, Height: 600}
	for i, name := range []string{"You", "A", "B", "C"} {
		node := NewNode(i, name, 30)
		node.FloatX, node.FloatY = float64(10*i), float64(20*i)
		net.AddNode(node)
		net.AddFocus(NewFocus(i, geometry.Focus(net.Viewport, i)))
	}
	return net
}

func TestNewNetwork(t *testing.T) {
	net := NewNetwork("abc")

	if net.SessionID != "abc" {
		t.Errorf("expected session 'abc', got %s", net.SessionID)
	}
	if net.Nodes == nil || net.Links == nil || net.Foci == nil {
		t.Error("expected collections to be initialized")
	}
	if net.Progress.Counter != 1 {
		t.Errorf("expected counter 1, got %d", net.Progress.Counter)
	}
	if net.Progress.Source != NoSource {
		t.Errorf("expected no link source, got %d", net.Progress.Source)
	}
	if net.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestNetworkAlters(t *testing.T) {
	if got := NewNetwork("x").Alters(); got != 0 {
		t.Errorf("expected 0 alters for empty network, got %d", got)
	}
	if got := testNetwork().Alters(); got != 3 {
		t.Errorf("expected 3 alters, got %d", got)
	}
}

func TestNetworkClone(t *testing.T) {
	t.Run("shares no slices", func(t *testing.T) {
		net := testNetwork()
		net.AddLink(NewLink(1, 1, 2))

		c := net.Clone()
		c.Nodes[1].Name = "changed"
		c.Links[0].Target = 3
		c.Foci[1].X = -1

		if net.Nodes[1].Name != "A" {
			t.Error("clone node write leaked into original")
		}
		if net.Links[0].Target != 2 {
			t.Error("clone link write leaked into original")
		}
		if net.Foci[1].X == -1 {
			t.Error("clone focus write leaked into original")
		}
	})

	t.Run("nil slices become empty", func(t *testing.T) {
		c := (&Network{}).Clone()
		if c.Nodes == nil || c.Links == nil || c.Foci == nil {
			t.Error("expected empty, non-nil collections")
		}
	})
}

func TestToNamingView(t *testing.T) {
	net := testNetwork()
	state := StageState{Stage: StageNaming, Next: 4}

	t.Run("omits the respondent", func(t *testing.T) {
		view := ToNamingView(net, state, 25, DefaultCategories())

		if len(view.Nodes) != 3 {
			t.Fatalf("expected 3 nodes, got %d", len(view.Nodes))
		}
		if view.Nodes[0].Key != 1 {
			t.Errorf("expected first node key 1, got %d", view.Nodes[0].Key)
		}
		if len(view.Foci) != 3 || view.Foci[0].Key != 1 {
			t.Error("expected alter foci only")
		}
		if view.Nodes[2].X != 30 || view.Nodes[2].Y != 60 {
			t.Errorf("expected render position (30, 60), got (%f, %f)", view.Nodes[2].X, view.Nodes[2].Y)
		}
		if view.State.Next != 4 {
			t.Errorf("expected next 4, got %d", view.State.Next)
		}
	})

	t.Run("categories only on categorical stage", func(t *testing.T) {
		if got := ToNamingView(net, state, 25, DefaultCategories()); len(got.Categories) != 0 {
			t.Error("expected no categories on naming stage")
		}
		cat := StageState{Stage: StageCategorical, Next: 1}
		if got := ToNamingView(net, cat, 25, DefaultCategories()); len(got.Categories) != 4 {
			t.Errorf("expected 4 categories, got %d", len(got.Categories))
		}
	})

	t.Run("respondent-only network", func(t *testing.T) {
		only := NewNetwork("x")
		only.AddNode(NewNode(0, "You", 30))
		only.AddFocus(NewFocus(0, geometry.Point{}))
		view := ToNamingView(only, state, 25, nil)
		if len(view.Nodes) != 0 || len(view.Foci) != 0 {
			t.Error("expected empty projection")
		}
	})
}

func TestToPlacementView(t *testing.T) {
	net := testNetwork()
	net.Nodes[2].FixedPosX, net.Nodes[2].FixedPosY = 700, 90

	t.Run("closeness stage draws the guide", func(t *testing.T) {
		view := ToPlacementView(net, StageCloseness)

		if view.Counter != FreeInteraction {
			t.Errorf("expected free interaction, got %d", view.Counter)
		}
		if view.Nodes[1].X != 700 || view.Nodes[1].Y != 90 {
			t.Errorf("expected fixed position (700, 90), got (%f, %f)", view.Nodes[1].X, view.Nodes[1].Y)
		}
		if view.Nodes[0].X != DefaultPlacement {
			t.Errorf("expected default placement, got %f", view.Nodes[0].X)
		}
		if len(view.Guides) != 1 {
			t.Fatalf("expected 1 guide, got %d", len(view.Guides))
		}
		g := view.Guides[0]
		if g.X != 500 || g.Y != 10 || g.Width != 2 || g.Height != 540 || g.Color != "green" {
			t.Errorf("unexpected guide %+v", g)
		}
	})

	t.Run("liking stage has no guide", func(t *testing.T) {
		if view := ToPlacementView(net, StageLiking); len(view.Guides) != 0 {
			t.Error("expected no guides on liking stage")
		}
	})
}

func TestToLinkingView(t *testing.T) {
	net := testNetwork()
	net.AddLink(NewLink(1, 1, 3))
	net.Nodes[1].Link, net.Nodes[3].Link = 1, 1
	net.Nodes[1].ShouldFloat = true

	view := ToLinkingView(net)

	if len(view.Nodes) != 4 {
		t.Fatalf("expected respondent included, got %d nodes", len(view.Nodes))
	}
	for _, n := range view.Nodes {
		if n.Size != geometry.LinkingRadius {
			t.Errorf("node %d: expected size %f, got %f", n.Key, geometry.LinkingRadius, n.Size)
		}
	}
	if view.Nodes[1].Label != "A" {
		t.Errorf("expected label 'A', got %s", view.Nodes[1].Label)
	}
	if !view.Nodes[1].Float || view.Nodes[2].Float {
		t.Error("expected only node 1 to float")
	}
	if len(view.Links) != 1 {
		t.Errorf("expected 1 link, got %d", len(view.Links))
	}
	if view.Foci[2].X != 20 || view.Foci[2].Y != 40 {
		t.Errorf("expected focus to follow stored position, got (%f, %f)", view.Foci[2].X, view.Foci[2].Y)
	}

	t.Run("zero position falls back to the anchor", func(t *testing.T) {
		view := ToLinkingView(net)
		anchor := geometry.Focus(net.Viewport, 0)
		if view.Foci[0].X != anchor.X || view.Foci[0].Y != anchor.Y {
			t.Errorf("expected anchor %v, got (%f, %f)", anchor, view.Foci[0].X, view.Foci[0].Y)
		}
	})
}
