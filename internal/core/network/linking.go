package network

import (
	"fmt"

	"gentle/internal/domain"
	"gentle/internal/geometry"
)

// LinkState is the two-click selection state of the link-editing stage.
// It is either idle or holds the selected source alter. The state lives in
// the store's progress and is reset to idle after every completed or
// cancelled selection.
type LinkState struct {
	source int
}

// Idle reports whether no source is selected
func (ls LinkState) Idle() bool {
	return ls.source == domain.NoSource
}

// Selected returns the selected source, if any
func (ls LinkState) Selected() (int, bool) {
	if ls.Idle() {
		return 0, false
	}
	return ls.source, true
}

// LinkEvent describes what a selection did
type LinkEvent string

const (
	LinkIgnored        LinkEvent = "ignored"
	LinkSourceSelected LinkEvent = "source_selected"
	LinkCancelled      LinkEvent = "cancelled"
	LinkCreated        LinkEvent = "created"
	LinkRemoved        LinkEvent = "removed"
)

// LinkOutcome reports the result of one click on the link-editing stage
type LinkOutcome struct {
	Event  LinkEvent   `json:"event"`
	Source int         `json:"source"`
	Target int         `json:"target"`
	Link   domain.Link `json:"link"`
}

// Toggled reports whether the link set changed
func (o LinkOutcome) Toggled() bool {
	return o.Event == LinkCreated || o.Event == LinkRemoved
}

// LinkState returns the current selection state
func (s *Store) LinkState() LinkState {
	return LinkState{source: s.state.Progress.Source}
}

// SelectForLinking handles a click on node n of the link-editing stage.
// rendered carries the positions the renderer currently shows, by node index.
//
//	idle,     n = respondent     -> idle
//	idle,     n = alter          -> selected(n), positions snapshotted
//	selected, n = respondent     -> idle
//	selected, n = source         -> idle
//	selected, n = other alter    -> link toggled, relayout, idle, counter = n+1
func (s *Store) SelectForLinking(n int, rendered []geometry.Point) (LinkOutcome, error) {
	var outcome LinkOutcome
	err := s.mutate(func(next *domain.Network) error {
		if n < 0 || n >= len(next.Nodes) {
			return fmt.Errorf("%w: %d (nodes: %d)", ErrInvalidIndex, n, len(next.Nodes))
		}

		p := &next.Progress
		state := LinkState{source: p.Source}
		source, selected := state.Selected()

		switch {
		case !selected && n == domain.RespondentKey:
			outcome = LinkOutcome{Event: LinkIgnored, Source: domain.NoSource, Target: n}

		case !selected:
			for i := range next.Nodes {
				if i < len(rendered) {
					next.Nodes[i].FloatX, next.Nodes[i].FloatY = rendered[i].X, rendered[i].Y
				}
				next.Nodes[i].ShouldFloat = false
			}
			p.Source = n
			outcome = LinkOutcome{Event: LinkSourceSelected, Source: n, Target: domain.NoSource}

		case n == domain.RespondentKey || n == source:
			p.Source = domain.NoSource
			outcome = LinkOutcome{Event: LinkCancelled, Source: source, Target: n}

		default:
			event, link := toggle(next, source, n)
			next.Nodes = Recalculate(next.Nodes, next.Foci, next.Viewport, domain.StageLinking, rendered)
			p.Source = domain.NoSource
			p.Counter = n + 1
			outcome = LinkOutcome{Event: event, Source: source, Target: n, Link: link}
		}
		return nil
	})
	return outcome, err
}

// ToggleLink creates the link {a,b} if absent or removes it if present, then
// relays out the dynamic stage from the stored positions. Applying it twice
// restores the previous link set and degrees.
func (s *Store) ToggleLink(a, b int) (LinkOutcome, error) {
	var outcome LinkOutcome
	err := s.mutate(func(next *domain.Network) error {
		if err := checkAlter(next, a); err != nil {
			return err
		}
		if err := checkAlter(next, b); err != nil {
			return err
		}
		if a == b {
			return fmt.Errorf("%w: %d", ErrSelfLink, a)
		}
		event, link := toggle(next, a, b)
		next.Nodes = Recalculate(next.Nodes, next.Foci, next.Viewport, domain.StageLinking, nil)
		outcome = LinkOutcome{Event: event, Source: a, Target: b, Link: link}
		return nil
	})
	return outcome, err
}

// HasLink reports whether a and b are linked
func (s *Store) HasLink(a, b int) bool {
	_, ok := findLink(s.state.Links, a, b)
	return ok
}

// toggle flips the edge {a,b} on net and maintains degree counters. Keys of
// new links continue after the highest key ever issued.
func toggle(net *domain.Network, a, b int) (LinkEvent, domain.Link) {
	if i, ok := findLink(net.Links, a, b); ok {
		removed := net.Links[i]
		net.Links = append(net.Links[:i], net.Links[i+1:]...)
		net.Nodes[a].Link--
		net.Nodes[b].Link--
		return LinkRemoved, removed
	}

	key := net.Progress.LinkKeySeq
	for _, l := range net.Links {
		if l.Key > key {
			key = l.Key
		}
	}
	key++

	link := domain.NewLink(key, a, b)
	net.AddLink(link)
	net.Progress.LinkKeySeq = key
	net.Nodes[a].Link++
	net.Nodes[b].Link++
	return LinkCreated, link
}

func findLink(links []domain.Link, a, b int) (int, bool) {
	for i, l := range links {
		if l.Connects(a, b) {
			return i, true
		}
	}
	return -1, false
}
