package network

import (
	"fmt"

	"gentle/internal/domain"
)

// Validate checks the structural invariants of a network snapshot:
//
//   - node 0 exists and is the respondent
//   - nodes and foci have equal length and are index-aligned by key
//   - links join two distinct alters, at most one link per unordered pair
//   - link keys are unique and never above the issued high-water mark
//   - every node's degree counter equals its number of incident links
//   - the selected link source, if any, is an alter
func Validate(net *domain.Network) error {
	if len(net.Nodes) == 0 {
		return fmt.Errorf("%w: missing respondent node", ErrInvariant)
	}
	if len(net.Nodes) != len(net.Foci) {
		return fmt.Errorf("%w: %d nodes but %d foci", ErrInvariant, len(net.Nodes), len(net.Foci))
	}
	for i := range net.Nodes {
		if net.Nodes[i].Key != i {
			return fmt.Errorf("%w: node at %d has key %d", ErrInvariant, i, net.Nodes[i].Key)
		}
		if net.Foci[i].Key != i {
			return fmt.Errorf("%w: focus at %d has key %d", ErrInvariant, i, net.Foci[i].Key)
		}
	}

	degree := make([]int, len(net.Nodes))
	pairs := make(map[[2]int]int, len(net.Links))
	keys := make(map[int]struct{}, len(net.Links))
	for _, l := range net.Links {
		if l.Source == l.Target {
			return fmt.Errorf("%w: %s", ErrSelfLink, l)
		}
		for _, end := range []int{l.Source, l.Target} {
			if end <= domain.RespondentKey || end >= len(net.Nodes) {
				return fmt.Errorf("%w: %s has invalid endpoint %d", ErrInvariant, l, end)
			}
		}
		if other, dup := pairs[l.Pair()]; dup {
			return fmt.Errorf("%w: %s duplicates link %d", ErrDuplicateLink, l, other)
		}
		pairs[l.Pair()] = l.Key
		if _, dup := keys[l.Key]; dup || l.Key <= 0 {
			return fmt.Errorf("%w: %s has a reused or invalid key", ErrInvariant, l)
		}
		keys[l.Key] = struct{}{}
		if l.Key > net.Progress.LinkKeySeq {
			return fmt.Errorf("%w: %s is above key sequence %d", ErrInvariant, l, net.Progress.LinkKeySeq)
		}
		degree[l.Source]++
		degree[l.Target]++
	}
	for i, n := range net.Nodes {
		if n.Link != degree[i] {
			return fmt.Errorf("%w: node %d reports degree %d, has %d links", ErrInvariant, i, n.Link, degree[i])
		}
	}

	src := net.Progress.Source
	if src != domain.NoSource && (src <= domain.RespondentKey || src >= len(net.Nodes)) {
		return fmt.Errorf("%w: link source %d", ErrInvariant, src)
	}
	return nil
}
