package network

import (
	"slices"
	"time"

	"gentle/internal/domain"
)

// History is a detached copy of the nodes and foci as they were last
// rendered. The presentation layer compares against it to decide whether a
// revisited stage can replay the previous arrangement unchanged.
type History struct {
	Nodes      []domain.Node  `json:"nodes"`
	Foci       []domain.Focus `json:"foci"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Matches reports whether nodes and foci equal the recorded copy
func (h *History) Matches(nodes []domain.Node, foci []domain.Focus) bool {
	if h == nil {
		return false
	}
	return slices.Equal(h.Nodes, nodes) && slices.Equal(h.Foci, foci)
}

// RecordHistory captures a deep copy of the current nodes and foci
func (s *Store) RecordHistory() *History {
	s.history = &History{
		Nodes:      s.Nodes(),
		Foci:       s.Foci(),
		RecordedAt: time.Now(),
	}
	return s.History()
}

// History returns a copy of the last recorded snapshot, or nil
func (s *Store) History() *History {
	if s.history == nil {
		return nil
	}
	return &History{
		Nodes:      append([]domain.Node(nil), s.history.Nodes...),
		Foci:       append([]domain.Focus(nil), s.history.Foci...),
		RecordedAt: s.history.RecordedAt,
	}
}

// Unchanged reports whether nothing visible changed since the last
// RecordHistory call
func (s *Store) Unchanged() bool {
	return s.history.Matches(s.state.Nodes, s.state.Foci)
}
