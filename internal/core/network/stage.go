package network

import (
	"gentle/internal/domain"
)

// DefaultSliderValue is shown on the numeric stage before any age is known
const DefaultSliderValue = 1

// CountIncomplete returns the number of alters whose field is still unset
func (s *Store) CountIncomplete(field domain.Field) int {
	count := 0
	for _, n := range s.state.Nodes {
		if n.IsRespondent() {
			continue
		}
		if !n.IsSet(field) {
			count++
		}
	}
	return count
}

// NextIndex returns the node index that should be prompted next for field.
// A pending correction wins; otherwise the index follows the number of
// alters already answered, offset by one for the respondent slot.
func (s *Store) NextIndex(field domain.Field) int {
	if c := s.state.Progress.Correction; c != 0 {
		return c
	}
	return 1 + s.state.Alters() - s.CountIncomplete(field)
}

// SetCorrection makes index the next prompted node for the prompting stages
// until the next accepted input clears it
func (s *Store) SetCorrection(index int) error {
	return s.mutate(func(next *domain.Network) error {
		if err := checkAlter(next, index); err != nil {
			return err
		}
		next.Progress.Correction = index
		return nil
	})
}

// StageState derives the prompting position of a stage from the store.
// There is no per-stage state beyond what the store already holds.
func (s *Store) StageState(stage domain.Stage) domain.StageState {
	state := domain.StageState{Stage: stage, Next: domain.FreeInteraction}
	nodes := len(s.state.Nodes)

	switch stage {
	case domain.StageNaming:
		state.Next = nodes
		if s.RenamePending() {
			state.Next = s.state.Progress.Counter
		}
		state.Complete = s.state.Alters() >= s.maxAlters && !s.RenamePending()

	case domain.StageCycling, domain.StageNumeric, domain.StageCategorical:
		state.Next = s.NextIndex(stage.Field())
		state.Complete = state.Next >= nodes
		if stage == domain.StageNumeric {
			state.SliderValue = DefaultSliderValue
			if n, ok := s.Node(state.Next); ok && !n.IsRespondent() && n.HasAge() {
				state.SliderValue = n.Age
			}
		}

	case domain.StageCloseness, domain.StageLiking:
		state.Complete = s.state.Alters() > 0 && s.CountIncomplete(stage.Field()) == 0
	}

	if state.Complete {
		state.NextStage, _ = stage.Next()
	}
	return state
}

// Stage projections

// NamingView projects the store for a prompting stage
func (s *Store) NamingView(stage domain.Stage) domain.NamingView {
	return domain.ToNamingView(s.state, s.StageState(stage), s.maxAlters, s.palette)
}

// PlacementView projects the store for a continuous-scale stage
func (s *Store) PlacementView(stage domain.Stage) domain.PlacementView {
	return domain.ToPlacementView(s.state, stage)
}

// LinkingView projects the store for the link-editing stage
func (s *Store) LinkingView() domain.LinkingView {
	return domain.ToLinkingView(s.state)
}
