package domain

import "fmt"

// Stage identifies one phase of the elicitation sequence
type Stage string

const (
	StageNaming      Stage = "naming"
	StageCycling     Stage = "cycling"
	StageNumeric     Stage = "numeric"
	StageCategorical Stage = "categorical"
	StageCloseness   Stage = "closeness"
	StageLiking      Stage = "liking"
	StageLinking     Stage = "linking"
)

// Stages lists every stage in presentation order
var Stages = []Stage{
	StageNaming,
	StageCycling,
	StageNumeric,
	StageCategorical,
	StageCloseness,
	StageLiking,
	StageLinking,
}

// ParseStage validates a stage identifier
func ParseStage(s string) (Stage, error) {
	for _, stage := range Stages {
		if string(stage) == s {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// Order returns the 1-based position of the stage in the sequence, or 0
func (s Stage) Order() int {
	for i, stage := range Stages {
		if stage == s {
			return i + 1
		}
	}
	return 0
}

// Next returns the following stage, or false for the last one
func (s Stage) Next() (Stage, bool) {
	order := s.Order()
	if order == 0 || order == len(Stages) {
		return "", false
	}
	return Stages[order], true
}

// IsDynamic reports whether nodes may float on this stage
func (s Stage) IsDynamic() bool {
	return s == StageLinking
}

// IsPrompting reports whether the stage walks through alters one by one
func (s Stage) IsPrompting() bool {
	switch s {
	case StageNaming, StageCycling, StageNumeric, StageCategorical:
		return true
	}
	return false
}

// Field returns the node attribute collected on the stage
func (s Stage) Field() Field {
	switch s {
	case StageNaming:
		return FieldName
	case StageCycling:
		return FieldSex
	case StageNumeric:
		return FieldAge
	case StageCategorical:
		return FieldCategory
	case StageCloseness:
		return FieldCloseness
	case StageLiking:
		return FieldLiking
	}
	return ""
}

// Field names a collectable node attribute
type Field string

const (
	FieldName      Field = "name"
	FieldSex       Field = "sex"
	FieldAge       Field = "age"
	FieldCategory  Field = "category"
	FieldCloseness Field = "closeness"
	FieldLiking    Field = "liking"
)

// MeasureKind selects the derived scalar of a continuous placement
type MeasureKind string

const (
	MeasureCloseness MeasureKind = "closeness"
	MeasureLiking    MeasureKind = "liking"
)

// MeasureFor maps a placement stage to its measure
func MeasureFor(stage Stage) (MeasureKind, bool) {
	switch stage {
	case StageCloseness:
		return MeasureCloseness, true
	case StageLiking:
		return MeasureLiking, true
	}
	return "", false
}
