package network

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gentle/internal/domain"
	"gentle/internal/geometry"
)

// MaxAlters is the hard ceiling on named contacts; the anchor circle has
// exactly this many slots.
const MaxAlters = geometry.Slots

// DefaultRespondentLabel names the ego node
const DefaultRespondentLabel = "You"

// Store is the canonical node/link collection of one respondent plus their
// progress through the stages.
//
// Every mutating operation clones the full state, applies the change to the
// clone, validates it and only then swaps it in, so a rejected operation
// leaves the store exactly as it was. Accessors return copies.
//
// A Store is not safe for concurrent use; callers serialize input events.
type Store struct {
	state   *domain.Network
	history *History

	maxAlters       int
	palette         domain.Palette
	strict          bool
	respondentLabel string
}

// Option configures a Store
type Option func(*Store)

// WithMaxAlters lowers the alter limit. Values outside 1..MaxAlters are ignored.
func WithMaxAlters(n int) Option {
	return func(s *Store) {
		if n >= 1 && n <= MaxAlters {
			s.maxAlters = n
		}
	}
}

// WithPalette sets the categories available on the categorical stage
func WithPalette(p domain.Palette) Option {
	return func(s *Store) {
		if len(p) > 0 {
			s.palette = append(domain.Palette(nil), p...)
		}
	}
}

// WithStrict makes contract violations panic instead of returning an error
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithRespondentLabel sets the name of the ego node for new stores
func WithRespondentLabel(label string) Option {
	return func(s *Store) {
		if label != "" {
			s.respondentLabel = label
		}
	}
}

func newStore(opts []Option) *Store {
	s := &Store{
		maxAlters:       MaxAlters,
		palette:         domain.DefaultCategories(),
		respondentLabel: DefaultRespondentLabel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a store holding only the respondent node
func New(sessionID string, vp geometry.Viewport, opts ...Option) *Store {
	s := newStore(opts)

	net := domain.NewNetwork(sessionID)
	net.Viewport = vp

	ego := domain.NewNode(domain.RespondentKey, s.respondentLabel, geometry.NodeSize(vp))
	center := vp.Center()
	ego.FloatX, ego.FloatY = center.X, center.Y
	net.AddNode(ego)
	net.AddFocus(domain.NewFocus(domain.RespondentKey, geometry.Focus(vp, domain.RespondentKey)))

	s.state = net
	return s
}

// FromNetwork restores a store from a snapshot after validating it
func FromNetwork(net *domain.Network, opts ...Option) (*Store, error) {
	if net == nil {
		return nil, fmt.Errorf("%w: nil network", ErrInvariant)
	}
	s := newStore(opts)
	state := net.Clone()
	for _, l := range state.Links {
		if l.Key > state.Progress.LinkKeySeq {
			state.Progress.LinkKeySeq = l.Key
		}
	}
	if err := Validate(state); err != nil {
		return nil, err
	}
	s.state = state
	return s, nil
}

// mutate applies fn to a clone of the state and swaps it in on success
func (s *Store) mutate(fn func(next *domain.Network) error) error {
	next := s.state.Clone()
	if err := fn(next); err != nil {
		return s.fail(err)
	}
	if err := Validate(next); err != nil {
		return s.fail(err)
	}
	next.UpdatedAt = time.Now()
	s.state = next
	return nil
}

// Checkpoint captures the current state and returns a function that puts the
// store back to it. Mutations swap in a new state instead of editing the
// current one, so the capture is a pointer copy.
func (s *Store) Checkpoint() (restore func()) {
	state, history := s.state, s.history
	return func() {
		s.state, s.history = state, history
	}
}

func (s *Store) fail(err error) error {
	if s.strict && !IsRejection(err) {
		panic(err)
	}
	return err
}

// Accessors

// SessionID returns the identifier of the respondent session
func (s *Store) SessionID() string {
	return s.state.SessionID
}

// Network returns a deep copy of the current state
func (s *Store) Network() *domain.Network {
	return s.state.Clone()
}

// Nodes returns a copy of the node collection
func (s *Store) Nodes() []domain.Node {
	return append([]domain.Node(nil), s.state.Nodes...)
}

// Links returns a copy of the link collection
func (s *Store) Links() []domain.Link {
	return append([]domain.Link(nil), s.state.Links...)
}

// Foci returns a copy of the focus collection
func (s *Store) Foci() []domain.Focus {
	return append([]domain.Focus(nil), s.state.Foci...)
}

// Progress returns the scalar session state
func (s *Store) Progress() domain.Progress {
	return s.state.Progress
}

// Viewport returns the viewport the layout was computed for
func (s *Store) Viewport() geometry.Viewport {
	return s.state.Viewport
}

// Palette returns the categorical palette
func (s *Store) Palette() domain.Palette {
	return append(domain.Palette(nil), s.palette...)
}

// MaxAlters returns the configured alter limit
func (s *Store) MaxAlters() int {
	return s.maxAlters
}

// Node returns a copy of the node at index
func (s *Store) Node(index int) (domain.Node, bool) {
	if index < 0 || index >= len(s.state.Nodes) {
		return domain.Node{}, false
	}
	return s.state.Nodes[index], true
}

// SetPalette replaces the categorical palette. Categories already assigned
// keep the label and color they were given.
func (s *Store) SetPalette(p domain.Palette) {
	WithPalette(p)(s)
}

// Naming stage

// CreateNode appends a new alter with default attributes and its focus
func (s *Store) CreateNode(name string) (domain.Node, error) {
	var created domain.Node
	err := s.mutate(func(next *domain.Network) error {
		if next.Alters() >= s.maxAlters {
			return ErrAlterLimit
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptyName
		}

		vp := next.Viewport
		key := len(next.Nodes)
		focus := domain.NewFocus(key, geometry.Focus(vp, key))
		next.AddFocus(focus)

		node := domain.NewNode(key, name, geometry.NodeSize(vp))
		anchor := geometry.Anchor(vp, domain.FociPoints(next.Foci), key)
		node.FloatX, node.FloatY = anchor.X, anchor.Y
		next.AddNode(node)

		next.Progress.Counter = len(next.Nodes)
		created = node
		return nil
	})
	return created, err
}

// RenameNode overwrites the name of an existing alter and returns the
// counter to "new node" mode
func (s *Store) RenameNode(index int, name string) (domain.Node, error) {
	var renamed domain.Node
	err := s.mutate(func(next *domain.Network) error {
		if err := checkAlter(next, index); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptyName
		}
		next.Nodes[index].Name = name
		next.Progress.Counter = len(next.Nodes)
		renamed = next.Nodes[index]
		return nil
	})
	return renamed, err
}

// BeginRename marks an alter as the target of the next submitted name
func (s *Store) BeginRename(index int) error {
	return s.mutate(func(next *domain.Network) error {
		if err := checkAlter(next, index); err != nil {
			return err
		}
		next.Progress.Counter = index
		return nil
	})
}

// RenamePending reports whether the next submitted name edits an existing
// alter instead of creating one
func (s *Store) RenamePending() bool {
	c := s.state.Progress.Counter
	return c >= 1 && c < len(s.state.Nodes)
}

// SubmitName renames the pending alter if an edit is pending, otherwise
// creates a new one
func (s *Store) SubmitName(name string) (domain.Node, error) {
	if s.RenamePending() {
		return s.RenameNode(s.state.Progress.Counter, name)
	}
	return s.CreateNode(name)
}

// Attribute stages

// BinaryToggle describes a two-valued attribute and its display colors
type BinaryToggle struct {
	A, B           domain.Sex
	ColorA, ColorB string
}

// SexCycle cycles unset -> male -> female -> male
var SexCycle = BinaryToggle{
	A:      domain.SexMale,
	ColorA: domain.ColorMale,
	B:      domain.SexFemale,
	ColorB: domain.ColorFemale,
}

// ToggleBinary flips a two-valued attribute and its color. The stage counter
// does not move; cycling is unbounded. A pending correction is consumed like
// any other accepted input.
func (s *Store) ToggleBinary(index int, t BinaryToggle) (domain.Node, error) {
	var updated domain.Node
	err := s.mutate(func(next *domain.Network) error {
		if err := checkAlter(next, index); err != nil {
			return err
		}
		n := &next.Nodes[index]
		if n.Sex == t.A {
			n.Sex, n.Color = t.B, t.ColorB
		} else {
			n.Sex, n.Color = t.A, t.ColorA
		}
		next.Progress.Correction = 0
		updated = *n
		return nil
	})
	return updated, err
}

// CycleSex advances the sex of an alter through SexCycle
func (s *Store) CycleSex(index int) (domain.Node, error) {
	return s.ToggleBinary(index, SexCycle)
}

// SetAge assigns the numeric attribute
func (s *Store) SetAge(index, age int) (domain.Node, error) {
	if age < 0 {
		return domain.Node{}, s.fail(fmt.Errorf("%w: age %d", ErrInvalidValue, age))
	}
	return s.setAttribute(index, func(n *domain.Node) error {
		n.Age = age
		return nil
	})
}

// SetCategory assigns a category from the palette together with its color
func (s *Store) SetCategory(index, categoryID int) (domain.Node, error) {
	cat, ok := s.palette.Lookup(categoryID)
	if !ok {
		return domain.Node{}, s.fail(fmt.Errorf("%w: %d", ErrUnknownCategory, categoryID))
	}
	return s.setAttribute(index, func(n *domain.Node) error {
		n.Category = cat.Text
		n.CategoryColor = cat.Color
		return nil
	})
}

// SetSex assigns the binary attribute directly and advances the counter
func (s *Store) SetSex(index int, sex domain.Sex) (domain.Node, error) {
	var color string
	switch sex {
	case domain.SexMale:
		color = domain.ColorMale
	case domain.SexFemale:
		color = domain.ColorFemale
	default:
		return domain.Node{}, s.fail(fmt.Errorf("%w: sex %q", ErrInvalidValue, sex))
	}
	return s.setAttribute(index, func(n *domain.Node) error {
		n.Sex, n.Color = sex, color
		return nil
	})
}

// setAttribute is the shared path of the prompting stages: bounds check,
// mutate one field, advance the counter past index, clear any correction.
func (s *Store) setAttribute(index int, apply func(n *domain.Node) error) (domain.Node, error) {
	var updated domain.Node
	err := s.mutate(func(next *domain.Network) error {
		if index >= len(next.Nodes) {
			return ErrIndexOutOfRange
		}
		if err := checkAlter(next, index); err != nil {
			return err
		}
		if err := apply(&next.Nodes[index]); err != nil {
			return err
		}
		next.Progress.Counter = index + 1
		next.Progress.Correction = 0
		updated = next.Nodes[index]
		return nil
	})
	return updated, err
}

// Continuous placement

// RecordPlacement stores where the respondent dropped an alter on a
// continuous scale and the measure derived from it. Closeness is the
// horizontal distance from the vertical center line; liking is the
// horizontal position normalized by the canvas width.
func (s *Store) RecordPlacement(index int, x, y float64, kind domain.MeasureKind) (domain.Node, error) {
	var updated domain.Node
	err := s.mutate(func(next *domain.Network) error {
		if err := checkAlter(next, index); err != nil {
			return err
		}
		width := math.Trunc(next.Viewport.Width)
		n := &next.Nodes[index]
		switch kind {
		case domain.MeasureCloseness:
			n.Closeness = math.Abs(x - math.Trunc(next.Viewport.Width*0.5))
		case domain.MeasureLiking:
			if width <= 0 {
				return fmt.Errorf("%w: zero-width viewport", ErrInvalidValue)
			}
			n.Liking = x / width
		default:
			return fmt.Errorf("%w: %q", ErrUnknownMeasure, kind)
		}
		n.FixedPosX, n.FixedPosY = x, y
		updated = *n
		return nil
	})
	return updated, err
}

// Viewport and layout

// SetViewport recomputes foci, node sizes and anchored positions for a new
// viewport. It is the equivalent of remounting on another screen.
func (s *Store) SetViewport(vp geometry.Viewport) error {
	return s.mutate(func(next *domain.Network) error {
		next.Viewport = vp
		for i := range next.Foci {
			next.Foci[i] = domain.NewFocus(i, geometry.Focus(vp, i))
		}
		next.Nodes = Recalculate(next.Nodes, next.Foci, vp, domain.StageNaming, nil)
		return nil
	})
}

// Relayout recomputes render positions for stage and returns them
func (s *Store) Relayout(stage domain.Stage, rendered []geometry.Point) ([]domain.Node, error) {
	err := s.mutate(func(next *domain.Network) error {
		next.Nodes = Recalculate(next.Nodes, next.Foci, next.Viewport, stage, rendered)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Nodes(), nil
}

// checkAlter validates that index addresses an existing non-respondent node
func checkAlter(net *domain.Network, index int) error {
	if index < 0 || index >= len(net.Nodes) {
		return fmt.Errorf("%w: %d (nodes: %d)", ErrInvalidIndex, index, len(net.Nodes))
	}
	if index == domain.RespondentKey {
		return ErrRespondent
	}
	return nil
}
