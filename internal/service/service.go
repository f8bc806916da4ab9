package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"gentle/internal/codec"
	"gentle/internal/core/network"
	"gentle/internal/domain"
	"gentle/internal/geometry"
	"gentle/internal/repository"
)

var (
	// ErrSessionNotFound is returned for unknown session IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidViewport is returned for non-positive screen dimensions
	ErrInvalidViewport = errors.New("viewport dimensions must be positive")
	// ErrStageMismatch is returned when a callback does not apply to a stage
	ErrStageMismatch = errors.New("operation not available on this stage")
)

// Options configures the stores created by a SessionService
type Options struct {
	MaxAlters       int
	RespondentLabel string
	Palette         domain.Palette
	Strict          bool
	PseudonymKey    []byte
	IdleTimeout     time.Duration
}

// SessionService owns the live sessions. Every callback of one session is
// serialized by that session's lock; different sessions proceed in parallel.
// With a repository, every accepted change is persisted before it is
// acknowledged and evicted sessions are reloaded on demand.
type SessionService struct {
	repo     repository.SessionRepository
	eventBus *EventBus
	codecs   *codec.Registry

	mu       sync.RWMutex
	sessions map[string]*session
	opts     Options
}

type session struct {
	mu       sync.Mutex
	store    *network.Store
	lastUsed time.Time
}

// NewSessionService creates a session service. repo may be nil, in which case
// sessions live in memory only.
func NewSessionService(repo repository.SessionRepository, eventBus *EventBus, opts Options) *SessionService {
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	return &SessionService{
		repo:     repo,
		eventBus: eventBus,
		codecs:   codec.NewRegistry(),
		sessions: make(map[string]*session),
		opts:     opts,
	}
}

// storeOptions translates the service options for a new or restored store
func (s *SessionService) storeOptions() []network.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []network.Option{
		network.WithMaxAlters(s.opts.MaxAlters),
		network.WithPalette(s.opts.Palette),
		network.WithStrict(s.opts.Strict),
		network.WithRespondentLabel(s.opts.RespondentLabel),
	}
}

// NewViewport validates raw screen dimensions
func NewViewport(width, height float64) (geometry.Viewport, error) {
	if width <= 0 || height <= 0 {
		return geometry.Viewport{}, fmt.Errorf("%w: %gx%g", ErrInvalidViewport, width, height)
	}
	return geometry.NewViewport(width, height), nil
}

// Session lifecycle

// CreateSession starts a new respondent session for the given screen
func (s *SessionService) CreateSession(ctx context.Context, width, height float64) (*domain.Network, error) {
	vp, err := NewViewport(width, height)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	store := network.New(id, vp, s.storeOptions()...)
	if err := s.persist(ctx, store); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[id] = &session{store: store, lastUsed: time.Now()}
	s.mu.Unlock()

	log.Info().Str("session_id", id).Bool("narrow", vp.Narrow).Msg("session created")
	s.eventBus.Publish(Event{Type: EventSessionCreated, SessionID: id})

	return store.Network(), nil
}

// GetSession returns a snapshot of a session
func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.Network, error) {
	var net *domain.Network
	err := s.view(ctx, id, func(st *network.Store) error {
		net = st.Network()
		return nil
	})
	return net, err
}

// ListSessions returns summaries of all known sessions, most recent first
func (s *SessionService) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	if s.repo != nil {
		return s.repo.ListSessions(ctx)
	}

	s.mu.RLock()
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(live))
	for _, sess := range live {
		sess.mu.Lock()
		summaries = append(summaries, sess.store.Network().Summary())
		sess.mu.Unlock()
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// DeleteSession removes a session from memory and storage
func (s *SessionService) DeleteSession(ctx context.Context, id string) error {
	s.mu.RLock()
	sess, live := s.sessions[id]
	s.mu.RUnlock()
	if live {
		// wait for an in-flight callback so it cannot save after the delete
		sess.mu.Lock()
		defer sess.mu.Unlock()
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.repo != nil {
		err := s.repo.DeleteSession(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNotFound) && !live:
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("delete session: %w", err)
		}
	} else if !live {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	log.Info().Str("session_id", id).Msg("session deleted")
	s.eventBus.Publish(Event{Type: EventSessionDeleted, SessionID: id})
	return nil
}

// SetViewport recomputes the layout of a session for a new screen size
func (s *SessionService) SetViewport(ctx context.Context, id string, width, height float64) (*domain.Network, error) {
	vp, err := NewViewport(width, height)
	if err != nil {
		return nil, err
	}

	var net *domain.Network
	err = s.update(ctx, id, func(st *network.Store) error {
		if err := st.SetViewport(vp); err != nil {
			return err
		}
		net = st.Network()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{Type: EventViewportChange, SessionID: id, Payload: vp})
	return net, nil
}

// Stage projections

// StageView returns the projection a renderer draws for stage
func (s *SessionService) StageView(ctx context.Context, id string, stage domain.Stage) (any, error) {
	var view any
	err := s.view(ctx, id, func(st *network.Store) error {
		switch {
		case stage.IsPrompting():
			view = st.NamingView(stage)
		case stage == domain.StageCloseness || stage == domain.StageLiking:
			view = st.PlacementView(stage)
		case stage == domain.StageLinking:
			view = st.LinkingView()
		default:
			return fmt.Errorf("%w: %q", ErrStageMismatch, stage)
		}
		return nil
	})
	return view, err
}

// StageState returns the prompting position of stage
func (s *SessionService) StageState(ctx context.Context, id string, stage domain.Stage) (domain.StageState, error) {
	var state domain.StageState
	err := s.view(ctx, id, func(st *network.Store) error {
		state = st.StageState(stage)
		return nil
	})
	return state, err
}

// Callbacks

// SubmitName creates a new alter, or renames the one selected for editing
func (s *SessionService) SubmitName(ctx context.Context, id, name string) (domain.Node, error) {
	var (
		node    domain.Node
		renamed bool
	)
	err := s.update(ctx, id, func(st *network.Store) error {
		renamed = st.RenamePending()
		var err error
		node, err = st.SubmitName(name)
		return err
	})
	if err != nil {
		return node, err
	}

	eventType := EventNodeCreated
	if renamed {
		eventType = EventNodeUpdated
	}
	s.eventBus.Publish(Event{Type: eventType, SessionID: id, Payload: node})
	return node, nil
}

// SelectNode handles a click on an alter of a prompting stage. On the naming
// stage the alter becomes the target of the next submitted name; on the
// numeric and categorical stages it becomes the next prompted alter. Clicks
// on the cycling stage toggle through CycleAttribute instead.
func (s *SessionService) SelectNode(ctx context.Context, id string, stage domain.Stage, index int) (domain.StageState, error) {
	var state domain.StageState
	err := s.update(ctx, id, func(st *network.Store) error {
		var err error
		switch {
		case stage == domain.StageNaming:
			err = st.BeginRename(index)
		case stage == domain.StageCycling:
			return fmt.Errorf("%w: select on %q", ErrStageMismatch, stage)
		case stage.IsPrompting():
			err = st.SetCorrection(index)
		default:
			return fmt.Errorf("%w: select on %q", ErrStageMismatch, stage)
		}
		if err != nil {
			return err
		}
		state = st.StageState(stage)
		return nil
	})
	return state, err
}

// CycleAttribute advances the binary attribute of an alter
func (s *SessionService) CycleAttribute(ctx context.Context, id string, index int) (domain.Node, error) {
	return s.updateNode(ctx, id, func(st *network.Store) (domain.Node, error) {
		return st.CycleSex(index)
	})
}

// SubmitSex assigns the binary attribute of an alter directly
func (s *SessionService) SubmitSex(ctx context.Context, id string, index int, sex domain.Sex) (domain.Node, error) {
	return s.updateNode(ctx, id, func(st *network.Store) (domain.Node, error) {
		return st.SetSex(index, sex)
	})
}

// SubmitScalar records the numeric attribute of an alter
func (s *SessionService) SubmitScalar(ctx context.Context, id string, index, value int) (domain.Node, error) {
	return s.updateNode(ctx, id, func(st *network.Store) (domain.Node, error) {
		return st.SetAge(index, value)
	})
}

// SubmitCategory records the category of an alter
func (s *SessionService) SubmitCategory(ctx context.Context, id string, index, categoryID int) (domain.Node, error) {
	return s.updateNode(ctx, id, func(st *network.Store) (domain.Node, error) {
		return st.SetCategory(index, categoryID)
	})
}

// ReportDragEnd records where an alter was dropped on a continuous stage
func (s *SessionService) ReportDragEnd(ctx context.Context, id string, stage domain.Stage, index int, x, y float64) (domain.Node, error) {
	kind, ok := domain.MeasureFor(stage)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: drag on %q", ErrStageMismatch, stage)
	}
	return s.updateNode(ctx, id, func(st *network.Store) (domain.Node, error) {
		return st.RecordPlacement(index, x, y, kind)
	})
}

// SelectNodeForLinking handles a click on the link-editing stage. positions
// are the coordinates the renderer currently shows, by node index.
func (s *SessionService) SelectNodeForLinking(ctx context.Context, id string, index int, positions []geometry.Point) (network.LinkOutcome, error) {
	var outcome network.LinkOutcome
	err := s.update(ctx, id, func(st *network.Store) error {
		var err error
		outcome, err = st.SelectForLinking(index, positions)
		return err
	})
	if err != nil {
		return outcome, err
	}

	if outcome.Toggled() {
		log.Debug().
			Str("session_id", id).
			Str("event", string(outcome.Event)).
			Int("source", outcome.Source).
			Int("target", outcome.Target).
			Msg("link toggled")
		s.eventBus.Publish(Event{Type: EventLinkToggled, SessionID: id, Payload: outcome})
	}
	return outcome, nil
}

// Linked reports whether alters a and b are linked
func (s *SessionService) Linked(ctx context.Context, id string, a, b int) (bool, error) {
	var linked bool
	err := s.view(ctx, id, func(st *network.Store) error {
		linked = st.HasLink(a, b)
		return nil
	})
	return linked, err
}

// Relayout recomputes render positions for stage from the positions the
// renderer reports
func (s *SessionService) Relayout(ctx context.Context, id string, stage domain.Stage, positions []geometry.Point) ([]domain.Node, error) {
	var nodes []domain.Node
	err := s.update(ctx, id, func(st *network.Store) error {
		var err error
		nodes, err = st.Relayout(stage, positions)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{Type: EventLayoutUpdated, SessionID: id, Payload: network.Positions(nodes)})
	return nodes, nil
}

// RecordProgressSnapshot stores the current nodes and foci as the previous
// state of the session
func (s *SessionService) RecordProgressSnapshot(ctx context.Context, id string) (*network.History, error) {
	var h *network.History
	err := s.view(ctx, id, func(st *network.Store) error {
		h = st.RecordHistory()
		return nil
	})
	return h, err
}

// Palette

// Palette returns the categories offered on the categorical stage
func (s *SessionService) Palette() domain.Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.opts.Palette) == 0 {
		return domain.DefaultCategories()
	}
	return append(domain.Palette(nil), s.opts.Palette...)
}

// ReloadPalette replaces the categorical palette of the service and every
// live session
func (s *SessionService) ReloadPalette(p domain.Palette) {
	s.mu.Lock()
	s.opts.Palette = append(domain.Palette(nil), p...)
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.mu.Lock()
		sess.store.SetPalette(p)
		sess.mu.Unlock()
	}

	log.Info().Int("categories", len(p)).Int("sessions", len(live)).Msg("palette reloaded")
	s.eventBus.Publish(Event{Type: EventPaletteReload, Payload: p})
}

// Idle eviction

// EvictIdle drops sessions unused since before now minus the idle timeout
// from memory. Without a repository nothing is evicted, since eviction would
// lose the data.
func (s *SessionService) EvictIdle(now time.Time) int {
	if s.repo == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timeout := s.opts.IdleTimeout
	if timeout <= 0 {
		return 0
	}

	evicted := 0
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		idle := now.Sub(sess.lastUsed) > timeout
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is cancelled
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := s.EvictIdle(now); n > 0 {
				log.Info().Int("evicted", n).Msg("idle sessions evicted")
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// LiveSessions returns the number of sessions held in memory
func (s *SessionService) LiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Internals

// load returns the live session, restoring it from the repository if needed
func (s *SessionService) load(ctx context.Context, id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if s.repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	net, err := s.repo.GetSession(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	store, err := network.FromNetwork(net, s.storeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have restored it meanwhile
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	sess = &session{store: store, lastUsed: time.Now()}
	s.sessions[id] = sess
	log.Debug().Str("session_id", id).Msg("session restored")
	return sess, nil
}

// acquire returns the live session with its lock held. A session evicted or
// deleted between load and lock is dropped and looked up again, so callers
// never write to a store that is no longer registered.
func (s *SessionService) acquire(ctx context.Context, id string) (*session, error) {
	for {
		sess, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		sess.mu.Lock()
		s.mu.RLock()
		current := s.sessions[id] == sess
		s.mu.RUnlock()
		if current {
			return sess, nil
		}
		sess.mu.Unlock()
	}
}

// view runs fn under the session lock without persisting
func (s *SessionService) view(ctx context.Context, id string, fn func(st *network.Store) error) error {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()
	sess.lastUsed = time.Now()
	return fn(sess.store)
}

// update runs fn under the session lock and persists the result. A failing
// fn leaves the store untouched, so nothing is written. A failed write puts
// the store back to where it was before fn.
func (s *SessionService) update(ctx context.Context, id string, fn func(st *network.Store) error) error {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()

	restore := sess.store.Checkpoint()
	if err := fn(sess.store); err != nil {
		if network.IsRejection(err) {
			log.Debug().Err(err).Str("session_id", id).Msg("input rejected")
		} else {
			log.Warn().Err(err).Str("session_id", id).Msg("callback failed")
		}
		return err
	}
	if err := s.persist(ctx, sess.store); err != nil {
		restore()
		log.Error().Err(err).Str("session_id", id).Msg("change rolled back")
		return err
	}
	sess.lastUsed = time.Now()
	return nil
}

// updateNode is update for callbacks that change one node and publish it
func (s *SessionService) updateNode(ctx context.Context, id string, fn func(st *network.Store) (domain.Node, error)) (domain.Node, error) {
	var node domain.Node
	err := s.update(ctx, id, func(st *network.Store) error {
		var err error
		node, err = fn(st)
		return err
	})
	if err != nil {
		return node, err
	}
	s.eventBus.Publish(Event{Type: EventNodeUpdated, SessionID: id, Payload: node})
	return node, nil
}

func (s *SessionService) persist(ctx context.Context, store *network.Store) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveSession(ctx, store.Network()); err != nil {
		return fmt.Errorf("persist session %s: %w", store.SessionID(), err)
	}
	return nil
}
