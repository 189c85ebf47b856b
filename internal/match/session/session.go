// Package session owns the authoritative in-memory state for the current
// game: identity, half, clock, and the ordered event log.
//
// The in-memory state is the immediate source of truth; every mutation is
// applied to memory first and then written through to durable storage. A
// failed write never rolls memory back; the full record is held dirty and
// retried on the next Flush, so storage converges instead of silently
// diverging. Dirty records survive game switches: starting or loading
// another game replaces the live state but keeps the retry sets, so a
// record from an earlier game is still flushed. Score and all review
// surfaces are derived from the event list on every read; nothing here
// caches a counter.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/KTGlem/GameMoments/internal/id"
	"github.com/KTGlem/GameMoments/internal/match/domain"
	"github.com/KTGlem/GameMoments/internal/match/review"
	"github.com/KTGlem/GameMoments/internal/storage"
)

// State identifies the session lifecycle position.
type State int

const (
	// StateIdle means no current game.
	StateIdle State = iota
	// StateActive means a live game in half 1 or 2; logging is valid.
	StateActive
	// StateEnded means a finished live game still held for review.
	StateEnded
	// StateReviewing means a saved game loaded read-only; never live.
	StateReviewing
)

var (
	// ErrNoGame indicates no game is loaded or live.
	ErrNoGame = errors.New("no game is loaded")
	// ErrNotLive indicates a mutation that requires an active game.
	ErrNotLive = errors.New("no live game")
	// ErrInvalidTransition indicates a lifecycle change from the wrong state.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrNothingToUndo indicates undo was requested on an empty event list.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrReadOnly indicates a log mutation on a loaded saved game.
	ErrReadOnly = errors.New("loaded game is read-only")
	// ErrNoAdjustment indicates a zero-and-zero time adjustment.
	ErrNoAdjustment = errors.New("no adjustment to apply")
)

// Session is the single owned handle over the current game, its event list,
// and its clock. Only one in-memory game exists at a time; loading another
// discards the previous copy without touching its persisted form.
type Session struct {
	store       storage.Store
	log         zerolog.Logger
	now         func() time.Time
	idGenerator func() (string, error)

	state  State
	half   int
	game   domain.Game
	events []domain.Event
	clock  *Clock

	// Dirty bookkeeping for failed write-throughs, retried by Flush. The
	// maps hold full payloads keyed by record ID so retries do not depend
	// on the record still being part of the live game.
	dirtyGames     map[string]domain.Game
	dirtyEvents    map[string]domain.Event
	pendingDeletes map[string]bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger for persistence diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
		s.clock = NewClock(now)
	}
}

// WithIDGenerator overrides ID generation, for tests.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(s *Session) {
		s.idGenerator = generator
	}
}

// New creates an idle session backed by the given store.
func New(store storage.Store, opts ...Option) *Session {
	s := &Session{
		store:          store,
		log:            zerolog.Nop(),
		now:            time.Now,
		idGenerator:    id.NewID,
		state:          StateIdle,
		clock:          NewClock(time.Now),
		dirtyGames:     make(map[string]domain.Game),
		dirtyEvents:    make(map[string]domain.Event),
		pendingDeletes: make(map[string]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Live reports whether event logging is currently valid.
func (s *Session) Live() bool {
	return s.state == StateActive
}

// Half returns the current half, or zero when no live half exists (idle or
// reviewing sessions).
func (s *Session) Half() int {
	return s.half
}

// Game returns the current game and whether one is loaded.
func (s *Session) Game() (domain.Game, bool) {
	if s.state == StateIdle {
		return domain.Game{}, false
	}
	return s.game, true
}

// Clock returns the session-owned half clock.
func (s *Session) Clock() *Clock {
	return s.clock
}

// Events returns a copy of the event list in append order.
func (s *Session) Events() []domain.Event {
	events := make([]domain.Event, len(s.events))
	copy(events, s.events)
	return events
}

// DisplayEvents returns the event list ordered for review: half ascending,
// then half-seconds ascending.
func (s *Session) DisplayEvents() []domain.Event {
	return domain.SortForDisplay(s.events)
}

// Recent returns up to limit events, newest appended first.
func (s *Session) Recent(limit int) []domain.Event {
	return domain.Recent(s.events, limit)
}

// Scoreboard derives the goal counts from the unfiltered event list.
func (s *Session) Scoreboard() domain.Scoreboard {
	return domain.ComputeScoreboard(s.events)
}

// StartGame creates a new game, persists it, and starts a live half-1
// session with an empty event list and a zeroed clock. The previous
// in-memory game is discarded; its dirty records stay queued for Flush.
func (s *Session) StartGame(ctx context.Context, input domain.CreateGameInput) (domain.Game, error) {
	game, err := domain.CreateGame(input, s.now, s.idGenerator)
	if err != nil {
		return domain.Game{}, err
	}

	s.game = game
	s.events = nil
	s.half = 1
	s.state = StateActive
	s.clock.Reset()

	s.persistGame(ctx, game)
	return game, nil
}

// StartSecondHalf moves a live half-1 session to half 2, stopping and
// zeroing the clock. Events already logged are untouched.
func (s *Session) StartSecondHalf() error {
	if s.state != StateActive || s.half != 1 {
		return ErrInvalidTransition
	}
	s.half = 2
	s.clock.Reset()
	return nil
}

// EndGame stops the clock and marks the session not live. The game and its
// events stay in memory for review.
func (s *Session) EndGame() error {
	if s.state != StateActive {
		return ErrInvalidTransition
	}
	s.clock.Stop()
	s.state = StateEnded
	return nil
}

// Resume returns an ended session to live without creating a new game. The
// clock keeps its last value; restarting it is the caller's call.
func (s *Session) Resume() error {
	if s.state != StateEnded {
		return ErrInvalidTransition
	}
	s.state = StateActive
	return nil
}

// LoadGame replaces the session with a saved game in read-only reviewing
// state. Loaded games are never live.
func (s *Session) LoadGame(ctx context.Context, gameID string) error {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	events, err := s.store.ListEventsByGame(ctx, gameID)
	if err != nil {
		return err
	}

	s.game = game
	s.events = events
	s.half = 0
	s.state = StateReviewing
	s.clock.Reset()
	return nil
}

// SavedGames lists all persisted games, newest first.
func (s *Session) SavedGames(ctx context.Context) ([]domain.Game, error) {
	return s.store.ListGames(ctx)
}

// LogEvent snapshots the current half and clock into a new event, appends
// it to the in-memory list, and writes it through. Valid only while live.
func (s *Session) LogEvent(ctx context.Context, code domain.Code) (domain.Event, error) {
	if s.state != StateActive {
		return domain.Event{}, ErrNotLive
	}

	event, err := domain.CreateEvent(domain.CreateEventInput{
		GameID:      s.game.ID,
		Half:        s.half,
		HalfSeconds: s.clock.Seconds(),
		Code:        code,
	}, s.now, s.idGenerator)
	if err != nil {
		return domain.Event{}, err
	}

	// The append is the authoritative state change; persistence follows.
	s.events = append(s.events, event)
	s.persistEvent(ctx, event)
	return event, nil
}

// Undo removes the most recently appended event from memory, then deletes
// it from storage. After a time adjustment reorders the display view the
// last-appended event may not be the chronologically last one; undo stays
// append-ordered regardless. Loaded saved games are read-only; undo is for
// the live (or just-ended) game's log.
func (s *Session) Undo(ctx context.Context) (domain.Event, error) {
	if s.state == StateIdle {
		return domain.Event{}, ErrNoGame
	}
	if s.state == StateReviewing {
		return domain.Event{}, ErrReadOnly
	}
	if len(s.events) == 0 {
		return domain.Event{}, ErrNothingToUndo
	}

	event := s.events[len(s.events)-1]
	s.events = s.events[:len(s.events)-1]
	delete(s.dirtyEvents, event.ID)

	if err := s.store.DeleteEvent(ctx, event.ID); err != nil {
		s.pendingDeletes[event.ID] = true
		s.log.Warn().Err(err).Str("event_id", event.ID).Msg("delete event failed; retrying on flush")
	}
	return event, nil
}

// AdjustTimes applies signed per-half offsets to every event in the list,
// clamping at zero, then re-persists the whole list. A zero-and-zero
// adjustment is rejected before any persistence.
func (s *Session) AdjustTimes(ctx context.Context, firstOffset, secondOffset int) error {
	if s.state == StateIdle {
		return ErrNoGame
	}
	if firstOffset == 0 && secondOffset == 0 {
		return ErrNoAdjustment
	}

	s.events = review.ShiftTimes(s.events, firstOffset, secondOffset)

	// The adjustment destructively rewrites every t_half_seconds, so every
	// event is re-persisted, not just a filtered subset.
	for _, event := range s.events {
		s.persistEvent(ctx, event)
	}
	return nil
}

// FilteredEvents applies the review filter to the display-ordered list.
// The score is unaffected by filters; use Scoreboard for it.
func (s *Session) FilteredEvents(filter review.Filter) []domain.Event {
	return filter.Apply(s.DisplayEvents())
}

// Dirty reports whether any record is awaiting a persistence retry.
func (s *Session) Dirty() bool {
	return len(s.dirtyGames) > 0 || len(s.dirtyEvents) > 0 || len(s.pendingDeletes) > 0
}

// Flush retries every dirty write and pending delete, including records
// from games no longer in memory. Records that persist successfully leave
// the dirty set; the rest stay for the next attempt.
func (s *Session) Flush(ctx context.Context) error {
	var errs []error

	for gameID, game := range s.dirtyGames {
		if err := s.store.PutGame(ctx, game); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.dirtyGames, gameID)
	}

	for eventID, event := range s.dirtyEvents {
		if err := s.store.PutEvent(ctx, event); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.dirtyEvents, eventID)
	}

	for eventID := range s.pendingDeletes {
		if err := s.store.DeleteEvent(ctx, eventID); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.pendingDeletes, eventID)
	}

	return errors.Join(errs...)
}

func (s *Session) persistGame(ctx context.Context, game domain.Game) {
	if err := s.store.PutGame(ctx, game); err != nil {
		s.dirtyGames[game.ID] = game
		s.log.Warn().Err(err).Str("game_id", game.ID).Msg("persist game failed; marked dirty")
		return
	}
	delete(s.dirtyGames, game.ID)
}

func (s *Session) persistEvent(ctx context.Context, event domain.Event) {
	if err := s.store.PutEvent(ctx, event); err != nil {
		s.dirtyEvents[event.ID] = event
		s.log.Warn().Err(err).Str("event_id", event.ID).Msg("persist event failed; marked dirty")
		return
	}
	delete(s.dirtyEvents, event.ID)
}
