package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/KTGlem/GameMoments/internal/match/domain"
	"github.com/KTGlem/GameMoments/internal/match/review"
	"github.com/KTGlem/GameMoments/internal/storage"
)

// fakeStore is an in-memory storage.Store with per-call failure injection.
type fakeStore struct {
	games  map[string]domain.Game
	events []domain.Event

	failPutGame   bool
	failPutEvent  bool
	failDelete    bool
	putEventCalls int
	deleteCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{games: make(map[string]domain.Game)}
}

func (f *fakeStore) PutGame(ctx context.Context, game domain.Game) error {
	if f.failPutGame {
		return errors.New("put game failed")
	}
	f.games[game.ID] = game
	return nil
}

func (f *fakeStore) GetGame(ctx context.Context, id string) (domain.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return domain.Game{}, storage.ErrNotFound
	}
	return game, nil
}

func (f *fakeStore) ListGames(ctx context.Context) ([]domain.Game, error) {
	games := make([]domain.Game, 0, len(f.games))
	for _, game := range f.games {
		games = append(games, game)
	}
	return games, nil
}

func (f *fakeStore) PutEvent(ctx context.Context, event domain.Event) error {
	f.putEventCalls++
	if f.failPutEvent {
		return errors.New("put event failed")
	}
	for i := range f.events {
		if f.events[i].ID == event.ID {
			f.events[i] = event
			return nil
		}
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) ListEventsByGame(ctx context.Context, gameID string) ([]domain.Event, error) {
	var events []domain.Event
	for _, event := range f.events {
		if event.GameID == gameID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (f *fakeStore) DeleteEvent(ctx context.Context, id string) error {
	f.deleteCalls++
	if f.failDelete {
		return errors.New("delete event failed")
	}
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

var _ storage.Store = (*fakeStore)(nil)

func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

func newTestSession(store storage.Store, mt *manualTime) *Session {
	return New(store, WithNow(mt.now), WithIDGenerator(sequentialIDs()))
}

func startLiveGame(t *testing.T, s *Session) domain.Game {
	t.Helper()
	game, err := s.StartGame(context.Background(), domain.CreateGameInput{
		Opponent:   "Riverside",
		LoggerName: "Coach A",
	})
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return game
}

func TestNewSessionIsIdle(t *testing.T) {
	s := newTestSession(newFakeStore(), newManualTime())
	if s.State() != StateIdle {
		t.Fatalf("expected idle state, got %v", s.State())
	}
	if s.Live() {
		t.Fatal("idle session must not be live")
	}
	if _, ok := s.Game(); ok {
		t.Fatal("idle session has no game")
	}
}

func TestStartGamePersistsAndGoesLive(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())

	game := startLiveGame(t, s)

	if s.State() != StateActive || !s.Live() {
		t.Fatal("expected live active session")
	}
	if s.Half() != 1 {
		t.Fatalf("expected half 1, got %d", s.Half())
	}
	if len(s.Events()) != 0 {
		t.Fatal("expected empty event list")
	}
	if s.Clock().Seconds() != 0 || s.Clock().Running() {
		t.Fatal("expected zeroed stopped clock")
	}
	if _, ok := store.games[game.ID]; !ok {
		t.Fatal("expected game written through to store")
	}
}

func TestStartGamePersistFailureMarksDirty(t *testing.T) {
	store := newFakeStore()
	store.failPutGame = true
	s := newTestSession(store, newManualTime())

	game := startLiveGame(t, s)

	// Memory leads storage: the session is live even though the write failed.
	if !s.Live() {
		t.Fatal("session should be live despite persistence failure")
	}
	if !s.Dirty() {
		t.Fatal("expected dirty session")
	}

	store.failPutGame = false
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s.Dirty() {
		t.Fatal("expected clean session after flush")
	}
	if _, ok := store.games[game.ID]; !ok {
		t.Fatal("expected game persisted by flush")
	}
}

func TestLogEventSnapshotsHalfAndClock(t *testing.T) {
	store := newFakeStore()
	mt := newManualTime()
	s := newTestSession(store, mt)
	game := startLiveGame(t, s)

	s.Clock().Start()
	mt.advance(125 * time.Second)

	event, err := s.LogEvent(context.Background(), domain.CodeGoalPFC)
	if err != nil {
		t.Fatalf("log event: %v", err)
	}
	if event.GameID != game.ID {
		t.Fatalf("unexpected game id %q", event.GameID)
	}
	if event.Half != 1 || event.HalfSeconds != 125 {
		t.Fatalf("unexpected snapshot H%d %ds", event.Half, event.HalfSeconds)
	}

	board := s.Scoreboard()
	if board.PFC != 1 || board.Opp != 0 {
		t.Fatalf("expected 1-0, got %d-%d", board.PFC, board.Opp)
	}

	recent := s.Recent(5)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent event, got %d", len(recent))
	}
	line := fmt.Sprintf("H%d %s %s", recent[0].Half, domain.FormatSeconds(recent[0].HalfSeconds), recent[0].Code.Label())
	if line != "H1 02:05 Goal — PFC" {
		t.Fatalf("unexpected recent line %q", line)
	}

	if len(store.events) != 1 {
		t.Fatal("expected event written through")
	}
}

func TestLogEventRequiresLiveGame(t *testing.T) {
	s := newTestSession(newFakeStore(), newManualTime())

	if _, err := s.LogEvent(context.Background(), domain.CodeGoalPFC); !errors.Is(err, ErrNotLive) {
		t.Fatalf("expected ErrNotLive, got %v", err)
	}

	startLiveGame(t, s)
	if err := s.EndGame(); err != nil {
		t.Fatalf("end game: %v", err)
	}
	if _, err := s.LogEvent(context.Background(), domain.CodeGoalPFC); !errors.Is(err, ErrNotLive) {
		t.Fatalf("expected ErrNotLive after end, got %v", err)
	}
}

func TestLogEventRejectsInvalidCode(t *testing.T) {
	s := newTestSession(newFakeStore(), newManualTime())
	startLiveGame(t, s)

	if _, err := s.LogEvent(context.Background(), "GOAL_BOTH"); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if len(s.Events()) != 0 {
		t.Fatal("invalid code must not append")
	}
}

func TestStartSecondHalfResetsClockKeepsEvents(t *testing.T) {
	store := newFakeStore()
	mt := newManualTime()
	s := newTestSession(store, mt)
	startLiveGame(t, s)

	s.Clock().Start()
	mt.advance(100 * time.Second)
	if _, err := s.LogEvent(context.Background(), domain.CodeCornerPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}

	if err := s.StartSecondHalf(); err != nil {
		t.Fatalf("start second half: %v", err)
	}
	if s.Half() != 2 {
		t.Fatalf("expected half 2, got %d", s.Half())
	}
	if s.Clock().Seconds() != 0 || s.Clock().Running() {
		t.Fatal("expected stopped zeroed clock")
	}
	if len(s.Events()) != 1 {
		t.Fatal("half transition must not touch logged events")
	}

	if err := s.StartSecondHalf(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestEndGameAndResumeKeepClockValue(t *testing.T) {
	mt := newManualTime()
	s := newTestSession(newFakeStore(), mt)
	startLiveGame(t, s)
	if err := s.StartSecondHalf(); err != nil {
		t.Fatalf("start second half: %v", err)
	}

	s.Clock().Start()
	mt.advance(30 * time.Second)

	if err := s.EndGame(); err != nil {
		t.Fatalf("end game: %v", err)
	}
	if s.State() != StateEnded || s.Live() {
		t.Fatal("expected ended, not live")
	}
	if s.Clock().Running() {
		t.Fatal("end game must stop the clock")
	}

	mt.advance(5 * time.Minute)
	if err := s.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !s.Live() || s.Half() != 2 {
		t.Fatal("resume should return to live half 2")
	}
	if s.Clock().Seconds() != 30 {
		t.Fatalf("expected clock resumed at 30, got %d", s.Clock().Seconds())
	}

	if err := s.Resume(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUndoRemovesLastAppended(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)

	if _, err := s.LogEvent(context.Background(), domain.CodeGoalPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}
	logged, err := s.LogEvent(context.Background(), domain.CodeCornerOpp)
	if err != nil {
		t.Fatalf("log event: %v", err)
	}

	undone, err := s.Undo(context.Background())
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undone.ID != logged.ID {
		t.Fatalf("expected last appended %q undone, got %q", logged.ID, undone.ID)
	}
	if len(s.Events()) != 1 {
		t.Fatalf("expected 1 event left, got %d", len(s.Events()))
	}
	if len(store.events) != 1 {
		t.Fatal("expected store delete")
	}
}

func TestUndoEmptyList(t *testing.T) {
	s := newTestSession(newFakeStore(), newManualTime())
	startLiveGame(t, s)

	if _, err := s.LogEvent(context.Background(), domain.CodeCornerOpp); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if _, err := s.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	// List is now truly empty; only now does undo report nothing to undo.
	if _, err := s.Undo(context.Background()); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestUndoDeleteFailureRetriedOnFlush(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)

	logged, err := s.LogEvent(context.Background(), domain.CodeGoalOpp)
	if err != nil {
		t.Fatalf("log event: %v", err)
	}

	store.failDelete = true
	if _, err := s.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(s.Events()) != 0 {
		t.Fatal("memory must drop the event even when the delete fails")
	}
	if !s.Dirty() {
		t.Fatal("expected pending delete to mark session dirty")
	}

	store.failDelete = false
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	for _, evt := range store.events {
		if evt.ID == logged.ID {
			t.Fatal("expected event deleted from store after flush")
		}
	}
}

func TestAppendThenUndoRoundTrip(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)

	if _, err := s.LogEvent(context.Background(), domain.CodeGoalPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}
	before := s.Events()

	if _, err := s.LogEvent(context.Background(), domain.CodeSideoutOpp); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if _, err := s.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}

	after := s.Events()
	if len(after) != len(before) {
		t.Fatalf("round trip length mismatch: %d != %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Fatalf("round trip mismatch at %d", i)
		}
	}
}

func TestAdjustTimesShiftsAndRepersists(t *testing.T) {
	store := newFakeStore()
	mt := newManualTime()
	s := newTestSession(store, mt)
	game := startLiveGame(t, s)
	ctx := context.Background()

	s.Clock().Start()
	mt.advance(10 * time.Second)
	if _, err := s.LogEvent(ctx, domain.CodeGoalKickPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}
	mt.advance(40 * time.Second)
	if _, err := s.LogEvent(ctx, domain.CodeFreeKickOpp); err != nil {
		t.Fatalf("log event: %v", err)
	}

	if err := s.AdjustTimes(ctx, 20, 0); err != nil {
		t.Fatalf("adjust times: %v", err)
	}

	events := s.Events()
	if events[0].HalfSeconds != 30 || events[1].HalfSeconds != 70 {
		t.Fatalf("expected 30s and 70s, got %ds and %ds", events[0].HalfSeconds, events[1].HalfSeconds)
	}

	// Store agrees with memory after the full re-persist.
	stored, err := store.ListEventsByGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if stored[0].HalfSeconds != 30 || stored[1].HalfSeconds != 70 {
		t.Fatalf("store behind memory: %ds and %ds", stored[0].HalfSeconds, stored[1].HalfSeconds)
	}
}

func TestAdjustTimesZeroZeroRejectedBeforePersistence(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)
	ctx := context.Background()

	if _, err := s.LogEvent(ctx, domain.CodeGoalPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}
	writes := store.putEventCalls

	if err := s.AdjustTimes(ctx, 0, 0); !errors.Is(err, ErrNoAdjustment) {
		t.Fatalf("expected ErrNoAdjustment, got %v", err)
	}
	if store.putEventCalls != writes {
		t.Fatal("zero adjustment must not touch the store")
	}
}

func TestAdjustTimesClampsAtZero(t *testing.T) {
	store := newFakeStore()
	mt := newManualTime()
	s := newTestSession(store, mt)
	startLiveGame(t, s)
	ctx := context.Background()

	s.Clock().Start()
	mt.advance(5 * time.Second)
	if _, err := s.LogEvent(ctx, domain.CodeKickoffOpp); err != nil {
		t.Fatalf("log event: %v", err)
	}

	if err := s.AdjustTimes(ctx, -60, -60); err != nil {
		t.Fatalf("adjust times: %v", err)
	}
	if got := s.Events()[0].HalfSeconds; got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestLoadGameEntersReviewing(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	saved := domain.Game{ID: "game-1", Date: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), Opponent: "Lakeside", LoggerName: "Coach B"}
	if err := store.PutGame(ctx, saved); err != nil {
		t.Fatalf("put game: %v", err)
	}
	// Persisted out of chronological order.
	for i, entry := range []struct {
		half, seconds int
	}{{2, 5}, {1, 30}, {1, 5}} {
		evt := domain.Event{
			ID: fmt.Sprintf("event-%d", i), GameID: "game-1",
			Half: entry.half, HalfSeconds: entry.seconds, Code: domain.CodeGoalPFC,
			CreatedAt: saved.Date,
		}
		if err := store.PutEvent(ctx, evt); err != nil {
			t.Fatalf("put event: %v", err)
		}
	}

	s := newTestSession(store, newManualTime())
	if err := s.LoadGame(ctx, "game-1"); err != nil {
		t.Fatalf("load game: %v", err)
	}
	if s.State() != StateReviewing || s.Live() {
		t.Fatal("loaded game must be reviewing, never live")
	}
	if _, err := s.LogEvent(ctx, domain.CodeGoalPFC); !errors.Is(err, ErrNotLive) {
		t.Fatalf("expected ErrNotLive while reviewing, got %v", err)
	}

	ordered := s.DisplayEvents()
	wantOrder := []struct{ half, seconds int }{{1, 5}, {1, 30}, {2, 5}}
	for i, want := range wantOrder {
		if ordered[i].Half != want.half || ordered[i].HalfSeconds != want.seconds {
			t.Fatalf("position %d: got H%d %ds, want H%d %ds",
				i, ordered[i].Half, ordered[i].HalfSeconds, want.half, want.seconds)
		}
	}
}

func TestLoadGameNotFound(t *testing.T) {
	s := newTestSession(newFakeStore(), newManualTime())
	if err := s.LoadGame(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadGameDiscardsPreviousInMemoryCopy(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	s := newTestSession(store, newManualTime())

	first := startLiveGame(t, s)
	if _, err := s.LogEvent(ctx, domain.CodeGoalPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}

	other := domain.Game{ID: "other", Date: time.Now().UTC(), Opponent: "X", LoggerName: "Y"}
	if err := store.PutGame(ctx, other); err != nil {
		t.Fatalf("put game: %v", err)
	}
	if err := s.LoadGame(ctx, "other"); err != nil {
		t.Fatalf("load game: %v", err)
	}

	if game, _ := s.Game(); game.ID != "other" {
		t.Fatalf("expected loaded game, got %q", game.ID)
	}
	if len(s.Events()) != 0 {
		t.Fatal("expected loaded game's empty event list")
	}

	// The discarded game's persisted form is untouched.
	stored, err := store.ListEventsByGame(ctx, first.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 1 {
		t.Fatal("discarding memory must not touch persisted events")
	}
}

func TestFilteredEventsDoNotAffectScore(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)
	ctx := context.Background()

	for _, code := range []domain.Code{domain.CodeGoalPFC, domain.CodeGoalOpp, domain.CodeCornerPFC} {
		if _, err := s.LogEvent(ctx, code); err != nil {
			t.Fatalf("log event: %v", err)
		}
	}

	filtered := s.FilteredEvents(review.Filter{Side: domain.SidePFC, Family: domain.FamilyGoal})
	if len(filtered) != 1 {
		t.Fatalf("expected 1 filtered event, got %d", len(filtered))
	}

	board := s.Scoreboard()
	if board.PFC != 1 || board.Opp != 1 {
		t.Fatalf("filters must not affect score: got %d-%d", board.PFC, board.Opp)
	}
}

func TestLogEventPersistFailureKeepsMemoryAndRetries(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)
	ctx := context.Background()

	store.failPutEvent = true
	logged, err := s.LogEvent(ctx, domain.CodeGoalPFC)
	if err != nil {
		t.Fatalf("log event: %v", err)
	}
	if len(s.Events()) != 1 {
		t.Fatal("memory append must survive persistence failure")
	}
	if !s.Dirty() {
		t.Fatal("expected dirty event")
	}

	store.failPutEvent = false
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s.Dirty() {
		t.Fatal("expected clean session after flush")
	}
	if len(store.events) != 1 || store.events[0].ID != logged.ID {
		t.Fatal("expected event persisted by flush")
	}
}

func TestFlushRetriesDirtyEventAfterNewGame(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	first := startLiveGame(t, s)
	ctx := context.Background()

	store.failPutEvent = true
	logged, err := s.LogEvent(ctx, domain.CodeGoalPFC)
	if err != nil {
		t.Fatalf("log event: %v", err)
	}
	store.failPutEvent = false

	// Switching games discards the in-memory list but not the retry set.
	if _, err := s.StartGame(ctx, domain.CreateGameInput{Opponent: "Lakeside"}); err != nil {
		t.Fatalf("start game: %v", err)
	}
	if !s.Dirty() {
		t.Fatal("dirty event from the previous game must survive the switch")
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s.Dirty() {
		t.Fatal("expected clean session after flush")
	}
	stored, err := store.ListEventsByGame(ctx, first.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != logged.ID {
		t.Fatal("expected previous game's event persisted by flush")
	}
}

func TestFlushRetriesDirtyGameAfterNewGame(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	ctx := context.Background()

	store.failPutGame = true
	first := startLiveGame(t, s)
	store.failPutGame = false

	second, err := s.StartGame(ctx, domain.CreateGameInput{Opponent: "Lakeside"})
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	if !s.Dirty() {
		t.Fatal("dirty game record must survive the switch")
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	for _, id := range []string{first.ID, second.ID} {
		if _, ok := store.games[id]; !ok {
			t.Fatalf("expected game %q persisted", id)
		}
	}
}

func TestFlushRetriesPendingDeleteAfterLoad(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	ctx := context.Background()
	startLiveGame(t, s)

	logged, err := s.LogEvent(ctx, domain.CodeGoalOpp)
	if err != nil {
		t.Fatalf("log event: %v", err)
	}
	store.failDelete = true
	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	store.failDelete = false

	other := domain.Game{ID: "other", Date: time.Now().UTC(), Opponent: "X", LoggerName: "Y"}
	if err := store.PutGame(ctx, other); err != nil {
		t.Fatalf("put game: %v", err)
	}
	if err := s.LoadGame(ctx, "other"); err != nil {
		t.Fatalf("load game: %v", err)
	}
	if !s.Dirty() {
		t.Fatal("pending delete must survive loading another game")
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	for _, evt := range store.events {
		if evt.ID == logged.ID {
			t.Fatal("expected undone event deleted from store after flush")
		}
	}
}

func TestUndoRejectedWhileReviewing(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	saved := domain.Game{ID: "game-1", Date: time.Now().UTC(), Opponent: "Lakeside", LoggerName: "Coach B"}
	if err := store.PutGame(ctx, saved); err != nil {
		t.Fatalf("put game: %v", err)
	}
	evt := domain.Event{ID: "event-1", GameID: "game-1", Half: 1, HalfSeconds: 5, Code: domain.CodeGoalPFC, CreatedAt: saved.Date}
	if err := store.PutEvent(ctx, evt); err != nil {
		t.Fatalf("put event: %v", err)
	}

	s := newTestSession(store, newManualTime())
	if err := s.LoadGame(ctx, "game-1"); err != nil {
		t.Fatalf("load game: %v", err)
	}

	if _, err := s.Undo(ctx); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if len(s.Events()) != 1 {
		t.Fatal("loaded event list must be untouched")
	}
	if store.deleteCalls != 0 {
		t.Fatal("read-only undo must not touch the store")
	}
}

func TestUndoDirtyEventSkipsStoreDelete(t *testing.T) {
	store := newFakeStore()
	s := newTestSession(store, newManualTime())
	startLiveGame(t, s)
	ctx := context.Background()

	store.failPutEvent = true
	if _, err := s.LogEvent(ctx, domain.CodeGoalPFC); err != nil {
		t.Fatalf("log event: %v", err)
	}
	store.failPutEvent = false

	// The event never reached the store; undo still converges: the store
	// delete of a missing record succeeds and the dirty mark is dropped.
	if _, err := s.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if s.Dirty() {
		t.Fatal("expected clean session")
	}
	if len(store.events) != 0 {
		t.Fatal("expected no events in store")
	}
}
