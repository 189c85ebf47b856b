// Package storage defines the persistence contracts for game and event
// records.
//
// Two record collections exist: games (keyed by game ID) and events (keyed
// by event ID), with one secondary lookup from game ID to its events. Each
// record write or delete is independently atomic; no operation spans
// multiple records. Implementations live in subpackages (sqlite, bolt).
package storage

import (
	"context"
	"errors"

	"github.com/KTGlem/GameMoments/internal/match/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// GameStore persists game metadata records.
//
// Games are never deleted; no delete operation exists on purpose.
type GameStore interface {
	// PutGame inserts or replaces a game record.
	PutGame(ctx context.Context, game domain.Game) error
	// GetGame fetches one game by ID, or ErrNotFound.
	GetGame(ctx context.Context, id string) (domain.Game, error)
	// ListGames returns all saved games, newest first by date.
	ListGames(ctx context.Context) ([]domain.Game, error)
}

// EventStore persists event records and the events-by-game lookup.
//
// ListEventsByGame returns events in storage order, which is insertion
// order; callers needing display order sort the result themselves.
type EventStore interface {
	// PutEvent inserts or replaces an event record.
	PutEvent(ctx context.Context, event domain.Event) error
	// ListEventsByGame returns every event owned by the game.
	ListEventsByGame(ctx context.Context, gameID string) ([]domain.Event, error)
	// DeleteEvent removes one event by ID. Deleting a missing event is
	// not an error; the store converges on the same state either way.
	DeleteEvent(ctx context.Context, id string) error
}

// Store combines both collections behind one handle.
type Store interface {
	GameStore
	EventStore
	Close() error
}
