// Package bolt provides a BoltDB-backed match storage implementation.
//
// Records are stored as JSON payloads in two buckets, games and events,
// with a third bucket holding the events-by-game index. The JSON field
// names are the persisted record shape and must not change, so saved
// databases stay readable across versions.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KTGlem/GameMoments/internal/match/domain"
	"github.com/KTGlem/GameMoments/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	gamesBucket       = "games"
	eventsBucket      = "events"
	eventsByGameIndex = "idx_events_by_game"
)

// gameRecord is the persisted JSON shape of a game.
type gameRecord struct {
	GameID     string `json:"game_id"`
	Date       string `json:"date"`
	Opponent   string `json:"opponent"`
	LoggerName string `json:"logger_name"`
}

// eventRecord is the persisted JSON shape of an event.
type eventRecord struct {
	EventID      string `json:"event_id"`
	GameID       string `json:"game_id"`
	Half         int    `json:"half"`
	THalfSeconds int    `json:"t_half_seconds"`
	EventCode    string `json:"event_code"`
	CreatedAt    string `json:"created_at"`
}

// Store provides a BoltDB-backed game and event store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path and creates the
// buckets if absent.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{gamesBucket, eventsBucket, eventsByGameIndex} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// PutGame persists one game record.
func (s *Store) PutGame(ctx context.Context, game domain.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	payload, err := json.Marshal(gameRecord{
		GameID:     game.ID,
		Date:       game.Date.UTC().Format(time.RFC3339),
		Opponent:   game.Opponent,
		LoggerName: game.LoggerName,
	})
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		return bucket.Put([]byte(game.ID), payload)
	})
}

// GetGame fetches one game record by ID.
func (s *Store) GetGame(ctx context.Context, id string) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	if s == nil || s.db == nil {
		return domain.Game{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.Game{}, fmt.Errorf("game id is required")
	}

	var game domain.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		payload := bucket.Get([]byte(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		decoded, err := decodeGame(payload)
		if err != nil {
			return err
		}
		game = decoded
		return nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return game, nil
}

// ListGames returns all saved games, newest first by date.
func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var games []domain.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			game, err := decodeGame(payload)
			if err != nil {
				return err
			}
			games = append(games, game)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.After(games[j].Date)
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

// PutEvent persists one event record and its index entry.
func (s *Store) PutEvent(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	payload, err := json.Marshal(eventRecord{
		EventID:      event.ID,
		GameID:       event.GameID,
		Half:         event.Half,
		THalfSeconds: event.HalfSeconds,
		EventCode:    string(event.Code),
		CreatedAt:    event.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return fmt.Errorf("events bucket is missing")
		}
		if err := bucket.Put([]byte(event.ID), payload); err != nil {
			return err
		}
		index := tx.Bucket([]byte(eventsByGameIndex))
		if index == nil {
			return fmt.Errorf("events index bucket is missing")
		}
		// Index keys are game-scoped and ordered by insertion sequence so a
		// prefix scan yields events in insertion order.
		seq, err := index.NextSequence()
		if err != nil {
			return fmt.Errorf("next index sequence: %w", err)
		}
		return index.Put(indexKey(event.GameID, seq), []byte(event.ID))
	})
}

// ListEventsByGame returns every event owned by the game in insertion order.
func (s *Store) ListEventsByGame(ctx context.Context, gameID string) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	var events []domain.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		index := tx.Bucket([]byte(eventsByGameIndex))
		bucket := tx.Bucket([]byte(eventsBucket))
		if index == nil || bucket == nil {
			return fmt.Errorf("events buckets are missing")
		}

		seen := make(map[string]bool)
		prefix := indexPrefix(gameID)
		cursor := index.Cursor()
		for key, eventID := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, eventID = cursor.Next() {
			// A replace leaves multiple index entries for one event; the
			// first (oldest) one wins so insertion order is preserved.
			if seen[string(eventID)] {
				continue
			}
			payload := bucket.Get(eventID)
			if payload == nil {
				continue // deleted event, stale index entry
			}
			event, err := decodeEvent(payload)
			if err != nil {
				return err
			}
			seen[string(eventID)] = true
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteEvent removes one event record by ID. Index entries pointing at the
// removed record are skipped on read, so the delete stays single-record.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("event id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(eventsBucket))
		if bucket == nil {
			return fmt.Errorf("events bucket is missing")
		}
		return bucket.Delete([]byte(id))
	})
}

func indexPrefix(gameID string) []byte {
	return []byte(gameID + "/")
}

func indexKey(gameID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s/%016d", gameID, seq))
}

func decodeGame(payload []byte) (domain.Game, error) {
	var record gameRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Game{}, fmt.Errorf("unmarshal game: %w", err)
	}
	date, err := time.Parse(time.RFC3339, record.Date)
	if err != nil {
		return domain.Game{}, fmt.Errorf("parse game date: %w", err)
	}
	return domain.Game{
		ID:         record.GameID,
		Date:       date.UTC(),
		Opponent:   record.Opponent,
		LoggerName: record.LoggerName,
	}, nil
}

func decodeEvent(payload []byte) (domain.Event, error) {
	var record eventRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, record.CreatedAt)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse event created at: %w", err)
	}
	return domain.Event{
		ID:          record.EventID,
		GameID:      record.GameID,
		Half:        record.Half,
		HalfSeconds: record.THalfSeconds,
		Code:        domain.Code(record.EventCode),
		CreatedAt:   createdAt.UTC(),
	}, nil
}

var _ storage.Store = (*Store)(nil)
