// Package sqlite provides a SQLite-backed match storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KTGlem/GameMoments/internal/match/domain"
	"github.com/KTGlem/GameMoments/internal/platform/storage/sqlitemigrate"
	"github.com/KTGlem/GameMoments/internal/storage"
	"github.com/KTGlem/GameMoments/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Store persists games and events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite match store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutGame inserts or replaces one game record.
func (s *Store) PutGame(ctx context.Context, game domain.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO games (game_id, date, opponent, logger_name)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
		   date = excluded.date,
		   opponent = excluded.opponent,
		   logger_name = excluded.logger_name`,
		game.ID,
		toMillis(game.Date),
		game.Opponent,
		game.LoggerName,
	)
	if err != nil {
		return fmt.Errorf("put game: %w", err)
	}
	return nil
}

// GetGame returns one game by ID.
func (s *Store) GetGame(ctx context.Context, id string) (domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return domain.Game{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Game{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Game{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT game_id, date, opponent, logger_name FROM games WHERE game_id = ?`,
		id,
	)

	var game domain.Game
	var date int64
	if err := row.Scan(&game.ID, &date, &game.Opponent, &game.LoggerName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Game{}, storage.ErrNotFound
		}
		return domain.Game{}, fmt.Errorf("get game: %w", err)
	}
	game.Date = fromMillis(date)
	return game, nil
}

// ListGames returns all saved games, newest first.
func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT game_id, date, opponent, logger_name FROM games ORDER BY date DESC, game_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var game domain.Game
		var date int64
		if err := rows.Scan(&game.ID, &date, &game.Opponent, &game.LoggerName); err != nil {
			return nil, fmt.Errorf("list games: %w", err)
		}
		game.Date = fromMillis(date)
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// PutEvent inserts or replaces one event record.
func (s *Store) PutEvent(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.GameID) == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO events (event_id, game_id, half, t_half_seconds, event_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(event_id) DO UPDATE SET
		   game_id = excluded.game_id,
		   half = excluded.half,
		   t_half_seconds = excluded.t_half_seconds,
		   event_code = excluded.event_code,
		   created_at = excluded.created_at`,
		event.ID,
		event.GameID,
		event.Half,
		event.HalfSeconds,
		string(event.Code),
		toMillis(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// ListEventsByGame returns every event owned by the game in insertion order.
func (s *Store) ListEventsByGame(ctx context.Context, gameID string) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT event_id, game_id, half, t_half_seconds, event_code, created_at
		   FROM events
		  WHERE game_id = ?
		  ORDER BY rowid ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		var code string
		var createdAt int64
		if err := rows.Scan(
			&event.ID,
			&event.GameID,
			&event.Half,
			&event.HalfSeconds,
			&code,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		event.Code = domain.Code(code)
		event.CreatedAt = fromMillis(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes one event by ID.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("event id is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
