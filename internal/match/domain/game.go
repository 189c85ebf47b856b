package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/KTGlem/GameMoments/internal/id"
)

// Placeholder values used when game metadata is left blank.
const (
	DefaultOpponent   = "Unknown Opponent"
	DefaultLoggerName = "Unknown Logger"
)

// Game represents one match session.
//
// A game is created exactly once per start-game action, persisted
// immediately, and never deleted. Opponent and logger name fall back to
// placeholders so saved games always render a readable header.
type Game struct {
	ID         string
	Date       time.Time
	Opponent   string
	LoggerName string
}

// CreateGameInput describes the metadata needed to start a game.
type CreateGameInput struct {
	Opponent   string
	LoggerName string
}

// CreateGame creates a new game with a generated ID and creation timestamp.
func CreateGame(input CreateGameInput, now func() time.Time, idGenerator func() (string, error)) (Game, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	opponent := strings.TrimSpace(input.Opponent)
	if opponent == "" {
		opponent = DefaultOpponent
	}
	loggerName := strings.TrimSpace(input.LoggerName)
	if loggerName == "" {
		loggerName = DefaultLoggerName
	}

	gameID, err := idGenerator()
	if err != nil {
		return Game{}, fmt.Errorf("generate game id: %w", err)
	}

	return Game{
		ID:         gameID,
		Date:       now().UTC(),
		Opponent:   opponent,
		LoggerName: loggerName,
	}, nil
}
