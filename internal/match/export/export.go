// Package export renders a filtered event list to the two supported text
// formats, CSV and plain text, and derives the download filename.
package export

import (
	"errors"
	"strconv"
	"strings"

	"github.com/KTGlem/GameMoments/internal/match/domain"
)

// ErrNoEvents indicates an export was requested for an empty filtered list.
// Callers surface this as a "no events to export" notice, not a failure.
var ErrNoEvents = errors.New("no events to export")

const (
	csvHeader = "Date,Opponent,Logger,Half,Time (mm:ss),Seconds,Event"
	textTitle = "Match Event Log"

	maxOpponentFilenameLen = 20
)

// RenderCSV renders one row per event with a fixed header, RFC-4180 style:
// every value quote-wrapped with internal quotes doubled, rows joined (not
// terminated) by CRLF. Events are rendered in the order given.
func RenderCSV(game domain.Game, events []domain.Event) (string, error) {
	if len(events) == 0 {
		return "", ErrNoEvents
	}

	date := game.Date.UTC().Format("2006-01-02")
	var b strings.Builder
	b.WriteString(csvHeader)
	for _, evt := range events {
		b.WriteString("\r\n")
		fields := []string{
			date,
			game.Opponent,
			game.LoggerName,
			"H" + strconv.Itoa(evt.Half),
			domain.FormatSeconds(evt.HalfSeconds),
			strconv.Itoa(evt.HalfSeconds),
			evt.Code.Label(),
		}
		for i, field := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String(), nil
}

// RenderText renders the fixed preamble followed by one line per event in
// the form "H<half> <mm:ss> <label>".
func RenderText(game domain.Game, events []domain.Event) (string, error) {
	if len(events) == 0 {
		return "", ErrNoEvents
	}

	var b strings.Builder
	b.WriteString(textTitle + "\n")
	b.WriteString("Date: " + game.Date.UTC().Format("2006-01-02") + "\n")
	b.WriteString("Opponent: " + game.Opponent + "\n")
	b.WriteString("Logger: " + game.LoggerName + "\n")
	b.WriteString("\n")
	for _, evt := range events {
		b.WriteString("H" + strconv.Itoa(evt.Half) + " " +
			domain.FormatSeconds(evt.HalfSeconds) + " " +
			evt.Code.Label() + "\n")
	}
	return b.String(), nil
}

// Filename derives the download name from the game's date and opponent:
// the ISO date portion plus the opponent with non-alphanumeric characters
// stripped and truncated to 20 characters.
func Filename(game domain.Game, extension string) string {
	date := game.Date.UTC().Format("2006-01-02")
	opponent := sanitizeOpponent(game.Opponent)
	extension = strings.TrimPrefix(extension, ".")

	name := date
	if opponent != "" {
		name += "_" + opponent
	}
	if extension != "" {
		name += "." + extension
	}
	return name
}

func sanitizeOpponent(opponent string) string {
	var b strings.Builder
	for _, r := range opponent {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == maxOpponentFilenameLen {
			break
		}
	}
	return b.String()
}
