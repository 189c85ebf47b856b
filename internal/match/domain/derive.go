package domain

import (
	"fmt"
	"sort"
)

// Scoreboard holds the goal counts derived from an event list.
//
// The score is never stored anywhere; it exists only as the return value of
// ComputeScoreboard, so no denormalized counter can drift from the log.
type Scoreboard struct {
	PFC int
	Opp int
}

// ComputeScoreboard counts goal events for each side.
func ComputeScoreboard(events []Event) Scoreboard {
	var board Scoreboard
	for _, evt := range events {
		switch evt.Code {
		case CodeGoalPFC:
			board.PFC++
		case CodeGoalOpp:
			board.Opp++
		}
	}
	return board
}

// SortForDisplay returns a copy of events ordered by half ascending, then
// half-seconds ascending. The sort is stable so events sharing a timestamp
// keep their append order. The input slice is not modified; storage order is
// insertion order and carries no meaning.
func SortForDisplay(events []Event) []Event {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Half != ordered[j].Half {
			return ordered[i].Half < ordered[j].Half
		}
		return ordered[i].HalfSeconds < ordered[j].HalfSeconds
	})
	return ordered
}

// Recent returns up to limit events in reverse append order, newest first.
func Recent(events []Event, limit int) []Event {
	if limit <= 0 || len(events) == 0 {
		return nil
	}
	if limit > len(events) {
		limit = len(events)
	}
	recent := make([]Event, 0, limit)
	for i := len(events) - 1; i >= len(events)-limit; i-- {
		recent = append(recent, events[i])
	}
	return recent
}

// FormatSeconds renders elapsed seconds as zero-padded mm:ss. Negative
// values clamp to 00:00; minutes may exceed two digits.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
