// Package review provides pure views over an event list: combinable
// filters and bulk time-shift corrections. Nothing here mutates its input;
// persistence of adjusted lists is the caller's job.
package review

import (
	"github.com/KTGlem/GameMoments/internal/match/domain"
)

// Half filter values. Zero means all halves.
const (
	AnyHalf    = 0
	FirstHalf  = 1
	SecondHalf = 2
)

// Filter selects events on three independent axes. The zero value matches
// everything.
type Filter struct {
	// Half keeps events from one half (1 or 2); AnyHalf keeps both.
	Half int
	// Side keeps events whose code suffix matches; empty keeps both sides.
	Side domain.Side
	// Family keeps events whose code prefix matches; empty keeps all six.
	Family domain.Family
}

// Matches reports whether one event passes every axis of the filter.
func (f Filter) Matches(evt domain.Event) bool {
	if f.Half != AnyHalf && evt.Half != f.Half {
		return false
	}
	if f.Side != "" && evt.Code.Side() != f.Side {
		return false
	}
	if f.Family != "" && evt.Code.Family() != f.Family {
		return false
	}
	return true
}

// Apply returns the events passing the filter, preserving input order.
// The input slice is never modified.
func (f Filter) Apply(events []domain.Event) []domain.Event {
	filtered := make([]domain.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// ShiftTimes returns a copy of events with firstOffset seconds added to
// every half-1 event and secondOffset seconds added to every half-2 event,
// each result clamped to zero from below. Halves are immutable; only the
// within-half time moves.
func ShiftTimes(events []domain.Event, firstOffset, secondOffset int) []domain.Event {
	shifted := make([]domain.Event, len(events))
	copy(shifted, events)
	for i := range shifted {
		offset := firstOffset
		if shifted[i].Half == 2 {
			offset = secondOffset
		}
		seconds := shifted[i].HalfSeconds + offset
		if seconds < 0 {
			seconds = 0
		}
		shifted[i].HalfSeconds = seconds
	}
	return shifted
}
