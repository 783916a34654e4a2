// Package streak implements the once-per-calendar-day streak counter:
// a user may increment it once per local day, and four or more days
// without an increment reset it.
package streak

import (
	"time"
)

// State is the persisted part of the streak. Count is zero exactly when
// LastAction is nil.
type State struct {
	Count      int        `json:"streakCount"`
	LastAction *time.Time `json:"lastActionTimestamp,omitempty"`
}

// Fresh is the initial state, also the result of a reset
func Fresh() State {
	return State{}
}

func (s State) IsFresh() bool {
	return s.Count == 0 && s.LastAction == nil
}

// Valid reports whether both fields agree with each other
func (s State) Valid() bool {
	if s.Count < 0 {
		return false
	}
	return (s.Count == 0) == (s.LastAction == nil)
}

func (s State) equal(other State) bool {
	if s.Count != other.Count {
		return false
	}
	if s.LastAction == nil || other.LastAction == nil {
		return s.LastAction == nil && other.LastAction == nil
	}
	return s.LastAction.Equal(*other.LastAction)
}
