// internal/game/types.go
//
// Core type definitions for the guessing game engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - Status:  coarse session state (playing/won/lost).
//   - Session: state for a single in-progress or finished game.
//   - GuessResult: what a single applied guess produced.

package game

import (
	"sync"
	"time"
)

// Verdict classifies a single guessed letter against the target word.
// Possible values:
//   - "correct": letter is in the target at this exact position.
//   - "present": letter exists in the target but at a different position.
//   - "absent":  letter is not available in the target (or its copies are
//     already credited elsewhere).
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictPresent Verdict = "present"
	VerdictAbsent  Verdict = "absent"
)

// Status is the session lifecycle state. Transitions only move forward:
// playing -> won or playing -> lost; terminal states never change.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether s accepts no further guesses.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Session holds the state of a single game.
//
// Invariants:
//   - len(Guesses) == len(Verdicts) <= MaxAttempts.
//   - Target is uppercase and immutable for the session's lifetime.
//   - Status is terminal iff a guess equaled Target or attempts ran out.
type Session struct {
	ID          string      // opaque unique identifier
	Target      string      // uppercase solution word
	MaxAttempts int         // maximum number of guesses allowed
	Guesses     []string    // guesses accepted so far, uppercase
	Verdicts    [][]Verdict // per-guess verdicts, index-aligned with Guesses
	Status      Status
	CreatedAt   time.Time

	mu sync.Mutex // serializes Apply; at most one in-flight guess per session
}

// SessionView is a detached value copy of a Session, used for persistence
// snapshots and read-only rendering.
type SessionView struct {
	ID          string
	Target      string
	MaxAttempts int
	Guesses     []string
	Verdicts    [][]Verdict
	Status      Status
	CreatedAt   time.Time
}

// GuessResult reports the outcome of one applied guess.
type GuessResult struct {
	Attempt  int       `json:"attempt"` // 1-based attempt number
	Verdicts []Verdict `json:"verdicts"`
	Status   Status    `json:"status"`
	// Word carries the target, revealed only when the guess loses the game.
	// A winning guess reveals it implicitly; a playing session never does.
	Word string `json:"word,omitempty"`
}
