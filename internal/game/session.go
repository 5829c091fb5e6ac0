// internal/game/session.go
//
// Session lifecycle for a single game.
// Responsibilities:
//   - Create new sessions with a fixed target and attempt budget.
//   - Validate and apply guesses, scoring them through Evaluate.
//   - Track state transitions: playing -> won/lost, terminal states frozen.
//
// Notes:
//   - The session store owns registration/eviction; a Session only owns its
//     guess history and status.
//   - Apply is safe for concurrent callers: an internal mutex serializes
//     guesses so the attempt count can never overrun MaxAttempts.

package game

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxAttempts is the classic six-row board.
	DefaultMaxAttempts = 6
	// DefaultWordLength is the classic five-letter word.
	DefaultWordLength = 5
)

var (
	// ErrGameFinished is returned for a guess against a terminal session.
	ErrGameFinished = errors.New("game finished")
	// ErrAttemptsExhausted is returned when the guess history is already at
	// the attempt cap. As a side effect the session is forced to lost; this
	// is a guard against stale retries, not a normal game path.
	ErrAttemptsExhausted = errors.New("attempts exhausted")
	// ErrInvalidFormat is returned for a guess of the wrong length or with
	// characters outside A-Z. The session is not mutated.
	ErrInvalidFormat = errors.New("invalid guess format")
)

// NewSession constructs a playing session around target.
// Target is assumed valid (uppercase, drawn from the vocabulary); selection
// is the caller's responsibility. maxAttempts <= 0 falls back to the default.
func NewSession(target string, maxAttempts int) *Session {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Session{
		ID:          uuid.NewString(),
		Target:      strings.ToUpper(target),
		MaxAttempts: maxAttempts,
		Guesses:     []string{},
		Verdicts:    [][]Verdict{},
		Status:      StatusPlaying,
		CreatedAt:   time.Now().UTC(),
	}
}

// Apply validates and scores one guess, mutating the session state.
//
// Check order matters and is part of the contract:
//  1. Terminal session        -> ErrGameFinished, no mutation.
//  2. History already at cap  -> ErrAttemptsExhausted, status forced to lost
//     even though no guess is recorded.
//  3. Malformed guess         -> ErrInvalidFormat, no mutation.
//
// Otherwise the guess is uppercased, scored, and appended; the session moves
// to won on an exact match, to lost when the attempt budget is consumed, and
// stays playing otherwise.
func (s *Session) Apply(raw string) (*GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status.Terminal() {
		return nil, ErrGameFinished
	}
	if len(s.Guesses) >= s.MaxAttempts {
		s.Status = StatusLost
		return nil, ErrAttemptsExhausted
	}

	guess := strings.ToUpper(strings.TrimSpace(raw))
	if len(guess) != len(s.Target) || !ValidWord(guess) {
		return nil, ErrInvalidFormat
	}

	verdicts := Evaluate(guess, s.Target)
	s.Guesses = append(s.Guesses, guess)
	s.Verdicts = append(s.Verdicts, verdicts)

	switch {
	case guess == s.Target:
		s.Status = StatusWon
	case len(s.Guesses) >= s.MaxAttempts:
		s.Status = StatusLost
	}

	res := &GuessResult{
		Attempt:  len(s.Guesses),
		Verdicts: verdicts,
		Status:   s.Status,
	}
	if s.Status == StatusLost {
		res.Word = s.Target
	}
	return res, nil
}

// View returns a consistent value copy of the session, safe to serialize or
// render while other goroutines keep guessing.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:          s.ID,
		Target:      s.Target,
		MaxAttempts: s.MaxAttempts,
		Guesses:     make([]string, len(s.Guesses)),
		Verdicts:    make([][]Verdict, len(s.Verdicts)),
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
	}
	copy(v.Guesses, s.Guesses)
	for i, row := range s.Verdicts {
		v.Verdicts[i] = append([]Verdict(nil), row...)
	}
	return v
}

// Restore rebuilds a session from a previously captured view, e.g. one
// rehydrated from the durable store. The view is trusted as-is.
func Restore(v SessionView) *Session {
	return &Session{
		ID:          v.ID,
		Target:      v.Target,
		MaxAttempts: v.MaxAttempts,
		Guesses:     v.Guesses,
		Verdicts:    v.Verdicts,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
}

// Attempts returns the number of recorded guesses.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Guesses)
}

// CurrentStatus returns the status under the session lock.
func (s *Session) CurrentStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status
}

// ValidWord reports whether s is a non-empty run of uppercase ASCII letters,
// the only shape targets and guesses may take.
func ValidWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
