// internal/persist/persist.go
//
// Abstract durable persistence boundary for sessions, player stats, and the
// per-player game history log. The core treats every call as best-effort
// blocking I/O: failures are returned as ordinary errors for the caller to
// log and absorb, never to abort the in-request operation.
//
// Snapshot types use plain scalars, strings, and string sequences so they
// serialize trivially into any document or relational store. Timestamps are
// RFC 3339 strings.

package persist

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get* calls when no row exists for the key.
var ErrNotFound = errors.New("persist: not found")

// SessionSnapshot is the serialized form of one game session.
type SessionSnapshot struct {
	ID          string
	Target      string
	MaxAttempts int
	Guesses     []string
	Verdicts    [][]string // index-aligned with Guesses
	Status      string
	CreatedAt   string // RFC 3339
}

// StatsSnapshot is the serialized form of one player's cumulative counters.
type StatsSnapshot struct {
	PlayerID      string
	Played        int
	Won           int
	CurrentStreak int
	MaxStreak     int
	Distribution  map[int]int // attempt count -> wins at that count
	UpdatedAt     string      // RFC 3339
}

// HistoryEntry is one append-only record of a completed game. Write-only
// from the core's perspective; never read back.
type HistoryEntry struct {
	PlayerID  string
	GameID    string
	Word      string
	Attempts  int
	Status    string
	CreatedAt string // RFC 3339
}

// Store is the durable collaborator contract.
// Implementations may be backed by SQLite (this package), a document store,
// or anything with get/put semantics.
type Store interface {
	PutSession(ctx context.Context, s SessionSnapshot) error
	GetSession(ctx context.Context, id string) (SessionSnapshot, error)

	PutStats(ctx context.Context, s StatsSnapshot) error
	GetStats(ctx context.Context, playerID string) (StatsSnapshot, error)

	AppendHistory(ctx context.Context, e HistoryEntry) error
}
