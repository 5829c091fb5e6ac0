// internal/stats/stats.go
//
// Per-player cumulative outcome counters.
//
// RecordOutcome is NOT idempotent: calling it twice for the same completed
// game double-counts. The session store guarantees at-most-once invocation
// per terminal transition; nothing here guards against a second call.

package stats

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lexiguess/guessd/internal/game"
	"github.com/lexiguess/guessd/internal/persist"
)

// PlayerStats holds one player's counters.
//
// Invariants: Won <= Played, CurrentStreak <= MaxStreak, and the sum of
// Distribution values never exceeds Won.
type PlayerStats struct {
	Played        int         `json:"played"`
	Won           int         `json:"won"`
	CurrentStreak int         `json:"currentStreak"`
	MaxStreak     int         `json:"maxStreak"`
	Distribution  map[int]int `json:"guessDistribution"` // attempts -> wins
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Aggregator accumulates PlayerStats keyed by an opaque player identifier.
// Memory is authoritative once a player is loaded; the durable store is
// consulted on cold miss and written through best-effort.
type Aggregator struct {
	mu          sync.Mutex
	players     map[string]*PlayerStats
	durable     persist.Store // may be nil
	maxAttempts int           // bounds the distribution bucket range
	now         func() time.Time
}

// New constructs an Aggregator. durable may be nil for memory-only
// operation. maxAttempts <= 0 falls back to the game default.
func New(durable persist.Store, maxAttempts int) *Aggregator {
	if maxAttempts <= 0 {
		maxAttempts = game.DefaultMaxAttempts
	}
	return &Aggregator{
		players:     make(map[string]*PlayerStats),
		durable:     durable,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// RecordOutcome folds one terminal game outcome into the player's counters:
// played always increments; a win bumps the streak and the distribution
// bucket for attempts (when within 1..maxAttempts); a loss resets the
// current streak. The updated record is written through best-effort.
func (a *Aggregator) RecordOutcome(ctx context.Context, playerID string, status game.Status, attempts int) {
	a.mu.Lock()
	ps := a.loadLocked(ctx, playerID)
	ps.Played++
	if status == game.StatusWon {
		ps.Won++
		ps.CurrentStreak++
		if attempts >= 1 && attempts <= a.maxAttempts {
			ps.Distribution[attempts]++
		}
	} else {
		ps.CurrentStreak = 0
	}
	if ps.CurrentStreak > ps.MaxStreak {
		ps.MaxStreak = ps.CurrentStreak
	}
	ps.UpdatedAt = a.now().UTC()
	snap := a.snapshotLocked(playerID, ps)
	a.mu.Unlock()

	a.writeThrough(ctx, snap)
}

// Stats returns the player's record, initializing a zero record on first
// use. The zero record is persisted so subsequent reads are stable.
func (a *Aggregator) Stats(ctx context.Context, playerID string) PlayerStats {
	a.mu.Lock()
	_, known := a.players[playerID]
	ps := a.loadLocked(ctx, playerID)
	out := *ps
	out.Distribution = make(map[int]int, len(ps.Distribution))
	for k, v := range ps.Distribution {
		out.Distribution[k] = v
	}
	var snap persist.StatsSnapshot
	fresh := !known && ps.Played == 0
	if fresh {
		ps.UpdatedAt = a.now().UTC()
		out.UpdatedAt = ps.UpdatedAt
		snap = a.snapshotLocked(playerID, ps)
	}
	a.mu.Unlock()

	if fresh {
		a.writeThrough(ctx, snap)
	}
	return out
}

// loadLocked fetches or initializes the in-memory record, consulting the
// durable store on cold miss. Caller holds a.mu.
func (a *Aggregator) loadLocked(ctx context.Context, playerID string) *PlayerStats {
	if ps, ok := a.players[playerID]; ok {
		return ps
	}
	ps := &PlayerStats{Distribution: make(map[int]int)}
	if a.durable != nil {
		snap, err := a.durable.GetStats(ctx, playerID)
		switch {
		case err == nil:
			ps.Played = snap.Played
			ps.Won = snap.Won
			ps.CurrentStreak = snap.CurrentStreak
			ps.MaxStreak = snap.MaxStreak
			for k, v := range snap.Distribution {
				ps.Distribution[k] = v
			}
			if t, perr := time.Parse(time.RFC3339, snap.UpdatedAt); perr == nil {
				ps.UpdatedAt = t
			}
		case err != persist.ErrNotFound:
			log.Warn().Err(err).Str("player", playerID).Msg("load stats from durable store")
		}
	}
	a.players[playerID] = ps
	return ps
}

// snapshotLocked converts the record to its serialized form. Caller holds a.mu.
func (a *Aggregator) snapshotLocked(playerID string, ps *PlayerStats) persist.StatsSnapshot {
	dist := make(map[int]int, len(ps.Distribution))
	for k, v := range ps.Distribution {
		dist[k] = v
	}
	return persist.StatsSnapshot{
		PlayerID:      playerID,
		Played:        ps.Played,
		Won:           ps.Won,
		CurrentStreak: ps.CurrentStreak,
		MaxStreak:     ps.MaxStreak,
		Distribution:  dist,
		UpdatedAt:     ps.UpdatedAt.Format(time.RFC3339),
	}
}

// writeThrough persists a snapshot best-effort; failures are logged and
// swallowed, memory remains authoritative.
func (a *Aggregator) writeThrough(ctx context.Context, snap persist.StatsSnapshot) {
	if a.durable == nil {
		return
	}
	if err := a.durable.PutStats(ctx, snap); err != nil {
		log.Warn().Err(err).Str("player", snap.PlayerID).Msg("persist stats")
	}
}
