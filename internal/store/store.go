// internal/store/store.go
//
// SessionStore: owns the lifecycle of game sessions.
// Responsibilities:
//   - Create sessions with a vocabulary-drawn target word.
//   - Two-tier lookup: the in-memory map is authoritative when present, the
//     durable store is source of truth on a cold miss (rehydrated sessions
//     are re-registered in memory).
//   - Opportunistic eviction: every create sweeps sessions older than the
//     retention window, regardless of status.
//   - Terminal bookkeeping: exactly one stats/history/persist round per
//     playing -> terminal transition, all best-effort.
//
// Durable persistence and stats calls never fail the in-request operation;
// errors are logged, counted, and swallowed.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lexiguess/guessd/internal/game"
	"github.com/lexiguess/guessd/internal/metrics"
	"github.com/lexiguess/guessd/internal/persist"
	"github.com/lexiguess/guessd/internal/stats"
	"github.com/lexiguess/guessd/internal/words"
)

// ErrSessionNotFound is returned when an id is in neither memory nor the
// durable store.
var ErrSessionNotFound = errors.New("session not found")

// DefaultRetention is how long a session stays in memory after creation.
const DefaultRetention = 24 * time.Hour

// SessionStore maps session id -> *game.Session with time-based eviction and
// an optional durable backing store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session

	vocab     *words.Vocabulary
	durable   persist.Store     // may be nil
	stats     *stats.Aggregator // may be nil
	retention time.Duration
	now       func() time.Time
}

// New constructs a SessionStore. durable and agg may be nil; retention <= 0
// falls back to DefaultRetention.
func New(vocab *words.Vocabulary, durable persist.Store, agg *stats.Aggregator, retention time.Duration) *SessionStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &SessionStore{
		sessions:  make(map[string]*game.Session),
		vocab:     vocab,
		durable:   durable,
		stats:     agg,
		retention: retention,
		now:       time.Now,
	}
}

// Create issues a new session. The target is drawn uniformly from
// vocabulary entries of wordLength, falling back to the whole vocabulary
// when none match. Creation also runs the eviction sweep and persists the
// fresh session best-effort.
func (st *SessionStore) Create(ctx context.Context, wordLength, maxAttempts int) *game.Session {
	if wordLength <= 0 {
		wordLength = game.DefaultWordLength
	}
	target := st.vocab.Pick(wordLength)
	sess := game.NewSession(target, maxAttempts)

	st.mu.Lock()
	st.evictLocked()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	metrics.SessionsCreated.Inc()
	log.Info().Str("session", sess.ID).Int("length", len(target)).Msg("session created")

	st.putSession(ctx, sess.View())
	return sess
}

// CreateWithTarget issues a session around a fixed target word, bypassing
// vocabulary selection. Used by the daily mode and by tests.
func (st *SessionStore) CreateWithTarget(ctx context.Context, target string, maxAttempts int) *game.Session {
	sess := game.NewSession(target, maxAttempts)

	st.mu.Lock()
	st.evictLocked()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	metrics.SessionsCreated.Inc()
	st.putSession(ctx, sess.View())
	return sess
}

// Get looks a session up in memory first, then attempts durable rehydration.
func (st *SessionStore) Get(ctx context.Context, id string) (*game.Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if st.durable == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := st.durable.GetSession(ctx, id)
	if err == persist.ErrNotFound {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("get_session").Inc()
		log.Warn().Err(err).Str("session", id).Msg("durable session lookup")
		return nil, ErrSessionNotFound
	}

	restored := game.Restore(viewFromSnapshot(snap))

	// Re-register; a concurrent rehydration may have won the race, in which
	// case the already-registered session stays authoritative.
	st.mu.Lock()
	if existing, ok := st.sessions[id]; ok {
		st.mu.Unlock()
		return existing, nil
	}
	st.sessions[id] = restored
	st.mu.Unlock()

	log.Info().Str("session", id).Msg("session rehydrated from durable store")
	return restored, nil
}

// ApplyGuess locates the session and applies one guess. On the playing ->
// terminal transition it persists the final state, records the outcome with
// the stats aggregator, and appends a history entry; all three are
// best-effort and cannot fail the returned guess result.
//
// playerID is the opaque caller identity used for stats/history; when empty,
// outcome bookkeeping is skipped.
func (st *SessionStore) ApplyGuess(ctx context.Context, id, playerID, raw string) (*game.GuessResult, error) {
	sess, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := sess.Apply(raw)
	if err != nil {
		// A stale retry past the attempt cap forces the session to lost
		// without recording a guess. That is still this session's one
		// terminal transition, so it gets the same bookkeeping.
		if errors.Is(err, game.ErrAttemptsExhausted) {
			st.finalize(ctx, sess, playerID, game.StatusLost, sess.Attempts())
		}
		return nil, err
	}

	metrics.GuessesEvaluated.Inc()
	if res.Status.Terminal() {
		st.finalize(ctx, sess, playerID, res.Status, res.Attempt)
	}
	return res, nil
}

// Len reports the number of in-memory sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// finalize runs the at-most-once terminal bookkeeping. Apply only yields a
// terminal result (or the exhausted error) once per session, so no further
// idempotency guard is needed here.
func (st *SessionStore) finalize(ctx context.Context, sess *game.Session, playerID string, status game.Status, attempts int) {
	metrics.GamesCompleted.WithLabelValues(string(status)).Inc()

	view := sess.View()
	st.putSession(ctx, view)

	if playerID == "" {
		return
	}
	if st.stats != nil {
		st.stats.RecordOutcome(ctx, playerID, status, attempts)
	}
	if st.durable != nil {
		entry := persist.HistoryEntry{
			PlayerID:  playerID,
			GameID:    view.ID,
			Word:      view.Target,
			Attempts:  attempts,
			Status:    string(status),
			CreatedAt: st.now().UTC().Format(time.RFC3339),
		}
		if err := st.durable.AppendHistory(ctx, entry); err != nil {
			metrics.PersistenceFailures.WithLabelValues("append_history").Inc()
			log.Warn().Err(err).Str("session", view.ID).Msg("append history entry")
		}
	}
}

// putSession writes a snapshot to the durable store best-effort.
func (st *SessionStore) putSession(ctx context.Context, view game.SessionView) {
	if st.durable == nil {
		return
	}
	if err := st.durable.PutSession(ctx, snapshotFromView(view)); err != nil {
		metrics.PersistenceFailures.WithLabelValues("put_session").Inc()
		log.Warn().Err(err).Str("session", view.ID).Msg("persist session")
	}
}

// evictLocked removes sessions older than the retention window. Durable
// copies are unaffected. Caller holds st.mu.
func (st *SessionStore) evictLocked() {
	cutoff := st.now().Add(-st.retention)
	for id, sess := range st.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(st.sessions, id)
			metrics.SessionsEvicted.Inc()
			log.Info().Str("session", id).Msg("session evicted")
		}
	}
}

// snapshotFromView converts a session view to its serialized form.
func snapshotFromView(v game.SessionView) persist.SessionSnapshot {
	verdicts := make([][]string, len(v.Verdicts))
	for i, row := range v.Verdicts {
		verdicts[i] = make([]string, len(row))
		for j, verdict := range row {
			verdicts[i][j] = string(verdict)
		}
	}
	return persist.SessionSnapshot{
		ID:          v.ID,
		Target:      v.Target,
		MaxAttempts: v.MaxAttempts,
		Guesses:     append([]string(nil), v.Guesses...),
		Verdicts:    verdicts,
		Status:      string(v.Status),
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
}

// viewFromSnapshot is the inverse conversion for rehydration.
func viewFromSnapshot(s persist.SessionSnapshot) game.SessionView {
	verdicts := make([][]game.Verdict, len(s.Verdicts))
	for i, row := range s.Verdicts {
		verdicts[i] = make([]game.Verdict, len(row))
		for j, verdict := range row {
			verdicts[i][j] = game.Verdict(verdict)
		}
	}
	createdAt, err := time.Parse(time.RFC3339, s.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}
	return game.SessionView{
		ID:          s.ID,
		Target:      s.Target,
		MaxAttempts: s.MaxAttempts,
		Guesses:     append([]string(nil), s.Guesses...),
		Verdicts:    verdicts,
		Status:      game.Status(s.Status),
		CreatedAt:   createdAt,
	}
}
