// internal/persist/sqlite.go
//
// SQLite-backed implementation of the Store interface.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, FKs).
//   - Applying migrations from ./sql/*.sql (idempotent, recorded in
//     _migrations).
//   - Upserting/reading session and stats snapshots; appending history rows.
//
// Guess and verdict sequences are stored as JSON text columns; everything
// else is a plain scalar column.

package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLite implements Store on a *sql.DB.
type SQLite struct {
	db *sql.DB
}

// Open opens (and creates if missing) a SQLite database file and returns a
// ready Store. The parent directory is created for relative DSNs such as
// ./data/guessd.db.
func Open(dsn string) (*SQLite, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Migrate applies SQL migrations from dir ("sql" by default).
// Each *.sql file runs once, in lexical order, inside its own transaction;
// applied files are recorded in the _migrations table.
func (s *SQLite) Migrate(dir string) error {
	if dir == "" {
		dir = "sql"
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk sql dir: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := s.db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// PutSession upserts one session snapshot.
func (s *SQLite) PutSession(ctx context.Context, snap SessionSnapshot) error {
	guesses, err := json.Marshal(snap.Guesses)
	if err != nil {
		return err
	}
	verdicts, err := json.Marshal(snap.Verdicts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, target, max_attempts, guesses, verdicts, status, created_at)
        VALUES (?,?,?,?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET
            guesses=excluded.guesses,
            verdicts=excluded.verdicts,
            status=excluded.status`,
		snap.ID, snap.Target, snap.MaxAttempts, string(guesses), string(verdicts), snap.Status, snap.CreatedAt,
	)
	return err
}

// GetSession loads one session snapshot or ErrNotFound.
func (s *SQLite) GetSession(ctx context.Context, id string) (SessionSnapshot, error) {
	var snap SessionSnapshot
	var guesses, verdicts string
	err := s.db.QueryRowContext(ctx, `
        SELECT id, target, max_attempts, guesses, verdicts, status, created_at
        FROM sessions WHERE id=?`, id,
	).Scan(&snap.ID, &snap.Target, &snap.MaxAttempts, &guesses, &verdicts, &snap.Status, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return SessionSnapshot{}, ErrNotFound
	}
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(guesses), &snap.Guesses); err != nil {
		return SessionSnapshot{}, fmt.Errorf("decode guesses for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(verdicts), &snap.Verdicts); err != nil {
		return SessionSnapshot{}, fmt.Errorf("decode verdicts for %s: %w", id, err)
	}
	return snap, nil
}

// PutStats upserts one player's counters.
func (s *SQLite) PutStats(ctx context.Context, snap StatsSnapshot) error {
	dist, err := json.Marshal(snap.Distribution)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO player_stats (player_id, played, won, current_streak, max_streak, distribution, updated_at)
        VALUES (?,?,?,?,?,?,?)
        ON CONFLICT(player_id) DO UPDATE SET
            played=excluded.played,
            won=excluded.won,
            current_streak=excluded.current_streak,
            max_streak=excluded.max_streak,
            distribution=excluded.distribution,
            updated_at=excluded.updated_at`,
		snap.PlayerID, snap.Played, snap.Won, snap.CurrentStreak, snap.MaxStreak, string(dist), snap.UpdatedAt,
	)
	return err
}

// GetStats loads one player's counters or ErrNotFound.
func (s *SQLite) GetStats(ctx context.Context, playerID string) (StatsSnapshot, error) {
	var snap StatsSnapshot
	var dist string
	err := s.db.QueryRowContext(ctx, `
        SELECT player_id, played, won, current_streak, max_streak, distribution, updated_at
        FROM player_stats WHERE player_id=?`, playerID,
	).Scan(&snap.PlayerID, &snap.Played, &snap.Won, &snap.CurrentStreak, &snap.MaxStreak, &dist, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return StatsSnapshot{}, ErrNotFound
	}
	if err != nil {
		return StatsSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(dist), &snap.Distribution); err != nil {
		return StatsSnapshot{}, fmt.Errorf("decode distribution for %s: %w", playerID, err)
	}
	return snap, nil
}

// AppendHistory inserts one completed-game row. Append-only; never updated.
func (s *SQLite) AppendHistory(ctx context.Context, e HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_history (player_id, game_id, word, attempts, status, created_at)
        VALUES (?,?,?,?,?,?)`,
		e.PlayerID, e.GameID, e.Word, e.Attempts, e.Status, e.CreatedAt,
	)
	return err
}
