package persist

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "guessd.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	// repo-root migrations
	if err := s.Migrate(filepath.Join("..", "..", "sql")); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Migrate(filepath.Join("..", "..", "sql")); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	snap := SessionSnapshot{
		ID:          "s1",
		Target:      "WORLD",
		MaxAttempts: 6,
		Guesses:     []string{"LIGHT", "WORLD"},
		Verdicts: [][]string{
			{"absent", "absent", "absent", "present", "absent"},
			{"correct", "correct", "correct", "correct", "correct"},
		},
		Status:    "won",
		CreatedAt: "2026-08-30T10:00:00Z",
	}
	if err := s.PutSession(ctx, snap); err != nil {
		t.Fatalf("PutSession: %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}
}

func TestPutSessionUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	snap := SessionSnapshot{
		ID: "s1", Target: "WORLD", MaxAttempts: 6,
		Guesses:  []string{},
		Verdicts: [][]string{},
		Status:   "playing", CreatedAt: "2026-08-30T10:00:00Z",
	}
	if err := s.PutSession(ctx, snap); err != nil {
		t.Fatalf("PutSession: %v", err)
	}

	snap.Guesses = []string{"WORLD"}
	snap.Verdicts = [][]string{{"correct", "correct", "correct", "correct", "correct"}}
	snap.Status = "won"
	if err := s.PutSession(ctx, snap); err != nil {
		t.Fatalf("PutSession update: %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != "won" || len(got.Guesses) != 1 {
		t.Errorf("updated snapshot = %+v", got)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetSession(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStatsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	snap := StatsSnapshot{
		PlayerID:      "p1",
		Played:        3,
		Won:           2,
		CurrentStreak: 0,
		MaxStreak:     2,
		Distribution:  map[int]int{3: 1, 5: 1},
		UpdatedAt:     "2026-08-30T10:00:00Z",
	}
	if err := s.PutStats(ctx, snap); err != nil {
		t.Fatalf("PutStats: %v", err)
	}

	got, err := s.GetStats(ctx, "p1")
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}

	if _, err := s.GetStats(ctx, "p2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendHistory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	entries := []HistoryEntry{
		{PlayerID: "p1", GameID: "g1", Word: "WORLD", Attempts: 2, Status: "won", CreatedAt: "2026-08-30T10:00:00Z"},
		{PlayerID: "p1", GameID: "g2", Word: "LIGHT", Attempts: 6, Status: "lost", CreatedAt: "2026-08-30T11:00:00Z"},
	}
	for _, e := range entries {
		if err := s.AppendHistory(ctx, e); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM game_history WHERE player_id='p1'`).Scan(&count); err != nil {
		t.Fatalf("count history: %v", err)
	}
	if count != 2 {
		t.Errorf("history rows = %d, want 2", count)
	}
}
