package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.WordLength != 5 || cfg.MaxAttempts != 6 {
		t.Errorf("game defaults = %d/%d, want 5/6", cfg.WordLength, cfg.MaxAttempts)
	}
	if cfg.Retention != 24*time.Hour {
		t.Errorf("Retention = %v, want 24h", cfg.Retention)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GUESSD_ADDR", ":9999")
	t.Setenv("GUESSD_MAX_ATTEMPTS", "8")
	t.Setenv("GUESSD_RETENTION", "2h")
	t.Setenv("GUESSD_SQLITE_DSN", "")
	t.Setenv("GUESSD_STRICT_WORDS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Addr)
	}
	if cfg.MaxAttempts != 8 {
		t.Errorf("MaxAttempts = %d, want 8", cfg.MaxAttempts)
	}
	if cfg.Retention != 2*time.Hour {
		t.Errorf("Retention = %v, want 2h", cfg.Retention)
	}
	if cfg.SQLiteDSN != "" {
		t.Errorf("SQLiteDSN = %q, want empty (memory-only)", cfg.SQLiteDSN)
	}
	if !cfg.StrictWords {
		t.Error("StrictWords = false, want true")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guessd.yaml")
	content := "addr: \":7777\"\nword_length: 6\ndaily_salt: testing\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GUESSD_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7777" || cfg.WordLength != 6 || cfg.DailySalt != "testing" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.MaxAttempts != 6 {
		t.Errorf("MaxAttempts = %d, want default 6", cfg.MaxAttempts)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guessd.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7777\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GUESSD_CONFIG", path)
	t.Setenv("GUESSD_ADDR", ":6666")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":6666" {
		t.Errorf("Addr = %q, env should take precedence", cfg.Addr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("GUESSD_WORD_LENGTH", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative word length")
	}
}
