package words

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Len() == 0 {
		t.Fatal("embedded vocabulary is empty")
	}
	for _, w := range v.Entries() {
		if !isAlpha(w) {
			t.Errorf("entry %q is not uppercase alphabetic", w)
		}
	}
	if !v.Contains("WORLD") {
		t.Error("expected WORLD in the default vocabulary")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "crate\nPLANK\n  smart  \nnot-a-word\n12345\n\nOX\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"CRATE", "PLANK", "SMART", "OX"}
	if v.Len() != len(want) {
		t.Fatalf("loaded %d entries, want %d: %v", v.Len(), len(want), v.Entries())
	}
	for i, w := range want {
		if v.Entries()[i] != w {
			t.Errorf("entry %d = %q, want %q", i, v.Entries()[i], w)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("123\n-\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for vocabulary with no valid entries")
	}
}

func TestPickFiltersByLength(t *testing.T) {
	v := &Vocabulary{entries: []string{"OX", "CRATE", "PLANK", "HOUSES"}}
	for i := 0; i < 20; i++ {
		if got := v.Pick(5); len(got) != 5 {
			t.Fatalf("Pick(5) = %q, want a 5-letter word", got)
		}
		if got := v.Pick(2); got != "OX" {
			t.Fatalf("Pick(2) = %q, want OX", got)
		}
	}
}

// When no entry matches the requested length, selection falls back to the
// whole vocabulary so a session can always be issued.
func TestPickFallsBackToWholeVocabulary(t *testing.T) {
	v := &Vocabulary{entries: []string{"CRATE", "PLANK"}}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		w := v.Pick(9)
		if !v.Contains(w) {
			t.Fatalf("Pick(9) returned %q, not in vocabulary", w)
		}
		seen[w] = true
	}
	if len(seen) == 0 {
		t.Fatal("fallback returned nothing")
	}
}
