// internal/words/words.go
//
// Vocabulary management for the game engine.
//
// Responsibilities:
//   - Load the vocabulary from a configured file or fall back to the
//     embedded default list.
//   - Normalize entries to uppercase and drop non-alphabetic lines.
//   - Supply Pick for uniform random target selection by word length.
//
// Constraints:
//   - Entries are uppercase ASCII letters.
//   - Mixed lengths are tolerated; Pick filters by length and falls back to
//     the whole vocabulary when no entry matches.

package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/samber/lo"
)

//go:embed default_words.txt
var embeddedWords string

// Vocabulary is a static ordered list of uppercase words.
type Vocabulary struct {
	entries []string
}

// Load builds a vocabulary from path, or from the embedded default list when
// path is empty. Returns an error if the resulting list is empty.
func Load(path string) (*Vocabulary, error) {
	var entries []string
	if path != "" {
		var err error
		entries, err = readWordFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		entries = normalizeLines(embeddedWords)
	}
	if len(entries) == 0 {
		return nil, errors.New("words: vocabulary is empty")
	}
	return &Vocabulary{entries: entries}, nil
}

// readWordFile loads one word per line, uppercases, trims, and keeps only
// alphabetic entries. Lengths are not restricted here.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(strings.ToUpper(sc.Text()))
		if w != "" && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// normalizeLines processes an embedded multiline string into uppercase words.
func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(strings.ToUpper(line))
		if w != "" && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Pick returns a cryptographically random word of the requested length.
// When no entry has that length the whole vocabulary is used instead, so a
// session can always be issued a target.
func (v *Vocabulary) Pick(length int) string {
	pool := lo.Filter(v.entries, func(w string, _ int) bool {
		return len(w) == length
	})
	if len(pool) == 0 {
		pool = v.entries
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return pool[0]
	}
	return pool[nBig.Int64()]
}

// Contains reports whether w is in the vocabulary (case-insensitive).
func (v *Vocabulary) Contains(w string) bool {
	return lo.Contains(v.entries, strings.ToUpper(w))
}

// Entries returns the backing list in load order.
func (v *Vocabulary) Entries() []string { return v.entries }

// Len returns the vocabulary size.
func (v *Vocabulary) Len() int { return len(v.entries) }
