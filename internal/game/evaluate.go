// internal/game/evaluate.go
//
// Pure guess scoring. Evaluate is the only entry point; it has no access to
// session state and no side effects, so identical inputs always produce
// identical verdicts.

package game

// Evaluate scores guess against target using the standard two-pass algorithm.
//
// Pass 1:
//   - Mark exact positional matches as correct.
//   - Count the remaining (non-correct) target letters.
//
// Pass 2:
//   - Scan the guess left to right; for each non-correct position, mark
//     present while the letter still has remaining count, decrementing it.
//
// Left-to-right order in pass 2 is load-bearing: a letter duplicated in the
// guess is credited present at most as many times as it remains in the
// target's non-correct positions, and earlier guess positions win ties.
//
// The result always has len(target) entries. Callers are expected to enforce
// len(guess) == len(target); if they do not, the shorter length bounds the
// comparison and uncovered positions keep their default absent. Bytes outside
// A-Z count only through exact positional equality; they never earn present
// credit in either direction.
func Evaluate(guess, target string) []Verdict {
	n := len(target)
	verdicts := make([]Verdict, n)
	for i := range verdicts {
		verdicts[i] = VerdictAbsent
	}

	// Letter frequency of target letters not consumed by an exact match.
	var counts [26]int

	for i := 0; i < n; i++ {
		if i < len(guess) && guess[i] == target[i] {
			verdicts[i] = VerdictCorrect
		} else if j := letterIndex(target[i]); j >= 0 && j < 26 {
			counts[j]++
		}
	}

	for i := 0; i < n && i < len(guess); i++ {
		if verdicts[i] == VerdictCorrect {
			continue
		}
		j := letterIndex(guess[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			verdicts[i] = VerdictPresent
			counts[j]--
		}
	}
	return verdicts
}

// letterIndex maps an uppercase ASCII letter to 0..25.
func letterIndex(b byte) int { return int(b - 'A') }
