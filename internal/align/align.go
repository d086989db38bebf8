// Package align checks that short fragments occur, in order, inside a read.
package align

import (
	"math"

	"github.com/shenwei356/bio/seq"
)

// NoIndels is an indel cost high enough that no alignment of a barcode
// will ever use one, which reduces Align to substitutions only.
const NoIndels = 1000

// Alignment is the best placement of a pattern inside a reference.
type Alignment struct {
	Distance int
	// Position is the exclusive end of the alignment in the reference.
	Position int
}

// Align places all of pattern against any substring of reference.
// Substitutions cost 1, insertions and deletions cost indelCost. Among
// equally good placements the one ending leftmost is returned.
func Align(reference, pattern string, indelCost int) Alignment {
	n := len(reference)
	// row[j] is the cost of aligning the pattern prefix so far ending at
	// reference position j; leading reference is free.
	row := make([]int, n+1)
	next := make([]int, n+1)

	for i := 1; i <= len(pattern); i++ {
		next[0] = add(row[0], indelCost)
		for j := 1; j <= n; j++ {
			sub := row[j-1]
			if pattern[i-1] != reference[j-1] {
				sub = add(sub, 1)
			}
			next[j] = min(sub, add(row[j], indelCost), add(next[j-1], indelCost))
		}
		row, next = next, row
	}

	best := Alignment{Distance: row[0]}
	for j := 1; j <= n; j++ {
		if row[j] < best.Distance {
			best = Alignment{Distance: row[j], Position: j}
		}
	}
	return best
}

// MatchesInOrder reports whether every fragment aligns within maxDistance,
// each one at or after the end of the previous alignment. An empty
// fragment list always matches.
func MatchesInOrder(reference string, fragments []string, maxDistance, indelCost int) bool {
	rest := reference
	for _, fragment := range fragments {
		a := Align(rest, fragment, indelCost)
		if a.Distance > maxDistance {
			return false
		}
		rest = rest[a.Position:]
	}
	return true
}

// ReverseComplement pairs every symbol using the IUPAC nucleotide alphabet.
// Symbols without a partner become 'N'.
func ReverseComplement(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c, err := seq.DNAredundant.PairLetter(s[len(s)-1-i])
		if err != nil {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// add saturates instead of overflowing when indelCost is huge.
func add(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
