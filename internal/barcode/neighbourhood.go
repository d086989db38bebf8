package barcode

// neighbour is a precomputed answer for one string.
type neighbour struct {
	label    string
	distance int
	tied     bool
}

// expand records every string within ix.hoodDistance substitutions of
// pattern, keeping the closest label for each and flagging ties.
func (ix *Index) expand(pattern, label string) {
	for s, d := range mismatches(pattern, ix.hoodDistance) {
		cur, ok := ix.hood[s]
		switch {
		case !ok || d < cur.distance:
			ix.hood[s] = neighbour{label: label, distance: d}
		case d == cur.distance:
			cur.tied = true
			ix.hood[s] = cur
		}
	}
}

func nucleotides(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			return false
		}
	}
	return true
}

// mismatches returns every string reachable from input with at most
// distance substitutions, mapped to its Hamming distance from input.
// Only nucleotide positions are mutated.
func mismatches(input string, distance int) map[string]int {
	mutations := []byte{'A', 'C', 'G', 'T', 'N'}
	toCheck := []string{input}
	seen := make(map[string]int) // avoid double-counting

	for level := 0; level <= distance; level++ {
		nextCheck := make([]string, 0, len(input)*(len(mutations)-1))

		for _, curBC := range toCheck {
			if _, done := seen[curBC]; done {
				continue
			}
			seen[curBC] = level
			if level == distance {
				continue
			}
			for i := 0; i < len(curBC); i++ {
				c := curBC[i]
				switch c {
				case 'A', 'C', 'G', 'T', 'N':
					for _, replacement := range mutations {
						if replacement == c {
							continue
						}
						newBC := curBC[:i] + string(replacement) + curBC[i+1:]
						if _, alreadySeen := seen[newBC]; !alreadySeen {
							nextCheck = append(nextCheck, newBC)
						}
					}
				default:
					// nothing
				}
			}
		}
		toCheck = nextCheck
	}
	return seen
}
